package calendar

import "errors"

type View string

const (
	ViewDay   View = "day"
	ViewWeek  View = "week"
	ViewMonth View = "month"
)

var ErrUnknownView = errors.New("unknown calendar view")

// ParseView accepts the three view names. All views are reachable from each
// other; there is no transition rule beyond name validity.
func ParseView(raw string) (View, error) {
	switch View(raw) {
	case ViewDay, ViewWeek, ViewMonth:
		return View(raw), nil
	}
	return "", ErrUnknownView
}
