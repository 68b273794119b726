package calendar

import (
	"fmt"
	"time"
)

// Normalize truncates t to midnight in its own location. All navigation
// operates on normalized dates.
func Normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Today returns the current day at midnight. The "Today" action in the UI
// also forces the week view; see Controller.JumpToToday.
func Today(now func() time.Time) time.Time {
	return Normalize(now())
}

// NextPeriod advances date by one unit of view: a day, a week, or a calendar
// month. Month arithmetic clamps to the target month's length instead of
// letting the runtime normalize the overflow, so Jan 31 forward lands on
// Feb 28 (or 29), never Mar 2.
func NextPeriod(date time.Time, view View) time.Time {
	date = Normalize(date)
	switch view {
	case ViewDay:
		return date.AddDate(0, 0, 1)
	case ViewWeek:
		return date.AddDate(0, 0, 7)
	case ViewMonth:
		return addMonthsClamped(date, 1)
	}
	return date
}

// PreviousPeriod is the mirror of NextPeriod. For day and week views the two
// are exact inverses; for month view the pair round-trips exactly whenever
// the day of month is 28 or less, and otherwise lands on the clamped day.
func PreviousPeriod(date time.Time, view View) time.Time {
	date = Normalize(date)
	switch view {
	case ViewDay:
		return date.AddDate(0, 0, -1)
	case ViewWeek:
		return date.AddDate(0, 0, -7)
	case ViewMonth:
		return addMonthsClamped(date, -1)
	}
	return date
}

func addMonthsClamped(date time.Time, months int) time.Time {
	y, m, d := date.Date()
	firstOfTarget := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, date.Location())
	if last := daysInMonth(firstOfTarget); d > last {
		d = last
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d, 0, 0, 0, 0, date.Location())
}

func daysInMonth(t time.Time) int {
	// First of next month, minus one day.
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location()).AddDate(0, 0, -1).Day()
}

// WeekStart returns the Monday of the week containing date.
func WeekStart(date time.Time) time.Time {
	date = Normalize(date)
	offset := (int(date.Weekday()) + 6) % 7 // Monday=0 .. Sunday=6
	return date.AddDate(0, 0, -offset)
}

// RangeLabel renders the caption shown above the grid.
func RangeLabel(date time.Time, view View) string {
	date = Normalize(date)
	switch view {
	case ViewDay:
		return date.Format("Monday, 2 January 2006")
	case ViewWeek:
		return fmt.Sprintf("Week of %s", WeekStart(date).Format("2 January 2006"))
	case ViewMonth:
		return date.Format("January 2006")
	}
	return ""
}

// Controller tracks the current date and active view for one calendar
// session. It has no loading or error state; failures belong to the data
// fetching layers that feed it.
type Controller struct {
	current time.Time
	view    View
	now     func() time.Time
}

func NewController(now func() time.Time) *Controller {
	if now == nil {
		now = time.Now
	}
	return &Controller{
		current: Today(now),
		view:    ViewWeek,
		now:     now,
	}
}

func (c *Controller) Current() time.Time { return c.current }
func (c *Controller) View() View         { return c.view }

func (c *Controller) SetView(v View) {
	c.view = v
}

func (c *Controller) SetDate(d time.Time) {
	c.current = Normalize(d)
}

func (c *Controller) Next() {
	c.current = NextPeriod(c.current, c.view)
}

func (c *Controller) Previous() {
	c.current = PreviousPeriod(c.current, c.view)
}

// JumpToToday resets to the real current day and always forces the week
// view, regardless of what was active before.
func (c *Controller) JumpToToday() {
	c.current = Today(c.now)
	c.view = ViewWeek
}

func (c *Controller) Label() string {
	return RangeLabel(c.current, c.view)
}
