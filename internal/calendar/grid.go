package calendar

import (
	"fmt"
	"time"
)

// Day is one visible date cell, a pure projection of a time.Time recomputed
// on every navigation or view change.
type Day struct {
	Date      time.Time
	DayNumber int
	Weekday   string
	IsToday   bool
	InMonth   bool // false for the leading/trailing filler days of a month grid
}

// Slot is one fixed-width interval of the day grid. Start is the offset from
// midnight; the slot list is generated once per view session and never
// mutated.
type Slot struct {
	Start time.Duration
	Width time.Duration
	Label string
}

func newDay(date, today, anchor time.Time) Day {
	return Day{
		Date:      date,
		DayNumber: date.Day(),
		Weekday:   date.Format("Mon"),
		IsToday:   date.Equal(Normalize(today)),
		InMonth:   date.Month() == anchor.Month() && date.Year() == anchor.Year(),
	}
}

// Days computes the visible date cells for date under view: one cell for the
// day view, Monday..Sunday for the week view, and whole weeks covering the
// month for the month view.
func Days(date time.Time, view View, today time.Time) []Day {
	date = Normalize(date)

	switch view {
	case ViewDay:
		return []Day{newDay(date, today, date)}

	case ViewWeek:
		start := WeekStart(date)
		days := make([]Day, 0, 7)
		for i := 0; i < 7; i++ {
			days = append(days, newDay(start.AddDate(0, 0, i), today, date))
		}
		return days

	case ViewMonth:
		firstOfMonth := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
		start := WeekStart(firstOfMonth)
		end := firstOfMonth.AddDate(0, 1, 0) // first of next month
		var days []Day
		for d := start; d.Before(end) || d.Weekday() != time.Monday; d = d.AddDate(0, 0, 1) {
			days = append(days, newDay(d, today, date))
		}
		return days
	}

	return nil
}

// Slots generates the fixed daily slot grid, e.g. 08:00-20:00 in 30 minute
// steps. The final slot starts before endHour; a slot may not cross it.
func Slots(startHour, endHour int, width time.Duration) []Slot {
	dayStart := time.Duration(startHour) * time.Hour
	dayEnd := time.Duration(endHour) * time.Hour

	var slots []Slot
	for at := dayStart; at+width <= dayEnd; at += width {
		slots = append(slots, Slot{
			Start: at,
			Width: width,
			Label: slotLabel(at),
		})
	}
	return slots
}

func slotLabel(offset time.Duration) string {
	h := int(offset.Hours())
	m := int(offset.Minutes()) % 60
	return fmt.Sprintf("%02d:%02d", h, m)
}
