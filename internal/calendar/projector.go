package calendar

import (
	"time"

	"github.com/auricare/calendar-gateway/internal/appointment"
)

// Projector buckets a flat appointment list into the date and slot cells of
// the active grid. It never spreads an appointment across slots: however long
// the booked procedures run, the appointment lives in its starting slot only
// and the duration is surfaced as a label.
type Projector struct {
	loc *time.Location
}

func NewProjector(loc *time.Location) *Projector {
	if loc == nil {
		loc = time.Local
	}
	return &Projector{loc: loc}
}

// ForDate filters by calendar-day equality, ignoring time of day.
// Appointments with an unparseable date/time are excluded.
func (p *Projector) ForDate(all []appointment.Appointment, date time.Time) []appointment.Appointment {
	date = Normalize(date)
	var out []appointment.Appointment
	for _, a := range all {
		start, ok := a.StartAt(p.loc)
		if !ok {
			continue
		}
		if Normalize(start).Equal(date) {
			out = append(out, a)
		}
	}
	return out
}

// ForSlot selects, among one day's appointments, those starting within
// [slot.Start, slot.Start+slot.Width) on that date.
func (p *Projector) ForSlot(dayAppointments []appointment.Appointment, date time.Time, slot Slot) []appointment.Appointment {
	date = Normalize(date)
	lo := date.Add(slot.Start)
	hi := lo.Add(slot.Width)

	var out []appointment.Appointment
	for _, a := range dayAppointments {
		start, ok := a.StartAt(p.loc)
		if !ok {
			continue
		}
		if !start.Before(lo) && start.Before(hi) {
			out = append(out, a)
		}
	}
	return out
}

// MonthCell is one day of the month view: at most cap appointments are
// visible, the rest collapse into an overflow count. Truncation is a display
// decision only; day and week views keep seeing the full list.
type MonthCell struct {
	Day      Day
	Visible  []appointment.Appointment
	Overflow int
}

// MonthCells projects the full list onto a month grid with a per-day display
// cap.
func (p *Projector) MonthCells(all []appointment.Appointment, days []Day, cap int) []MonthCell {
	cells := make([]MonthCell, 0, len(days))
	for _, d := range days {
		dayAppts := p.ForDate(all, d.Date)
		cell := MonthCell{Day: d, Visible: dayAppts}
		if cap > 0 && len(dayAppts) > cap {
			cell.Visible = dayAppts[:cap]
			cell.Overflow = len(dayAppts) - cap
		}
		cells = append(cells, cell)
	}
	return cells
}
