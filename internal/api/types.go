package api

import (
	"time"

	"github.com/auricare/calendar-gateway/internal/appointment"
	"github.com/auricare/calendar-gateway/internal/calendar"
	"github.com/auricare/calendar-gateway/internal/staff"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// AppointmentView is the calendar-facing projection of one appointment.
type AppointmentView struct {
	ID                   string `json:"id"`
	PatientName          string `json:"patientName"`
	PatientPhone         string `json:"patientPhone,omitempty"`
	StaffID              string `json:"staffId,omitempty"`
	StaffName            string `json:"staffName,omitempty"`
	Date                 string `json:"date"`
	Time                 string `json:"time"`
	DurationMinutes      int    `json:"durationMinutes"`
	TotalDurationMinutes int    `json:"totalDurationMinutes,omitempty"`
	Notes                string `json:"notes,omitempty"`
	VisitStatus          string `json:"visitStatus,omitempty"`
	// DisplayStatus includes the derived absent label for past appointments
	// with nothing recorded. Presentation only, never a stored value.
	DisplayStatus string `json:"displayStatus,omitempty"`
}

func toAppointmentView(a appointment.Appointment, lookup staff.Lookup, now time.Time) AppointmentView {
	v := AppointmentView{
		ID:                   a.ID,
		PatientName:          a.PatientName,
		PatientPhone:         a.PatientPhone,
		StaffID:              a.StaffID,
		Date:                 a.Date,
		Time:                 a.ClockTime,
		DurationMinutes:      int(a.Duration.Minutes()),
		TotalDurationMinutes: int(a.TotalDuration.Minutes()),
		Notes:                a.Notes,
		VisitStatus:          string(a.VisitStatus),
		DisplayStatus:        string(appointment.DisplayStatus(a, now)),
	}
	if lookup != nil {
		if name, ok := lookup.NameFor(a.StaffID); ok {
			v.StaffName = name
		}
	}
	return v
}

type DayView struct {
	Date      string `json:"date"`
	DayNumber int    `json:"dayNumber"`
	Weekday   string `json:"weekday"`
	IsToday   bool   `json:"isToday"`
	InMonth   bool   `json:"inMonth"`
}

func toDayView(d calendar.Day) DayView {
	return DayView{
		Date:      d.Date.Format("2006-01-02"),
		DayNumber: d.DayNumber,
		Weekday:   d.Weekday,
		IsToday:   d.IsToday,
		InMonth:   d.InMonth,
	}
}

type SlotView struct {
	Label        string `json:"label"`
	WidthMinutes int    `json:"widthMinutes"`
}

// SlotCell is one date x slot cell of the day/week grid.
type SlotCell struct {
	Date         string            `json:"date"`
	Slot         string            `json:"slot"`
	Appointments []AppointmentView `json:"appointments,omitempty"`
}

// MonthCellView is one day of the month grid: capped list plus overflow.
type MonthCellView struct {
	Day          DayView           `json:"day"`
	Appointments []AppointmentView `json:"appointments,omitempty"`
	Overflow     int               `json:"overflow,omitempty"`
}

type GridResponse struct {
	Date  string    `json:"date"`
	View  string    `json:"view"`
	Label string    `json:"label"`
	Days  []DayView `json:"days"`

	// Day/week views only.
	Slots []SlotView `json:"slots,omitempty"`
	Cells []SlotCell `json:"cells,omitempty"`

	// Month view only.
	MonthCells []MonthCellView `json:"monthCells,omitempty"`
}

type NavigateResponse struct {
	Date  string `json:"date"`
	View  string `json:"view"`
	Label string `json:"label"`
}

type PanelResponse struct {
	Appointment      AppointmentView `json:"appointment"`
	PatientEmail     string          `json:"patientEmail,omitempty"`
	PatientAddress   string          `json:"patientAddress,omitempty"`
	AudiologistName  string          `json:"audiologistName,omitempty"`
	AudiologistPhone string          `json:"audiologistPhone,omitempty"`
	Procedures       string          `json:"procedures,omitempty"`
	Degraded         bool            `json:"degraded,omitempty"`
}

type SaveNotesRequest struct {
	Notes string `json:"notes"`
}

type StatusUpdateRequest struct {
	Status string  `json:"status" validate:"required,oneof=check_in absent no_show"`
	Reason string  `json:"reason,omitempty"`
	Notes  *string `json:"notes,omitempty"`
}

type CollectPaymentResponse struct {
	RedirectURL string `json:"redirectUrl"`
}
