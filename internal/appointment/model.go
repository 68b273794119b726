package appointment

import (
	"time"
)

type VisitStatus string

const (
	StatusUnset     VisitStatus = ""
	StatusCheckIn   VisitStatus = "check_in"
	StatusAbsent    VisitStatus = "absent"
	StatusNoShow    VisitStatus = "no_show"
	StatusCancelled VisitStatus = "cancelled"
)

// CoerceVisitStatus maps a raw backend string onto the known status set.
// Anything unknown collapses to unset so the rest of the code never carries
// an arbitrary string.
func CoerceVisitStatus(raw string) (VisitStatus, bool) {
	switch VisitStatus(raw) {
	case StatusUnset, StatusCheckIn, StatusAbsent, StatusNoShow, StatusCancelled:
		return VisitStatus(raw), true
	}
	return StatusUnset, false
}

type AbsenceReason string

const (
	ReasonPatientUnreachable AbsenceReason = "patient_unreachable"
	ReasonPatientRescheduled AbsenceReason = "patient_rescheduled"
	ReasonClinicCancelled    AbsenceReason = "clinic_cancelled"
	ReasonTransportIssue     AbsenceReason = "transport_issue"
	ReasonOther              AbsenceReason = "other"
)

func ValidReason(r AbsenceReason) bool {
	switch r {
	case ReasonPatientUnreachable, ReasonPatientRescheduled,
		ReasonClinicCancelled, ReasonTransportIssue, ReasonOther:
		return true
	}
	return false
}

// Appointment is the read-only cached copy of a backend appointment record.
// Date and ClockTime keep the backend's wire form; StartAt derives the
// concrete instant and reports whether the pair was parseable at all.
type Appointment struct {
	ID            string
	PatientID     string
	PatientName   string
	PatientPhone  string
	StaffID       string
	Date          string        // 2006-01-02
	ClockTime     string        // 15:04
	Duration      time.Duration // primary procedure
	TotalDuration time.Duration // primary + add-ons, 0 when the backend omits it
	Procedures    string
	Notes         string
	VisitStatus   VisitStatus
}

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// StartAt resolves the scheduled instant in loc. ok is false when the backend
// sent a missing or unparseable date/time, in which case the appointment is
// excluded from slot placement.
func (a Appointment) StartAt(loc *time.Location) (time.Time, bool) {
	if a.Date == "" || a.ClockTime == "" {
		return time.Time{}, false
	}
	d, err := time.ParseInLocation(dateLayout, a.Date, loc)
	if err != nil {
		return time.Time{}, false
	}
	t, err := time.Parse(timeLayout, a.ClockTime)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, loc), true
}

// EffectiveDuration prefers the total (primary + add-on procedures) when the
// backend supplied one.
func (a Appointment) EffectiveDuration() time.Duration {
	if a.TotalDuration > 0 {
		return a.TotalDuration
	}
	return a.Duration
}

// DisplayStatus is the status shown on the calendar. A past appointment with
// no recorded status is labeled absent for display only; the derived value is
// never written back to the record.
func DisplayStatus(a Appointment, now time.Time) VisitStatus {
	if a.VisitStatus != StatusUnset {
		return a.VisitStatus
	}
	start, ok := a.StartAt(now.Location())
	if ok && start.Before(now) {
		return StatusAbsent
	}
	return StatusUnset
}

// Summary is the richer on-demand view of one appointment backing the open
// detail panel. Exactly one summary is open at a time; it is discarded when
// the panel closes.
type Summary struct {
	Appointment

	PatientEmail     string
	PatientAddress   string
	AudiologistName  string
	AudiologistPhone string
}
