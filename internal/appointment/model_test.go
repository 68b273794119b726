package appointment

import (
	"testing"
	"time"
)

func TestCoerceVisitStatus(t *testing.T) {
	cases := []struct {
		raw    string
		want   VisitStatus
		wantOK bool
	}{
		{"", StatusUnset, true},
		{"check_in", StatusCheckIn, true},
		{"absent", StatusAbsent, true},
		{"no_show", StatusNoShow, true},
		{"cancelled", StatusCancelled, true},
		{"CHECK_IN", StatusUnset, false},
		{"showed_up_late", StatusUnset, false},
	}

	for _, c := range cases {
		got, ok := CoerceVisitStatus(c.raw)
		if got != c.want || ok != c.wantOK {
			t.Errorf("CoerceVisitStatus(%q) = (%q, %v), want (%q, %v)", c.raw, got, ok, c.want, c.wantOK)
		}
	}
}

func TestStartAt(t *testing.T) {
	loc := time.UTC

	a := Appointment{Date: "2025-03-10", ClockTime: "09:15"}
	got, ok := a.StartAt(loc)
	if !ok {
		t.Fatal("expected parseable start")
	}
	want := time.Date(2025, 3, 10, 9, 15, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("StartAt = %v, want %v", got, want)
	}

	for _, bad := range []Appointment{
		{Date: "", ClockTime: "09:15"},
		{Date: "2025-03-10", ClockTime: ""},
		{Date: "10/03/2025", ClockTime: "09:15"},
		{Date: "2025-03-10", ClockTime: "quarter past nine"},
	} {
		if _, ok := bad.StartAt(loc); ok {
			t.Errorf("expected unparseable start for %+v", bad)
		}
	}
}

func TestEffectiveDuration(t *testing.T) {
	a := Appointment{Duration: 30 * time.Minute}
	if got := a.EffectiveDuration(); got != 30*time.Minute {
		t.Fatalf("EffectiveDuration = %v, want 30m", got)
	}

	a.TotalDuration = 75 * time.Minute
	if got := a.EffectiveDuration(); got != 75*time.Minute {
		t.Fatalf("EffectiveDuration = %v, want 75m", got)
	}
}

func TestDisplayStatusDerivedAbsent(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	past := Appointment{Date: "2025-03-10", ClockTime: "09:00"}
	if got := DisplayStatus(past, now); got != StatusAbsent {
		t.Fatalf("past unset appointment: DisplayStatus = %q, want absent", got)
	}
	// The derived label never touches the record itself.
	if past.VisitStatus != StatusUnset {
		t.Fatal("DisplayStatus must not mutate VisitStatus")
	}

	future := Appointment{Date: "2025-03-10", ClockTime: "15:00"}
	if got := DisplayStatus(future, now); got != StatusUnset {
		t.Fatalf("future unset appointment: DisplayStatus = %q, want unset", got)
	}

	recorded := Appointment{Date: "2025-03-10", ClockTime: "09:00", VisitStatus: StatusCheckIn}
	if got := DisplayStatus(recorded, now); got != StatusCheckIn {
		t.Fatalf("recorded status wins: DisplayStatus = %q, want check_in", got)
	}

	// Unparseable time: nothing to derive from.
	broken := Appointment{Date: "2025-03-10", ClockTime: "??"}
	if got := DisplayStatus(broken, now); got != StatusUnset {
		t.Fatalf("unparseable time: DisplayStatus = %q, want unset", got)
	}
}

func TestValidReason(t *testing.T) {
	for _, r := range []AbsenceReason{
		ReasonPatientUnreachable, ReasonPatientRescheduled,
		ReasonClinicCancelled, ReasonTransportIssue, ReasonOther,
	} {
		if !ValidReason(r) {
			t.Errorf("expected %q to be valid", r)
		}
	}
	if ValidReason("") || ValidReason("felt_like_it") {
		t.Error("unexpected reasons accepted")
	}
}
