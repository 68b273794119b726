package panel

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/auricare/calendar-gateway/internal/appointment"
	"github.com/auricare/calendar-gateway/internal/staff"
	"github.com/auricare/calendar-gateway/internal/upstream"
)

// fakeBackend records calls and lets tests program each response.
type fakeBackend struct {
	record   appointment.Summary
	getErr   error
	patchErr error

	// applyPatch mutates record the way the real backend would.
	applyPatch func(p upstream.Patch)

	getCalls   int
	patchCalls int
	patches    []upstream.Patch
}

func (b *fakeBackend) GetAppointment(ctx context.Context, id string) (*appointment.Summary, error) {
	b.getCalls++
	if b.getErr != nil {
		return nil, b.getErr
	}
	cp := b.record
	return &cp, nil
}

func (b *fakeBackend) UpdateAppointment(ctx context.Context, id string, patch upstream.Patch) (*appointment.Appointment, error) {
	b.patchCalls++
	b.patches = append(b.patches, patch)
	if b.patchErr != nil {
		return nil, b.patchErr
	}
	if b.applyPatch != nil {
		b.applyPatch(patch)
	}
	cp := b.record.Appointment
	return &cp, nil
}

func baseRecord() appointment.Summary {
	return appointment.Summary{
		Appointment: appointment.Appointment{
			ID:           "ap-1",
			PatientID:    "pt-1",
			PatientName:  "Maria Keller",
			PatientPhone: "+49 151 000001",
			StaffID:      "st-1",
			Date:         "2025-07-16",
			ClockTime:    "09:15",
			Duration:     30 * time.Minute,
			Notes:        "initial notes",
		},
		PatientEmail: "maria@example.com",
	}
}

func fixedNow() time.Time {
	return time.Date(2025, time.July, 16, 12, 0, 0, 0, time.UTC)
}

func newService(b *fakeBackend) *Service {
	lookup := staff.MapLookup{"st-1": "Dr. Brandt"}
	return NewService(b, lookup, fixedNow)
}

func TestOpenFetchesCanonicalRecord(t *testing.T) {
	b := &fakeBackend{record: baseRecord()}
	svc := newService(b)

	st, err := svc.Open(context.Background(), "ap-1", nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if b.getCalls != 1 {
		t.Fatalf("Open fetched %d times, want 1", b.getCalls)
	}
	if st.Degraded {
		t.Fatal("healthy open must not be degraded")
	}
	if st.Summary.Notes != "initial notes" {
		t.Fatalf("panel notes = %q", st.Summary.Notes)
	}
	if st.AudiologistName != "Dr. Brandt" {
		t.Fatalf("staff name = %q, want resolved via lookup", st.AudiologistName)
	}
}

func TestOpenDegradedFallback(t *testing.T) {
	b := &fakeBackend{getErr: upstream.ErrNotInScannedPage}
	svc := newService(b)

	cached := baseRecord().Appointment
	cached.Notes = "stale notes"

	st, err := svc.Open(context.Background(), "ap-1", &cached)
	if err != nil {
		t.Fatalf("Open with cache: %v", err)
	}
	if !st.Degraded {
		t.Fatal("expected degraded mode")
	}
	if st.Summary.Notes != "stale notes" {
		t.Fatalf("degraded notes = %q, want the cached copy", st.Summary.Notes)
	}

	// Degraded panels reject every mutation.
	if _, err := svc.SaveNotes(context.Background(), st, "x"); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("SaveNotes on degraded panel: %v", err)
	}
	if _, err := svc.SetStatus(context.Background(), st, StatusChange{Target: appointment.StatusCheckIn}); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("SetStatus on degraded panel: %v", err)
	}
}

func TestOpenConfirmedGoneDoesNotDegrade(t *testing.T) {
	b := &fakeBackend{getErr: upstream.ErrNotFound}
	svc := newService(b)

	cached := baseRecord().Appointment
	if _, err := svc.Open(context.Background(), "ap-1", &cached); !errors.Is(err, upstream.ErrNotFound) {
		t.Fatalf("deleted record must not reopen from cache, got %v", err)
	}
}

func TestOpenNoCacheFails(t *testing.T) {
	b := &fakeBackend{getErr: upstream.ErrNotFound}
	svc := newService(b)

	if _, err := svc.Open(context.Background(), "ap-1", nil); err == nil {
		t.Fatal("expected error when there is nothing to fall back to")
	}
}

func TestSaveNotesRoundTrip(t *testing.T) {
	b := &fakeBackend{record: baseRecord()}
	// The backend trims whatever it is sent, simulating a server-side
	// transformation the client must not second-guess.
	b.applyPatch = func(p upstream.Patch) {
		if p.Notes != nil {
			b.record.Notes = "server-trimmed: " + *p.Notes
		}
	}
	svc := newService(b)

	st, err := svc.Open(context.Background(), "ap-1", nil)
	if err != nil {
		t.Fatal(err)
	}

	next, err := svc.SaveNotes(context.Background(), st, "typed text")
	if err != nil {
		t.Fatalf("SaveNotes: %v", err)
	}

	// Displayed notes are the re-fetched value, never the typed buffer.
	if next.Summary.Notes != "server-trimmed: typed text" {
		t.Fatalf("notes after save = %q, want the server's version", next.Summary.Notes)
	}
	if len(b.patches) != 1 || b.patches[0].Notes == nil || b.patches[0].VisitStatus != nil {
		t.Fatalf("save must patch notes only, got %+v", b.patches)
	}
	// Open fetch + verification re-fetch.
	if b.getCalls != 2 {
		t.Fatalf("getCalls = %d, want 2", b.getCalls)
	}
}

func TestSaveNotesRefetchFailure(t *testing.T) {
	b := &fakeBackend{record: baseRecord()}
	svc := newService(b)

	st, err := svc.Open(context.Background(), "ap-1", nil)
	if err != nil {
		t.Fatal(err)
	}

	b.getErr = errors.New("backend hiccup")
	_, err = svc.SaveNotes(context.Background(), st, "typed text")
	if !errors.Is(err, ErrSavedButUnverified) {
		t.Fatalf("want ErrSavedButUnverified, got %v", err)
	}
	if b.patchCalls != 1 {
		t.Fatalf("patchCalls = %d, want 1", b.patchCalls)
	}
}

func TestStatusValidationHappensBeforeNetwork(t *testing.T) {
	cases := []struct {
		name    string
		change  StatusChange
		wantErr error
	}{
		{"absent without reason", StatusChange{Target: appointment.StatusAbsent}, ErrReasonRequired},
		{"no_show without reason", StatusChange{Target: appointment.StatusNoShow}, ErrReasonRequired},
		{"absent with made-up reason", StatusChange{Target: appointment.StatusAbsent, Reason: "vibes"}, ErrInvalidReason},
		{"cancelled is not a panel target", StatusChange{Target: appointment.StatusCancelled}, ErrInvalidTarget},
		{"no way back to unset", StatusChange{Target: appointment.StatusUnset}, ErrInvalidTarget},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b := &fakeBackend{record: baseRecord()}
			svc := newService(b)
			st, err := svc.Open(context.Background(), "ap-1", nil)
			if err != nil {
				t.Fatal(err)
			}
			before := b.patchCalls

			_, err = svc.SetStatus(context.Background(), st, c.change)
			if !errors.Is(err, c.wantErr) {
				t.Fatalf("got %v, want %v", err, c.wantErr)
			}
			if b.patchCalls != before {
				t.Fatal("invalid transition reached the network")
			}
		})
	}
}

func TestCheckInNeedsNoReason(t *testing.T) {
	b := &fakeBackend{record: baseRecord()}
	b.applyPatch = func(p upstream.Patch) {
		if p.VisitStatus != nil {
			s, _ := appointment.CoerceVisitStatus(*p.VisitStatus)
			b.record.VisitStatus = s
		}
	}
	svc := newService(b)

	st, err := svc.Open(context.Background(), "ap-1", nil)
	if err != nil {
		t.Fatal(err)
	}

	next, err := svc.SetStatus(context.Background(), st, StatusChange{Target: appointment.StatusCheckIn})
	if err != nil {
		t.Fatalf("check_in: %v", err)
	}
	if next.Summary.VisitStatus != appointment.StatusCheckIn {
		t.Fatalf("status after check_in = %q", next.Summary.VisitStatus)
	}
	if b.patches[0].Reason != nil {
		t.Fatal("check_in must not send a reason")
	}
}

func TestAbsentWithReasonAndNotes(t *testing.T) {
	b := &fakeBackend{record: baseRecord()}
	b.applyPatch = func(p upstream.Patch) {
		if p.VisitStatus != nil {
			s, _ := appointment.CoerceVisitStatus(*p.VisitStatus)
			b.record.VisitStatus = s
		}
		if p.Notes != nil {
			b.record.Notes = *p.Notes
		}
	}
	svc := newService(b)

	st, err := svc.Open(context.Background(), "ap-1", nil)
	if err != nil {
		t.Fatal(err)
	}

	dialogNotes := "called, no answer"
	next, err := svc.SetStatus(context.Background(), st, StatusChange{
		Target: appointment.StatusAbsent,
		Reason: appointment.ReasonPatientUnreachable,
		Notes:  &dialogNotes,
	})
	if err != nil {
		t.Fatalf("absent: %v", err)
	}

	p := b.patches[0]
	if p.Reason == nil || *p.Reason != "patient_unreachable" {
		t.Fatalf("reason patch = %v", p.Reason)
	}
	// Dialog notes overwrite the appointment notes in the same update.
	if next.Summary.Notes != "called, no answer" {
		t.Fatalf("notes after status dialog = %q", next.Summary.Notes)
	}
	if next.Summary.VisitStatus != appointment.StatusAbsent {
		t.Fatalf("status = %q", next.Summary.VisitStatus)
	}
}

func TestDisplayStatusDerivedOnPanel(t *testing.T) {
	rec := baseRecord()
	rec.ClockTime = "09:00" // before fixedNow
	b := &fakeBackend{record: rec}
	svc := newService(b)

	st, err := svc.Open(context.Background(), "ap-1", nil)
	if err != nil {
		t.Fatal(err)
	}

	if got := svc.DisplayStatus(st); got != appointment.StatusAbsent {
		t.Fatalf("derived display status = %q, want absent", got)
	}
	// Derived only: the record still carries no status.
	if st.Summary.VisitStatus != appointment.StatusUnset {
		t.Fatal("derived label must never be written into the record")
	}
}

func TestCollectPaymentHandoff(t *testing.T) {
	b := &fakeBackend{record: baseRecord()}
	svc := newService(b)

	st, err := svc.Open(context.Background(), "ap-1", nil)
	if err != nil {
		t.Fatal(err)
	}

	got := svc.CollectPayment(st)
	want := "/billing/invoices/create/b2c?patientId=pt-1&patientName=Maria+Keller&patientPhone=%2B49+151+000001"
	if got != want {
		t.Fatalf("redirect url = %q, want %q", got, want)
	}
}
