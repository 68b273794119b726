// Package panel implements the appointment detail panel: opening an
// appointment against the canonical backend record, saving notes, and
// recording visit-status transitions. All mutations are wait-then-render:
// nothing is reported back to the caller until the backend has confirmed it,
// so there is no optimistic state to roll back.
package panel

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/auricare/calendar-gateway/internal/appointment"
	"github.com/auricare/calendar-gateway/internal/staff"
	"github.com/auricare/calendar-gateway/internal/upstream"
)

var (
	ErrReadOnly       = errors.New("panel is read-only in degraded mode")
	ErrInvalidTarget  = errors.New("status target must be check_in, absent or no_show")
	ErrReasonRequired = errors.New("absent and no_show require a reason")
	ErrInvalidReason  = errors.New("reason is not one of the known values")

	// ErrSavedButUnverified marks a write that the backend accepted but whose
	// follow-up re-fetch failed. The caller must stay in edit mode: the
	// displayed text has not been confirmed against the server.
	ErrSavedButUnverified = errors.New("update saved but re-fetch failed")
)

// Backend is the slice of the upstream client the panel uses.
type Backend interface {
	GetAppointment(ctx context.Context, id string) (*appointment.Summary, error)
	UpdateAppointment(ctx context.Context, id string, patch upstream.Patch) (*appointment.Appointment, error)
}

// State is one open detail panel. At most one panel is open per session; the
// caller discards the state when the panel closes.
type State struct {
	Summary         appointment.Summary
	AudiologistName string // resolved through the injected staff lookup
	Degraded        bool   // serving a stale cached copy, mutations rejected
}

type Service struct {
	backend Backend
	staff   staff.Lookup
	now     func() time.Time

	// where Collect Payment hands off to
	billingBasePath string
}

func NewService(backend Backend, lookup staff.Lookup, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	if lookup == nil {
		lookup = staff.MapLookup{}
	}
	return &Service{
		backend:         backend,
		staff:           lookup,
		now:             now,
		billingBasePath: "/billing/invoices/create/b2c",
	}
}

// Open fetches the canonical record so the panel always shows server-fresh
// notes and status rather than the list copy. When the backend cannot produce
// the record and the caller still holds a cached copy, the panel opens in a
// degraded read-only mode on that copy.
func (s *Service) Open(ctx context.Context, id string, cached *appointment.Appointment) (*State, error) {
	summary, err := s.backend.GetAppointment(ctx, id)
	if err != nil {
		// A record the backend confirms gone stays gone; the cached copy
		// only papers over fetch failures.
		if cached != nil && !errors.Is(err, upstream.ErrNotFound) {
			log.Printf("panel open %s: falling back to cached copy: %v", id, err)
			st := &State{
				Summary:  appointment.Summary{Appointment: *cached},
				Degraded: true,
			}
			s.resolveStaff(st)
			return st, nil
		}
		return nil, fmt.Errorf("open panel %s: %w", id, err)
	}

	st := &State{Summary: *summary}
	s.resolveStaff(st)
	return st, nil
}

func (s *Service) resolveStaff(st *State) {
	if st.AudiologistName == "" {
		st.AudiologistName = st.Summary.AudiologistName
	}
	if st.AudiologistName == "" {
		if name, ok := s.staff.NameFor(st.Summary.StaffID); ok {
			st.AudiologistName = name
		}
	}
}

// DisplayStatus is the status label for the open panel, including the
// derived absent label for past appointments with nothing recorded.
func (s *Service) DisplayStatus(st *State) appointment.VisitStatus {
	return appointment.DisplayStatus(st.Summary.Appointment, s.now())
}

// SaveNotes writes the notes buffer and re-fetches the canonical record. The
// returned state carries what the server persisted, which may differ from the
// typed text. Edit mode ends only when both calls succeed; a failed re-fetch
// after a successful write returns ErrSavedButUnverified.
func (s *Service) SaveNotes(ctx context.Context, st *State, notes string) (*State, error) {
	if st.Degraded {
		return nil, ErrReadOnly
	}

	id := st.Summary.ID
	if _, err := s.backend.UpdateAppointment(ctx, id, upstream.Patch{Notes: &notes}); err != nil {
		return nil, fmt.Errorf("save notes for %s: %w", id, err)
	}

	fresh, err := s.backend.GetAppointment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSavedButUnverified, err)
	}

	next := &State{Summary: *fresh}
	s.resolveStaff(next)
	return next, nil
}

// StatusChange is one visit-status transition request from the status dialog.
type StatusChange struct {
	Target appointment.VisitStatus
	Reason appointment.AbsenceReason // required for absent / no_show
	Notes  *string                   // optional, overwrites the appointment notes
}

// Validate applies the transition rules before anything touches the network.
func (c StatusChange) Validate() error {
	switch c.Target {
	case appointment.StatusCheckIn:
		// No reason needed.
	case appointment.StatusAbsent, appointment.StatusNoShow:
		if c.Reason == "" {
			return ErrReasonRequired
		}
		if !appointment.ValidReason(c.Reason) {
			return ErrInvalidReason
		}
	default:
		// Includes unset: there is no way back to "no status".
		return ErrInvalidTarget
	}
	return nil
}

// SetStatus records a visit-status transition, then re-fetches so the panel
// renders only server-confirmed state.
func (s *Service) SetStatus(ctx context.Context, st *State, change StatusChange) (*State, error) {
	if st.Degraded {
		return nil, ErrReadOnly
	}
	if err := change.Validate(); err != nil {
		return nil, err
	}

	target := string(change.Target)
	patch := upstream.Patch{VisitStatus: &target, Notes: change.Notes}
	if change.Target == appointment.StatusAbsent || change.Target == appointment.StatusNoShow {
		reason := string(change.Reason)
		patch.Reason = &reason
	}

	id := st.Summary.ID
	if _, err := s.backend.UpdateAppointment(ctx, id, patch); err != nil {
		return nil, fmt.Errorf("set status for %s: %w", id, err)
	}

	fresh, err := s.backend.GetAppointment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSavedButUnverified, err)
	}

	next := &State{Summary: *fresh}
	s.resolveStaff(next)
	return next, nil
}

// CollectPayment closes the panel and hands off to the invoice-creation flow.
// The returned URL carries the patient identity; the invoice itself is the
// billing service's business.
func (s *Service) CollectPayment(st *State) string {
	q := url.Values{}
	q.Set("patientId", st.Summary.PatientID)
	q.Set("patientName", st.Summary.PatientName)
	q.Set("patientPhone", st.Summary.PatientPhone)
	return s.billingBasePath + "?" + q.Encode()
}
