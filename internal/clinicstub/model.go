// Package clinicstub is a small stand-in for the real practice-management
// backend, speaking the same REST contract the gateway consumes. It exists so
// the gateway can be run and exercised locally; it is not the product.
package clinicstub

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrStaffNotFound       = errors.New("staff member not found")
)

type Appointment struct {
	ID              uuid.UUID
	PatientID       uuid.UUID
	PatientName     string
	PatientPhone    string
	PatientEmail    *string
	PatientAddress  *string
	StaffID         *uuid.UUID
	AppointmentDate string // 2006-01-02; empty when the booking never got a date
	AppointmentTime string // 15:04; free text in legacy rows, may be unparseable
	DurationMinutes int
	TotalMinutes    int
	Procedures      *string
	Notes           string
	VisitStatus     string
	Reason          *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Staff struct {
	ID        uuid.UUID
	Name      string
	Role      string
	Phone     *string
	Email     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Update is a partial appointment write; nil fields are left untouched.
type Update struct {
	Notes           *string
	VisitStatus     *string
	Reason          *string
	AppointmentDate *string
	AppointmentTime *string
	DurationMinutes *int
	Procedures      *string
	StaffID         *uuid.UUID
}

// Repository contains all DB interactions needed by the stub handlers and
// the seeder.
type Repository interface {
	ListAppointments(ctx context.Context, limit, offset int) ([]Appointment, int, error)
	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	UpdateAppointment(ctx context.Context, id uuid.UUID, upd Update) (*Appointment, error)
	InsertAppointment(ctx context.Context, a Appointment) error

	ListStaff(ctx context.Context) ([]Staff, error)
	GetStaffByID(ctx context.Context, id uuid.UUID) (*Staff, error)
	InsertStaff(ctx context.Context, s Staff) error
}
