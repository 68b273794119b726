package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	"github.com/auricare/calendar-gateway/internal/appointment"
	"github.com/auricare/calendar-gateway/internal/config"
	"github.com/auricare/calendar-gateway/internal/panel"
	"github.com/auricare/calendar-gateway/internal/printsettings"
	"github.com/auricare/calendar-gateway/internal/staff"
	"github.com/auricare/calendar-gateway/internal/upstream"
)

// AppointmentLister is the read side of the upstream client the grid needs.
type AppointmentLister interface {
	ListAppointments(ctx context.Context, page, limit int) ([]appointment.Appointment, int, error)
}

// StaffSource produces the ID to name lookup for the visible grid.
type StaffSource interface {
	Snapshot(ctx context.Context) (staff.Lookup, error)
}

type RouterConfig struct {
	Lister   AppointmentLister
	Panel    *panel.Service
	Staff    StaffSource
	Prints   *printsettings.Store
	Upstream *upstream.Client
	Redis    *redis.Client
	Cfg      config.Config
	Version  string
	Now      func() time.Time
	Location *time.Location
}

type Server struct {
	lister   AppointmentLister
	panel    *panel.Service
	staffSrc StaffSource
	prints   *printsettings.Store
	cfg      config.Config
	now      func() time.Time
	loc      *time.Location
	validate *validator.Validate
	recent   *recentAppointments
}

func NewRouter(rc RouterConfig) http.Handler {
	if rc.Now == nil {
		rc.Now = time.Now
	}
	if rc.Location == nil {
		rc.Location = time.Local
	}

	s := &Server{
		lister:   rc.Lister,
		panel:    rc.Panel,
		staffSrc: rc.Staff,
		prints:   rc.Prints,
		cfg:      rc.Cfg,
		now:      rc.Now,
		loc:      rc.Location,
		validate: validator.New(),
		recent:   newRecentAppointments(),
	}

	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	health := NewHealthHandler(rc.Upstream, rc.Redis, rc.Cfg.Env, rc.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Get("/calendar/grid", s.handleGrid)
	r.Get("/calendar/navigate", s.handleNavigate)

	r.Get("/appointments/{id}/panel", s.handleOpenPanel)
	r.Put("/appointments/{id}/notes", s.handleSaveNotes)
	r.Post("/appointments/{id}/status", s.handleStatusUpdate)
	r.Post("/appointments/{id}/collect-payment", s.handleCollectPayment)

	if s.prints != nil {
		r.Get("/print-settings/{documentType}", s.handleGetPrintSettings)
		r.Put("/print-settings/{documentType}", s.handlePutPrintSettings)
		r.Delete("/print-settings/{documentType}", s.handleDeletePrintSettings)
	}

	return r
}
