package clinicstub

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type apptPayload struct {
	ID                  string `json:"id"`
	PatientID           string `json:"patientId"`
	PatientName         string `json:"patientName"`
	PatientPhone        string `json:"patientPhone"`
	StaffID             string `json:"staffId,omitempty"`
	AppointmentDate     string `json:"appointmentDate"`
	AppointmentTime     string `json:"appointmentTime"`
	AppointmentDuration int    `json:"appointmentDuration"`
	TotalDuration       int    `json:"totalDuration,omitempty"`
	Procedures          string `json:"procedures,omitempty"`
	Notes               string `json:"notes,omitempty"`
	VisitStatus         string `json:"visitStatus,omitempty"`

	PatientEmail     string `json:"patientEmail,omitempty"`
	PatientAddress   string `json:"patientAddress,omitempty"`
	AudiologistName  string `json:"audiologistName,omitempty"`
	AudiologistPhone string `json:"audiologistPhone,omitempty"`
}

type patchPayload struct {
	Notes               *string `json:"notes"`
	VisitStatus         *string `json:"visitStatus"`
	Reason              *string `json:"reason"`
	AppointmentDate     *string `json:"appointmentDate"`
	AppointmentTime     *string `json:"appointmentTime"`
	AppointmentDuration *int    `json:"appointmentDuration"`
	Procedures          *string `json:"procedures"`
	StaffID             *string `json:"staffId"`
}

type errorPayload struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toPayload(a Appointment) apptPayload {
	p := apptPayload{
		ID:                  a.ID.String(),
		PatientID:           a.PatientID.String(),
		PatientName:         a.PatientName,
		PatientPhone:        a.PatientPhone,
		AppointmentDate:     a.AppointmentDate,
		AppointmentTime:     a.AppointmentTime,
		AppointmentDuration: a.DurationMinutes,
		TotalDuration:       a.TotalMinutes,
		Procedures:          deref(a.Procedures),
		Notes:               a.Notes,
		VisitStatus:         a.VisitStatus,
	}
	if a.StaffID != nil {
		p.StaffID = a.StaffID.String()
	}
	return p
}

// withDetail adds the richer contact fields served on the by-ID route only.
func withDetail(p apptPayload, a Appointment, audiologist *Staff) apptPayload {
	p.PatientEmail = deref(a.PatientEmail)
	p.PatientAddress = deref(a.PatientAddress)
	if audiologist != nil {
		p.AudiologistName = audiologist.Name
		p.AudiologistPhone = deref(audiologist.Phone)
	}
	return p
}

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/appointments", h.listAppointments)
	r.Get("/appointments/{id}", h.getAppointment)
	r.Patch("/appointments/{id}", h.patchAppointment)
	r.Get("/staff", h.listStaff)

	return r
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, details string) {
	h.writeJSON(w, status, errorPayload{Error: code, Details: details})
}

func (h *Handler) listAppointments(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 20
	}
	if limit > 500 {
		limit = 500
	}

	appts, total, err := h.repo.ListAppointments(r.Context(), limit, (page-1)*limit)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	payloads := make([]apptPayload, 0, len(appts))
	for _, a := range appts {
		payloads = append(payloads, toPayload(a))
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"appointments": payloads,
		"total":        total,
		"page":         page,
		"limit":        limit,
	})
}

func (h *Handler) getAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
		return
	}

	a, err := h.repo.GetAppointmentByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			h.writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
			return
		}
		h.writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	var audiologist *Staff
	if a.StaffID != nil {
		if s, err := h.repo.GetStaffByID(r.Context(), *a.StaffID); err == nil {
			audiologist = s
		}
	}

	h.writeJSON(w, http.StatusOK, withDetail(toPayload(*a), *a, audiologist))
}

func (h *Handler) patchAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
		return
	}

	var req patchPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}

	upd := Update{
		Notes:           req.Notes,
		VisitStatus:     req.VisitStatus,
		Reason:          req.Reason,
		AppointmentDate: req.AppointmentDate,
		AppointmentTime: req.AppointmentTime,
		DurationMinutes: req.AppointmentDuration,
		Procedures:      req.Procedures,
	}
	if req.StaffID != nil {
		staffID, err := uuid.Parse(*req.StaffID)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid_staff_id", "staffId must be a valid UUID")
			return
		}
		upd.StaffID = &staffID
	}

	a, err := h.repo.UpdateAppointment(r.Context(), id, upd)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			h.writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
			return
		}
		h.writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, toPayload(*a))
}

func (h *Handler) listStaff(w http.ResponseWriter, r *http.Request) {
	staff, err := h.repo.ListStaff(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	type staffPayload struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Role  string `json:"role"`
		Phone string `json:"phone,omitempty"`
		Email string `json:"email,omitempty"`
	}

	payloads := make([]staffPayload, 0, len(staff))
	for _, s := range staff {
		payloads = append(payloads, staffPayload{
			ID:    s.ID.String(),
			Name:  s.Name,
			Role:  s.Role,
			Phone: deref(s.Phone),
			Email: deref(s.Email),
		})
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"staff": payloads})
}
