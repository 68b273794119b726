package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/auricare/calendar-gateway/internal/appointment"
	"github.com/auricare/calendar-gateway/internal/panel"
	"github.com/auricare/calendar-gateway/internal/upstream"
)

func (s *Server) toPanelResponse(st *panel.State) PanelResponse {
	view := toAppointmentView(st.Summary.Appointment, nil, s.now())
	view.StaffName = st.AudiologistName
	return PanelResponse{
		Appointment:      view,
		PatientEmail:     st.Summary.PatientEmail,
		PatientAddress:   st.Summary.PatientAddress,
		AudiologistName:  st.AudiologistName,
		AudiologistPhone: st.Summary.AudiologistPhone,
		Procedures:       st.Summary.Procedures,
		Degraded:         st.Degraded,
	}
}

func (s *Server) handleOpenPanel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	st, err := s.panel.Open(r.Context(), id, s.recent.copyOf(id))
	if err != nil {
		handlePanelError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s.toPanelResponse(st))
}

func (s *Server) handleSaveNotes(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req SaveNotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}

	st, err := s.panel.Open(r.Context(), id, s.recent.copyOf(id))
	if err != nil {
		handlePanelError(w, err)
		return
	}

	next, err := s.panel.SaveNotes(r.Context(), st, req.Notes)
	if err != nil {
		handlePanelError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s.toPanelResponse(next))
}

func (s *Server) handleStatusUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_status_request", err.Error())
		return
	}

	st, err := s.panel.Open(r.Context(), id, s.recent.copyOf(id))
	if err != nil {
		handlePanelError(w, err)
		return
	}

	next, err := s.panel.SetStatus(r.Context(), st, panel.StatusChange{
		Target: appointment.VisitStatus(req.Status),
		Reason: appointment.AbsenceReason(req.Reason),
		Notes:  req.Notes,
	})
	if err != nil {
		handlePanelError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s.toPanelResponse(next))
}

func (s *Server) handleCollectPayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	st, err := s.panel.Open(r.Context(), id, s.recent.copyOf(id))
	if err != nil {
		handlePanelError(w, err)
		return
	}

	// The panel closes on the client once it follows the redirect.
	writeJSON(w, http.StatusOK, CollectPaymentResponse{
		RedirectURL: s.panel.CollectPayment(st),
	})
}

func handlePanelError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, upstream.ErrNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, upstream.ErrNotInScannedPage):
		// Distinct from a plain not-found: the backend page scan simply did
		// not contain the ID.
		writeError(w, http.StatusNotFound, "not_in_scanned_page", err.Error())
	case errors.Is(err, panel.ErrReadOnly):
		writeError(w, http.StatusConflict, "panel_read_only", err.Error())
	case errors.Is(err, panel.ErrInvalidTarget),
		errors.Is(err, panel.ErrReasonRequired),
		errors.Is(err, panel.ErrInvalidReason):
		writeError(w, http.StatusUnprocessableEntity, "invalid_status_transition", err.Error())
	case errors.Is(err, panel.ErrSavedButUnverified):
		writeError(w, http.StatusBadGateway, "saved_but_unverified", err.Error())
	default:
		writeError(w, http.StatusBadGateway, "upstream_error", err.Error())
	}
}
