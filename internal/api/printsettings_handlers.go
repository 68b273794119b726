package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/auricare/calendar-gateway/internal/printsettings"
)

const maxSettingsBody = 64 << 10 // print layouts are small JSON objects

func (s *Server) handleGetPrintSettings(w http.ResponseWriter, r *http.Request) {
	docType := chi.URLParam(r, "documentType")

	blob, err := s.prints.Get(r.Context(), docType)
	if err != nil {
		handlePrintSettingsError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(blob)
}

func (s *Server) handlePutPrintSettings(w http.ResponseWriter, r *http.Request) {
	docType := chi.URLParam(r, "documentType")

	blob, err := io.ReadAll(io.LimitReader(r.Body, maxSettingsBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", err.Error())
		return
	}

	if err := s.prints.Put(r.Context(), docType, blob); err != nil {
		handlePrintSettingsError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeletePrintSettings(w http.ResponseWriter, r *http.Request) {
	docType := chi.URLParam(r, "documentType")

	if err := s.prints.Delete(r.Context(), docType); err != nil {
		handlePrintSettingsError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func handlePrintSettingsError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, printsettings.ErrNotFound):
		writeError(w, http.StatusNotFound, "print_settings_not_found", err.Error())
	case errors.Is(err, printsettings.ErrInvalidBlob),
		errors.Is(err, printsettings.ErrEmptyDocType):
		writeError(w, http.StatusUnprocessableEntity, "invalid_print_settings", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
