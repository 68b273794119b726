package api

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/auricare/calendar-gateway/internal/requestid"
)

// RequestIDMiddleware tags every request with a correlation ID, honouring one
// supplied by the caller. The ID rides the context from here through the
// upstream client, so a gateway request and the backend calls it fans out to
// log under the same ID.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestid.Header)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(requestid.Header, id)

		next.ServeHTTP(w, r.WithContext(requestid.NewContext(r.Context(), id)))
	})
}

// LoggingMiddleware logs one line per request with status and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		log.Printf(
			"request_id=%s method=%s path=%s status=%d duration=%s",
			requestid.FromContext(r.Context()),
			r.Method,
			r.URL.Path,
			rec.status,
			time.Since(start),
		)
	})
}

// statusRecorder captures the status code for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}
