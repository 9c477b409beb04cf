package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	xglog "github.com/mhoffm/nextup/internal/log"
)

// RequestID attaches a request id to the context, honoring an inbound
// X-Request-ID header when present.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", rid)
		next.ServeHTTP(w, r.WithContext(xglog.ContextWithRequestID(r.Context(), rid)))
	})
}

// statusRecorder captures the response status for access logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// AccessLog emits one structured log line per request.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		logger := xglog.WithComponentFromContext(r.Context(), "api")
		logger.Info().
			Str("method", r.Method).
			Str(xglog.FieldURL, r.URL.Path).
			Int(xglog.FieldStatus, rec.status).
			Dur("duration", time.Since(started)).
			Str(xglog.FieldEvent, "api.request").
			Msg("handled request")
	})
}
