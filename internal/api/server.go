// Package api provides the host-facing HTTP surface of the daemon.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mhoffm/nextup/internal/roster"
	"github.com/mhoffm/nextup/internal/selector"
)

// Server exposes channel listing, next-asset resolution, live-break
// preview and playback failure reporting over HTTP.
type Server struct {
	selector *selector.Selector
	roster   *roster.Roster
}

// NewServer wires the API around the selector facade and the roster.
func NewServer(sel *selector.Selector, ros *roster.Roster) *Server {
	return &Server{selector: sel, roster: ros}
}

// Router builds the chi router with the standard middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(AccessLog)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(httprate.LimitByIP(300, time.Minute))
		r.Get("/channels", s.handleChannels)
		r.Get("/channels/{id}/next", s.handleNext)
		r.Get("/channels/{id}/live", s.handleLive)
		r.Post("/playback/failure", s.handleFailure)
	})

	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
