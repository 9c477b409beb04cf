package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mhoffm/nextup/internal/guide"
	xglog "github.com/mhoffm/nextup/internal/log"
	"github.com/mhoffm/nextup/internal/roster"
	"github.com/mhoffm/nextup/internal/selector"
)

// channelSummary is the external channel representation.
type channelSummary struct {
	ID          string             `json:"id"`
	Title       string             `json:"title,omitempty"`
	AudioTracks []guide.AudioTrack `json:"audioTracks,omitempty"`
}

func (s *Server) handleChannels(w http.ResponseWriter, r *http.Request) {
	chs := s.roster.Channels()
	out := make([]channelSummary, 0, len(chs))
	for _, ch := range chs {
		out = append(out, channelSummary{
			ID:          ch.ID,
			Title:       ch.Title,
			AudioTracks: ch.AudioTracks,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := xglog.ContextWithChannelID(r.Context(), id)

	resp, err := s.selector.Next(ctx, id)
	if err != nil {
		s.writeSelectionError(w, ctx, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := xglog.ContextWithChannelID(r.Context(), id)

	events, err := s.selector.LiveUpcoming(ctx, id)
	if err != nil {
		s.writeSelectionError(w, ctx, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleFailure(w http.ResponseWriter, r *http.Request) {
	var resp selector.Response
	if err := json.NewDecoder(r.Body).Decode(&resp); err != nil {
		writeError(w, http.StatusBadRequest, "invalid failure report body")
		return
	}
	if resp.ChannelID == "" || resp.ID == "" {
		writeError(w, http.StatusBadRequest, "failure report requires id and channelId")
		return
	}
	s.selector.ReportFailure(&resp)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.roster.Status()
	code := http.StatusOK
	if status.State != roster.StateSteady {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

// writeSelectionError maps selection failures onto HTTP statuses: unknown
// channel is the caller's mistake, an exhausted retry budget is an
// upstream problem, a gone client is logged and dropped.
func (s *Server) writeSelectionError(w http.ResponseWriter, ctx context.Context, err error) {
	logger := xglog.WithComponentFromContext(ctx, "api")

	switch {
	case errors.Is(err, roster.ErrUnknownChannel):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, context.Canceled):
		logger.Debug().Err(err).Str(xglog.FieldEvent, "api.client_gone").Msg("request abandoned")
	case errors.Is(err, selector.ErrExhausted):
		logger.Warn().Err(err).Str(xglog.FieldEvent, "api.exhausted").Msg("selection failed after retries")
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		logger.Error().Err(err).Str(xglog.FieldEvent, "api.error").Msg("selection failed")
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
