// Package roster keeps the in-memory set of active channels synchronized
// with the remote schedule source and owns the per-channel as-run table.
package roster

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mhoffm/nextup/internal/asrun"
	"github.com/mhoffm/nextup/internal/guide"
	xglog "github.com/mhoffm/nextup/internal/log"
	"github.com/mhoffm/nextup/internal/metrics"
)

// DefaultRefreshInterval is the steady-state polling cadence.
const DefaultRefreshInterval = 10 * time.Second

// ErrUnknownChannel is returned for lookups of ids not in the roster.
var ErrUnknownChannel = errors.New("roster: unknown channel")

// AudioFilter restricts which channels are kept during reconciliation.
type AudioFilter string

const (
	FilterOff     AudioFilter = ""        // keep everything
	FilterDemuxed AudioFilter = "demuxed" // only channels declaring audio tracks
	FilterMuxed   AudioFilter = "muxed"   // only channels without audio tracks
)

// State is the polling cadence state. The transition is one-directional:
// once steady, later refresh failures never drop back to connecting.
type State string

const (
	StateConnecting State = "connecting"
	StateSteady     State = "steady"
)

// Lister is the slice of the guide client the roster needs.
type Lister interface {
	Channels(ctx context.Context) ([]guide.ChannelInfo, error)
}

// Config holds roster construction parameters.
type Config struct {
	Base            string // schedule-source base endpoint
	RefreshInterval time.Duration
	AudioFilter     AudioFilter
}

// Status is a point-in-time snapshot for health reporting.
type Status struct {
	State       State     `json:"state"`
	Channels    int       `json:"channels"`
	LastRefresh time.Time `json:"last_refresh"`
	LastError   string    `json:"last_error,omitempty"`
}

// Roster reconciles the channel table against the remote source. Channel
// objects are replaced wholesale on refresh; the as-run table is keyed by
// channel id and survives replacement and removal.
type Roster struct {
	cfg    Config
	client Lister
	log    *asrun.Log

	mu          sync.RWMutex
	channels    map[string]*guide.Channel
	state       State
	lastRefresh time.Time
	lastErr     error
}

// New returns an empty roster in connecting state.
func New(cfg Config, client Lister) *Roster {
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = DefaultRefreshInterval
	}
	return &Roster{
		cfg:      cfg,
		client:   client,
		log:      asrun.NewLog(),
		channels: make(map[string]*guide.Channel),
		state:    StateConnecting,
	}
}

// Init performs one synchronous refresh before the roster is considered
// ready. A failure here propagates; steady-state failures do not.
func (r *Roster) Init(ctx context.Context) error {
	if err := r.Refresh(ctx); err != nil {
		return fmt.Errorf("initial roster refresh: %w", err)
	}
	return nil
}

// Refresh fetches the full channel list and reconciles the roster: every
// remote channel passing the audio filter is added or replaced, every
// roster channel absent from the remote list is removed. As-run logs of
// removed channels are left in place.
func (r *Roster) Refresh(ctx context.Context) error {
	logger := xglog.WithComponentFromContext(ctx, "roster")

	infos, err := r.client.Channels(ctx)
	if err != nil {
		metrics.RecordRosterRefresh(false)
		r.mu.Lock()
		r.lastErr = err
		r.mu.Unlock()
		return fmt.Errorf("list channels: %w", err)
	}

	next := make(map[string]*guide.Channel, len(infos))
	for _, info := range infos {
		if info.ID == "" {
			continue
		}
		ch := &guide.Channel{
			ID:          info.ID,
			Title:       info.Title,
			ScheduleURL: guide.ScheduleURL(r.cfg.Base, info.ID),
			AudioTracks: info.AudioTracks,
			Profile:     guide.DefaultProfile,
		}
		if !r.keep(ch) {
			continue
		}
		next[ch.ID] = ch
	}

	r.mu.Lock()
	added, removed := diff(r.channels, next)
	r.channels = next
	prev := r.state
	r.state = StateSteady
	r.lastRefresh = time.Now()
	r.lastErr = nil
	r.mu.Unlock()

	metrics.RecordRosterRefresh(true)
	metrics.RecordRosterSize(len(next))

	evt := logger.Debug()
	if len(added) > 0 || len(removed) > 0 || prev == StateConnecting {
		evt = logger.Info()
	}
	evt.
		Int("channels", len(next)).
		Strs("added", added).
		Strs("removed", removed).
		Str(xglog.FieldEvent, "roster.refresh").
		Msg("roster reconciled")
	return nil
}

// keep applies the configured audio filter.
func (r *Roster) keep(ch *guide.Channel) bool {
	switch r.cfg.AudioFilter {
	case FilterDemuxed:
		return ch.Demuxed()
	case FilterMuxed:
		return !ch.Demuxed()
	default:
		return true
	}
}

// Run drives the polling cadence until ctx is cancelled. While connecting
// it probes at a tenth of the refresh interval; the first successful
// refresh switches to the steady cadence exactly once. Steady-state
// failures are logged and retried on the next tick, never escaping the
// loop.
func (r *Roster) Run(ctx context.Context) {
	logger := xglog.WithComponent("roster")

	steady := r.cfg.RefreshInterval
	fast := steady / 10
	if fast <= 0 {
		fast = steady
	}

	current := fast
	if r.State() == StateSteady {
		current = steady
	}

	ticker := time.NewTicker(current)
	defer ticker.Stop()

	logger.Info().
		Dur("interval", current).
		Str(xglog.FieldState, string(r.State())).
		Str(xglog.FieldEvent, "roster.poll_start").
		Msg("roster poller started")

	for {
		select {
		case <-ctx.Done():
			logger.Info().Str(xglog.FieldEvent, "roster.poll_stop").Msg("roster poller stopped")
			return
		case <-ticker.C:
			if err := r.Refresh(ctx); err != nil {
				logger.Warn().
					Err(err).
					Str(xglog.FieldState, string(r.State())).
					Str(xglog.FieldEvent, "roster.refresh_failed").
					Msg("roster refresh failed, retrying on next tick")
				continue
			}
			if current == fast && r.State() == StateSteady {
				current = steady
				ticker.Reset(steady)
				logger.Info().
					Dur("interval", steady).
					Str(xglog.FieldEvent, "roster.steady").
					Msg("connected, switching to steady polling cadence")
			}
		}
	}
}

// State returns the current cadence state.
func (r *Roster) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Status returns a snapshot for health reporting.
func (r *Roster) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := Status{
		State:       r.state,
		Channels:    len(r.channels),
		LastRefresh: r.lastRefresh,
	}
	if r.lastErr != nil {
		s.LastError = r.lastErr.Error()
	}
	return s
}

// Channel looks up a channel by id. It never blocks on network activity.
func (r *Roster) Channel(id string) (*guide.Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.channels[id]
	return ch, ok
}

// Channels returns the current roster sorted by id.
func (r *Roster) Channels() []*guide.Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*guide.Channel, 0, len(r.channels))
	for _, ch := range r.channels {
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AsRun returns up to n most recent as-run entries for the channel, valid
// even when the channel is no longer in the roster.
func (r *Roster) AsRun(channelID string, n int) []asrun.Entry {
	return r.log.Last(channelID, n)
}

// Record appends an emitted selection to the channel's as-run history.
func (r *Roster) Record(channelID string, e asrun.Entry) {
	r.log.Append(channelID, e)
}

// Forget removes the first as-run entry with the given event id, making
// the event selectable again. Best effort; absent ids are a no-op.
func (r *Roster) Forget(channelID, eventID string) {
	r.log.Remove(channelID, eventID)
}

// diff reports ids added to and removed from the roster, sorted.
func diff(old, next map[string]*guide.Channel) (added, removed []string) {
	for id := range next {
		if _, ok := old[id]; !ok {
			added = append(added, id)
		}
	}
	for id := range old {
		if _, ok := next[id]; !ok {
			removed = append(removed, id)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}
