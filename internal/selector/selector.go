// Package selector answers "what is the next playable unit for channel X",
// orchestrating the schedule resolver, the retry policy and the as-run log.
package selector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mhoffm/nextup/internal/asrun"
	"github.com/mhoffm/nextup/internal/guide"
	xglog "github.com/mhoffm/nextup/internal/log"
	"github.com/mhoffm/nextup/internal/metrics"
	"github.com/mhoffm/nextup/internal/retry"
	"github.com/mhoffm/nextup/internal/roster"
	"github.com/mhoffm/nextup/internal/schedule"
)

const (
	DefaultRetryDelay = 2 * time.Second
	DefaultRetries    = 3

	// classification is the fixed tag carried in timed metadata for
	// downstream tagging of scheduled assets.
	classification = "scheduled-vod"
)

// ErrExhausted is returned when the bounded retry budget is spent without
// a successful resolution.
var ErrExhausted = errors.New("selector: scheduling retries exhausted")

// Resolver is the schedule-resolution dependency.
type Resolver interface {
	Resolve(ctx context.Context, ch *guide.Channel, now time.Time) (schedule.Selection, error)
}

// LiveResolver is the live-interlude preview dependency.
type LiveResolver interface {
	Upcoming(ctx context.Context, ch *guide.Channel, now time.Time) ([]schedule.LiveEvent, error)
}

// Roster is the channel/as-run dependency.
type Roster interface {
	Channel(id string) (*guide.Channel, bool)
	Record(channelID string, e asrun.Entry)
	Forget(channelID, eventID string)
}

// TimedMetadata mirrors the selected event for downstream tagging.
type TimedMetadata struct {
	ID             string `json:"id"`
	ChannelID      string `json:"channelId"`
	Title          string `json:"title"`
	StartMS        int64  `json:"start_time"`
	EndMS          int64  `json:"end_time"`
	Start          string `json:"start"`
	End            string `json:"end"`
	Classification string `json:"classification"`
}

// Response is the externally-facing selection result. A gap filler carries
// id/title "GAP", type "gap" and only the desired duration.
type Response struct {
	ID                string         `json:"id"`
	ChannelID         string         `json:"channelId"`
	Title             string         `json:"title"`
	Type              string         `json:"type"` // "vod" | "gap"
	URI               string         `json:"uri,omitempty"`
	Offset            float64        `json:"offset"` // seconds into the asset
	DiffMS            int64          `json:"diffMs"` // ms until scheduled start; negative = already started
	DesiredDurationMS int64          `json:"desiredDuration,omitempty"`
	TimedMetadata     *TimedMetadata `json:"timedMetadata,omitempty"`
}

// Config tunes the retry envelope around one resolution.
type Config struct {
	RetryDelay time.Duration
	Retries    int
}

// Selector is the asset-manager facade consumed by the host engine.
type Selector struct {
	cfg      Config
	roster   Roster
	resolver Resolver
	live     LiveResolver
}

// New returns a selector with the given dependencies. A zero retry delay
// falls back to the 2s default; Retries=0 means a single attempt.
func New(cfg Config, r Roster, res Resolver, live LiveResolver) *Selector {
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	return &Selector{cfg: cfg, roster: r, resolver: res, live: live}
}

// Next resolves the next playable unit for the channel. The emitted event
// is appended to the as-run log before returning, so an immediate repeat
// call moves forward instead of re-selecting it.
func (s *Selector) Next(ctx context.Context, channelID string) (*Response, error) {
	logger := xglog.WithComponentFromContext(ctx, "selector")
	started := time.Now()
	defer func() { metrics.ObserveResolve(time.Since(started)) }()

	ch, ok := s.roster.Channel(channelID)
	if !ok {
		metrics.RecordResolution("error")
		return nil, fmt.Errorf("getNext %q: %w", channelID, roster.ErrUnknownChannel)
	}

	attempt := 0
	sel, err := retry.Do(ctx, s.cfg.RetryDelay, s.cfg.Retries, func(ctx context.Context) (schedule.Selection, error) {
		attempt++
		if attempt > 1 {
			metrics.IncRetryAttempt()
		}
		return s.resolver.Resolve(ctx, ch, time.Now())
	})
	if err != nil {
		metrics.RecordResolution("error")
		logger.Warn().
			Err(err).
			Str(xglog.FieldChannelID, channelID).
			Int(xglog.FieldAttempt, attempt).
			Str(xglog.FieldEvent, "select.exhausted").
			Msg("resolution failed after retry budget")
		return nil, fmt.Errorf("%w: %v", ErrExhausted, err)
	}

	if sel.Kind == schedule.KindGap {
		metrics.RecordResolution("gap")
		logger.Info().
			Str(xglog.FieldChannelID, channelID).
			Int64(xglog.FieldGapMS, sel.Gap.Milliseconds()).
			Str(xglog.FieldEvent, "select.gap").
			Msg("no event due yet, returning filler")
		return &Response{
			ID:                "GAP",
			ChannelID:         channelID,
			Title:             "GAP",
			Type:              "gap",
			DesiredDurationMS: sel.Gap.Milliseconds(),
		}, nil
	}

	ev := sel.Event
	nowMS := time.Now().UnixMilli()

	// Skip-ahead lands on a fresh event, so it plays from the top;
	// otherwise resume at the point the schedule says we are at.
	var offset float64
	if !sel.OffsetForced && nowMS > ev.StartMS {
		offset = float64(nowMS-ev.StartMS) / 1000.0
	}
	diffMS := ev.StartMS - nowMS

	s.roster.Record(channelID, asrun.Entry{EventID: ev.ID, EndMS: ev.EndMS})

	metrics.RecordResolution("event")
	logger.Info().
		Str(xglog.FieldChannelID, channelID).
		Str(xglog.FieldEventID, ev.ID).
		Float64(xglog.FieldOffset, offset).
		Int64(xglog.FieldDiffMS, diffMS).
		Str(xglog.FieldEvent, "select.event").
		Msg("selected next asset")

	return &Response{
		ID:        ev.ID,
		ChannelID: channelID,
		Title:     ev.Title,
		Type:      "vod",
		URI:       ev.URL,
		Offset:    offset,
		DiffMS:    diffMS,
		TimedMetadata: &TimedMetadata{
			ID:             ev.ID,
			ChannelID:      ev.ChannelID,
			Title:          ev.Title,
			StartMS:        ev.StartMS,
			EndMS:          ev.EndMS,
			Start:          ev.Start,
			End:            ev.End,
			Classification: classification,
		},
	}, nil
}

// ReportFailure compensates for a selection the host could not load: the
// as-run entry is removed so the event can be reconsidered. It never
// fails; unknown or gap responses are ignored.
func (s *Selector) ReportFailure(resp *Response) {
	if resp == nil || resp.Type == "gap" || resp.ID == "" {
		return
	}
	s.roster.Forget(resp.ChannelID, resp.ID)
	metrics.IncPlaybackFailure()
	logger := xglog.WithComponent("selector")
	logger.Info().
		Str(xglog.FieldChannelID, resp.ChannelID).
		Str(xglog.FieldEventID, resp.ID).
		Str(xglog.FieldEvent, "select.report_failure").
		Msg("removed failed selection from as-run log")
}

// LiveUpcoming previews upcoming live breaks for a channel.
func (s *Selector) LiveUpcoming(ctx context.Context, channelID string) ([]schedule.LiveEvent, error) {
	ch, ok := s.roster.Channel(channelID)
	if !ok {
		return nil, fmt.Errorf("live window %q: %w", channelID, roster.ErrUnknownChannel)
	}
	return s.live.Upcoming(ctx, ch, time.Now())
}
