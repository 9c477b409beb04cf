// Package schedule selects the event that should be airing on a channel
// right now, given a fetched schedule window and the channel's as-run
// history.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mhoffm/nextup/internal/asrun"
	"github.com/mhoffm/nextup/internal/guide"
	xglog "github.com/mhoffm/nextup/internal/log"
)

const (
	// windowRadius bounds a single schedule fetch to [now-300s, now+300s].
	windowRadius = 300 * time.Second

	// graceMS is the early-start threshold: an event starting within 4s is
	// treated as current rather than producing a filler gap.
	graceMS = int64(4000)

	// historyDepth is how far back the repeat check looks.
	historyDepth = 3
)

var (
	ErrEmptySchedule  = errors.New("schedule: window contains no events")
	ErrNoEvent        = errors.New("schedule: all candidates exhausted")
	ErrStaleSelection = errors.New("schedule: selected event already ended")
)

// Fetcher is the slice of the guide client the resolver needs.
type Fetcher interface {
	Window(ctx context.Context, scheduleURL string, start, end time.Time) ([]guide.Event, error)
}

// History is the roster-owned as-run lookup. The resolver only reads it;
// appending the emitted selection is the caller's responsibility.
type History interface {
	AsRun(channelID string, n int) []asrun.Entry
}

// Kind discriminates the two meaningful resolution outcomes.
type Kind int

const (
	KindEvent Kind = iota // a playable event was selected
	KindGap               // nothing should play yet; insert filler
)

// Selection is the outcome of one resolution. Exactly one case is
// meaningful: KindGap carries only Gap, KindEvent carries Event and
// OffsetForced.
type Selection struct {
	Kind  Kind
	Event *guide.Event

	// OffsetForced is set when skip-ahead advanced the cursor; the landed
	// event is fresh and must play from its beginning.
	OffsetForced bool

	// Gap is the time until the selected event's scheduled start.
	Gap time.Duration
}

// Resolver applies the temporal selection rules over fetched windows.
type Resolver struct {
	fetch   Fetcher
	history History
}

// NewResolver returns a resolver reading windows via f and repeat history
// via h.
func NewResolver(f Fetcher, h History) *Resolver {
	return &Resolver{fetch: f, history: h}
}

// Resolve fetches the channel's ±300s window around now and selects the
// event that should be airing. A zero now means wall-clock time.
//
// Repeated calls with unchanged remote data and unchanged history yield
// the same selection; the caller's append to the as-run log is what moves
// the next call forward.
func (r *Resolver) Resolve(ctx context.Context, ch *guide.Channel, now time.Time) (Selection, error) {
	if now.IsZero() {
		now = time.Now()
	}
	nowMS := now.UnixMilli()
	logger := xglog.WithComponentFromContext(ctx, "resolver")

	events, err := r.fetch.Window(ctx, ch.ScheduleURL, now.Add(-windowRadius), now.Add(windowRadius))
	if err != nil {
		return Selection{}, fmt.Errorf("fetch window for %s: %w", ch.ID, err)
	}
	if len(events) == 0 {
		return Selection{}, ErrEmptySchedule
	}

	hist := r.history.AsRun(ch.ID, historyDepth)
	played := make(map[string]bool, len(hist))
	for _, e := range hist {
		played[e.EventID] = true
	}

	current := &events[0]
	skipped := false

	// prevEnd tracks the end of whatever precedes the candidate (a skipped
	// event, or the last as-run entry in the single-event case). It feeds
	// only the back-to-back check.
	var prevEnd int64
	hasPrev := false

	if len(events) == 1 {
		if played[current.ID] {
			// Last event in schedule already played.
			current = nil
		} else if len(hist) > 0 {
			last := hist[len(hist)-1]
			prevEnd = last.EndMS
			hasPrev = true
		}
	} else {
		// Advance past candidates that were already played OR have already
		// ended. The two reasons combine with OR deliberately: either one
		// alone moves the cursor.
		idx := 0
		for idx+1 < len(events) && (played[current.ID] || nowMS >= current.EndMS) {
			prevEnd = current.EndMS
			hasPrev = true
			idx++
			current = &events[idx]
			skipped = true
		}
		if played[current.ID] {
			current = nil
		}
	}

	if current == nil {
		return Selection{}, ErrNoEvent
	}

	if nowMS < current.StartMS-graceMS {
		if !hasPrev || prevEnd != current.StartMS {
			gap := time.Duration(current.StartMS-nowMS) * time.Millisecond
			logger.Debug().
				Str(xglog.FieldChannelID, ch.ID).
				Str(xglog.FieldEventID, current.ID).
				Int64(xglog.FieldGapMS, current.StartMS-nowMS).
				Str(xglog.FieldEvent, "resolve.gap").
				Msg("next event not started, inserting filler")
			return Selection{Kind: KindGap, Gap: gap}, nil
		}
		// Contiguous with the prior event: preserve back-to-back continuity
		// instead of inserting an artificial gap.
	} else if nowMS > current.EndMS {
		return Selection{}, fmt.Errorf("%w: event %s ended %dms ago", ErrStaleSelection, current.ID, nowMS-current.EndMS)
	}

	logger.Debug().
		Str(xglog.FieldChannelID, ch.ID).
		Str(xglog.FieldEventID, current.ID).
		Bool("offset_forced", skipped).
		Str(xglog.FieldEvent, "resolve.selected").
		Msg("selected schedule event")

	return Selection{Kind: KindEvent, Event: current, OffsetForced: skipped}, nil
}
