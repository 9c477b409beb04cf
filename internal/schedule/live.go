package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/mhoffm/nextup/internal/guide"
)

// liveWindowRadius bounds the live-interlude preview fetch to ±3600s.
const liveWindowRadius = 3600 * time.Second

// LiveEvent is the summary of one upcoming live break.
type LiveEvent struct {
	ID        string `json:"id"`
	ChannelID string `json:"channelId"`
	Title     string `json:"title"`
	StartMS   int64  `json:"start_time"`
	EndMS     int64  `json:"end_time"`
	LiveURL   string `json:"liveUrl,omitempty"`
}

// LiveResolver fetches live-event windows for channels configured with
// live interludes. Live events are never replayed, so no as-run
// suppression applies; this is pure time-filtering.
type LiveResolver struct {
	fetch Fetcher
}

// NewLiveResolver returns a live-window resolver reading via f.
func NewLiveResolver(f Fetcher) *LiveResolver {
	return &LiveResolver{fetch: f}
}

// Upcoming returns the LIVE-kind events overlapping [now-1h, now+1h] in
// window order. A zero now means wall-clock time.
func (r *LiveResolver) Upcoming(ctx context.Context, ch *guide.Channel, now time.Time) ([]LiveEvent, error) {
	if now.IsZero() {
		now = time.Now()
	}

	events, err := r.fetch.Window(ctx, ch.ScheduleURL, now.Add(-liveWindowRadius), now.Add(liveWindowRadius))
	if err != nil {
		return nil, fmt.Errorf("fetch live window for %s: %w", ch.ID, err)
	}

	out := make([]LiveEvent, 0, len(events))
	for _, e := range events {
		if e.Kind != guide.KindLive {
			continue
		}
		out = append(out, LiveEvent{
			ID:        e.ID,
			ChannelID: e.ChannelID,
			Title:     e.Title,
			StartMS:   e.StartMS,
			EndMS:     e.EndMS,
			LiveURL:   e.LiveURL,
		})
	}
	return out, nil
}
