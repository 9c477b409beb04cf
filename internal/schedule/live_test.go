package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mhoffm/nextup/internal/guide"
)

func liveEv(id string, startOffset, endOffset time.Duration) guide.Event {
	e := ev(id, startOffset, endOffset)
	e.Kind = guide.KindLive
	e.LiveURL = "http://live/" + id
	return e
}

func TestLiveUpcomingFiltersToLiveEvents(t *testing.T) {
	f := &fakeFetcher{events: []guide.Event{
		ev("vod1", -10*time.Minute, 10*time.Minute),
		liveEv("live1", 5*time.Minute, 20*time.Minute),
		ev("vod2", 20*time.Minute, 30*time.Minute),
		liveEv("live2", 30*time.Minute, 45*time.Minute),
	}}
	r := NewLiveResolver(f)

	got, err := r.Upcoming(context.Background(), testChannel(), now)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "live1", got[0].ID)
	require.Equal(t, "live2", got[1].ID)
	require.Equal(t, "http://live/live1", got[0].LiveURL)
}

func TestLiveUpcomingWindowBounds(t *testing.T) {
	f := &fakeFetcher{}
	r := NewLiveResolver(f)

	got, err := r.Upcoming(context.Background(), testChannel(), now)
	require.NoError(t, err)
	require.Empty(t, got)
	require.Equal(t, now.Add(-time.Hour), f.gotStart)
	require.Equal(t, now.Add(time.Hour), f.gotEnd)
}

func TestLiveUpcomingFetchError(t *testing.T) {
	f := &fakeFetcher{err: &guide.FetchError{Sentinel: guide.ErrTimeout, Operation: "schedule window"}}
	r := NewLiveResolver(f)

	_, err := r.Upcoming(context.Background(), testChannel(), now)
	require.ErrorIs(t, err, guide.ErrTimeout)
}
