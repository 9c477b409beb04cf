package guide

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testNow = time.UnixMilli(1_700_000_000_000)

func testEvent(id string, startOffset, endOffset time.Duration) Event {
	return Event{
		ID:        id,
		ChannelID: "ch1",
		Title:     "event " + id,
		StartMS:   testNow.Add(startOffset).UnixMilli(),
		EndMS:     testNow.Add(endOffset).UnixMilli(),
		URL:       "http://assets/" + id + ".mp4",
		Kind:      KindVOD,
	}
}

func TestChannels(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()
	mock.SetChannels(
		ChannelInfo{ID: "ch1", Title: "One"},
		ChannelInfo{ID: "ch2", Title: "Two", AudioTracks: []AudioTrack{{Language: "en", Name: "English", Default: true}}},
	)

	c := New(mock.URL)
	chs, err := c.Channels(context.Background())
	require.NoError(t, err)
	require.Len(t, chs, 2)
	require.Equal(t, "ch1", chs[0].ID)
	require.Len(t, chs[1].AudioTracks, 1)
	require.True(t, chs[1].AudioTracks[0].Default)
}

func TestWindow(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()
	mock.SetEvents("ch1",
		testEvent("a", -time.Minute, time.Minute),
		testEvent("b", time.Minute, 2*time.Minute),
	)

	c := New(mock.URL)
	events, err := c.Window(context.Background(), ScheduleURL(mock.URL, "ch1"), testNow.Add(-5*time.Minute), testNow.Add(5*time.Minute))
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "a", events[0].ID)
	require.Equal(t, "b", events[1].ID)
}

func TestWindowRejectsInvalidEvents(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()
	// end before start violates the schedule invariant.
	mock.SetEvents("ch1", Event{ID: "bad", StartMS: 2000, EndMS: 1000})

	c := New(mock.URL)
	_, err := c.Window(context.Background(), ScheduleURL(mock.URL, "ch1"), testNow, testNow.Add(time.Minute))
	require.ErrorIs(t, err, ErrUpstreamBadResponse)
}

func TestFetchErrorOn5xx(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()
	mock.SetFailures("/channels", 1)

	c := New(mock.URL)
	_, err := c.Channels(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, ErrUpstreamError)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	require.Equal(t, http.StatusInternalServerError, fe.Status)

	// The injected failure is consumed; the next call succeeds.
	_, err = c.Channels(context.Background())
	require.NoError(t, err)
}

func TestFetchErrorOn404(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Channels(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFetchErrorOnUnreachableHost(t *testing.T) {
	// Closed server: transport failure, not an HTTP status.
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := New(srv.URL)
	_, err := c.Channels(context.Background())
	require.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestFetchTimeout(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()
	mock.SetDelay("/channels", 200*time.Millisecond)

	c := NewWithTimeout(mock.URL, 20*time.Millisecond)
	_, err := c.Channels(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, ErrTimeout)
}

func TestScheduleURL(t *testing.T) {
	require.Equal(t, "http://guide/channels/ch1/schedule", ScheduleURL("http://guide/", "ch1"))
	require.Equal(t, "http://guide/channels/a%2Fb/schedule", ScheduleURL("http://guide", "a/b"))
}

func TestWindowQueryParameters(t *testing.T) {
	var gotStart, gotEnd string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotStart = r.URL.Query().Get("start")
		gotEnd = r.URL.Query().Get("end")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("[]")) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL)
	start := testNow.Add(-300 * time.Second)
	end := testNow.Add(300 * time.Second)
	_, err := c.Window(context.Background(), srv.URL+"/channels/ch1/schedule", start, end)
	require.NoError(t, err)
	require.Equal(t, start.UTC().Format(time.RFC3339), gotStart)
	require.Equal(t, end.UTC().Format(time.RFC3339), gotEnd)
}
