package guide

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds every remote call. The source is polled on a tight
// cadence, so a stalled request must fail into the retry path instead of
// blocking it.
const DefaultTimeout = 5 * time.Second

// Client talks to the remote schedule source.
type Client struct {
	base string
	http *http.Client
}

// New returns a client for the schedule source rooted at base.
func New(base string) *Client {
	return NewWithTimeout(base, DefaultTimeout)
}

// NewWithTimeout returns a client with an explicit per-request timeout.
func NewWithTimeout(base string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

// Base returns the configured base endpoint.
func (c *Client) Base() string { return c.base }

// ScheduleURL derives the schedule-window endpoint for a channel id.
func ScheduleURL(base, channelID string) string {
	return strings.TrimRight(base, "/") + "/channels/" + url.PathEscape(channelID) + "/schedule"
}

// Channels fetches the current channel list from GET {base}/channels.
func (c *Client) Channels(ctx context.Context) ([]ChannelInfo, error) {
	var out []ChannelInfo
	if err := c.getJSON(ctx, "channels", c.base+"/channels", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Window fetches the events overlapping [start, end] from the given
// schedule endpoint, ascending by start_time.
func (c *Client) Window(ctx context.Context, scheduleURL string, start, end time.Time) ([]Event, error) {
	q := url.Values{}
	q.Set("start", start.UTC().Format(time.RFC3339))
	q.Set("end", end.UTC().Format(time.RFC3339))
	var out []Event
	if err := c.getJSON(ctx, "schedule window", scheduleURL+"?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	for i := range out {
		if err := out[i].Validate(); err != nil {
			return nil, &FetchError{Sentinel: ErrUpstreamBadResponse, Operation: "schedule window", Err: err}
		}
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, op, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &FetchError{Sentinel: ErrUpstreamBadResponse, Operation: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return &FetchError{Sentinel: classifyTransport(err), Operation: op, Err: err}
	}
	defer res.Body.Close() //nolint:errcheck

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return &FetchError{
			Sentinel:  classifyStatus(res.StatusCode),
			Operation: op,
			Status:    res.StatusCode,
			Body:      strings.TrimSpace(string(body)),
		}
	}

	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return &FetchError{Sentinel: ErrUpstreamBadResponse, Operation: op, Err: err}
	}
	return nil
}

func classifyStatus(status int) error {
	switch {
	case status == http.StatusNotFound:
		return ErrNotFound
	case status >= 500:
		return ErrUpstreamError
	default:
		return ErrUpstreamUnavailable
	}
}

func classifyTransport(err error) error {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return ErrTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return ErrUpstreamUnavailable
}
