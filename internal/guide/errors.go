package guide

import (
	"errors"
	"fmt"
)

var (
	// Sentinel errors for errors.Is checks at the boundary.
	ErrNotFound            = errors.New("guide: resource not found")
	ErrUpstreamUnavailable = errors.New("guide: host unreachable or transport failure")
	ErrUpstreamError       = errors.New("guide: internal error (5xx)")
	ErrUpstreamBadResponse = errors.New("guide: invalid response format or malformed data")
	ErrTimeout             = errors.New("guide: request timed out")
)

// FetchError wraps the sentinel errors with request context. Every failed
// remote call surfaces as one of these.
type FetchError struct {
	Sentinel  error
	Operation string
	Status    int
	Body      string
	Err       error // nested lower-level error (e.g. net.Error)
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("guide: %s: %v", e.Operation, e.Sentinel)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Body != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Body)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *FetchError) Unwrap() error {
	return e.Sentinel
}
