// Package retry provides a fixed-delay bounded retry combinator.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Do invokes op, retrying up to maxRetries additional times after a
// failure, waiting delay between attempts. Total attempts = maxRetries + 1.
// The inter-attempt delay aborts when ctx is cancelled; op itself receives
// ctx and is expected to honor it.
func Do[T any](ctx context.Context, delay time.Duration, maxRetries int, op func(context.Context) (T, error)) (T, error) {
	var zero T
	if maxRetries < 0 {
		maxRetries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}

		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, lastErr
		}
	}

	return zero, fmt.Errorf("after %d attempts: %w", maxRetries+1, lastErr)
}
