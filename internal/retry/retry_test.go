package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	v, err := Do(context.Background(), time.Millisecond, 3, func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	})
	require.NoError(t, err)
	require.Equal(t, 42, v)
	require.Equal(t, 1, calls)
}

func TestDoRetriesUpToBudget(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	_, err := Do(context.Background(), time.Millisecond, 3, func(ctx context.Context) (int, error) {
		calls++
		return 0, boom
	})
	require.Error(t, err)
	require.ErrorIs(t, err, boom)
	// Total attempts = maxRetries + 1.
	require.Equal(t, 4, calls)
}

func TestDoRecoversMidBudget(t *testing.T) {
	calls := 0
	v, err := Do(context.Background(), time.Millisecond, 3, func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})
	require.NoError(t, err)
	require.Equal(t, "ok", v)
	require.Equal(t, 3, calls)
}

func TestDoZeroRetriesMeansSingleAttempt(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), time.Millisecond, 0, func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("nope")
	})
	require.Error(t, err)
	require.Equal(t, 1, calls)
}

func TestDoDelayIsCancellable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	done := make(chan struct{})
	var err error
	go func() {
		defer close(done)
		_, err = Do(ctx, time.Hour, 5, func(ctx context.Context) (int, error) {
			calls++
			return 0, errors.New("fail")
		})
	}()

	// Let the first attempt fail and park in the inter-attempt delay.
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("retry did not abort on context cancellation")
	}
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
}
