package utils_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oxidizr/askgate/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestRetry_SucceedsOnNthAttempt(t *testing.T) {
	attempts := 0
	got, err := utils.Retry(context.Background(), 5, time.Millisecond, func(ctx context.Context) (string, error) {
		attempts++
		if attempts < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})
	require.NoError(t, err)
	require.Equal(t, "ok", got)
	require.Equal(t, 3, attempts)
}

func TestRetry_ExhaustionReturnsLastError(t *testing.T) {
	lastErr := errors.New("attempt 3 failed")
	attempts := 0
	_, err := utils.Retry(context.Background(), 3, time.Millisecond, func(ctx context.Context) (int, error) {
		attempts++
		if attempts == 3 {
			return 0, lastErr
		}
		return 0, errors.New("earlier failure")
	})
	require.ErrorIs(t, err, lastErr, "the final failure propagates unchanged")
	require.Equal(t, 3, attempts)
}

func TestRetry_BackoffDoubles(t *testing.T) {
	base := 10 * time.Millisecond
	start := time.Now()
	_, err := utils.Retry(context.Background(), 4, base, func(ctx context.Context) (int, error) {
		return 0, errors.New("always fails")
	})
	elapsed := time.Since(start)
	require.Error(t, err)
	// Waits are base, 2*base, 4*base between the four attempts.
	require.GreaterOrEqual(t, elapsed, 7*base, "backoff sequence must sum to at least base+2base+4base")
}

func TestRetry_NoDelayAfterFinalAttempt(t *testing.T) {
	base := 100 * time.Millisecond
	start := time.Now()
	_, err := utils.Retry(context.Background(), 1, base, func(ctx context.Context) (int, error) {
		return 0, errors.New("fails")
	})
	require.Error(t, err)
	require.Less(t, time.Since(start), base, "a single attempt never sleeps")
}

func TestRetry_ContextCancellationAbortsWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := utils.Retry(ctx, 10, time.Second, func(ctx context.Context) (int, error) {
		attempts++
		return 0, errors.New("fails")
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, attempts, "cancellation during backoff stops further attempts")
}
