package utils

import (
	"context"
	"time"
)

// Retry runs op up to maxAttempts times, sleeping baseDelay*2^(attempt-1)
// between attempts (exponential backoff, no jitter). The final failure is
// returned unchanged once attempts are exhausted. Context cancellation aborts
// the wait and returns ctx.Err(); a per-attempt timeout inside op is retried
// like any other failure as long as ctx itself is still live.
func Retry[T any](ctx context.Context, maxAttempts int, baseDelay time.Duration, op func(context.Context) (T, error)) (T, error) {
	var zero T
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if attempt == maxAttempts {
			break
		}

		delay := baseDelay << (attempt - 1)
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}

	return zero, lastErr
}
