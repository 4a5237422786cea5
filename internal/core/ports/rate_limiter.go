package ports

import (
	"context"
	"time"
)

// RateLimitStore provides fixed-window counter storage keyed by caller identity.
// Both backends (in-memory map, Redis) enforce the same quota-per-window policy
// configured at construction. Implementations MUST be safe for concurrent use.
type RateLimitStore interface {
	// Take consumes one request unit for key in the current window.
	// When the window has elapsed (or no entry exists) a fresh window is
	// started with count=1. A denied request does not mutate the counter.
	Take(ctx context.Context, key string) (allowed bool, remaining int, reset time.Time, err error)
	// Remaining reports the quota left for key without consuming a unit.
	// An expired or absent window reports the full quota.
	Remaining(ctx context.Context, key string) (remaining int, reset time.Time, err error)
}

// RateLimiterService defines a caller-scoped rate limiting capability.
type RateLimiterService interface {
	// Allow consumes one request unit for key and reports whether it is permitted.
	// remaining: additional requests allowed in the current window after this one (>=0)
	// limit: configured max requests per window
	// reset: time when the current window resets (Unix semantics for headers)
	Allow(ctx context.Context, key string) (allowed bool, remaining int, limit int, reset time.Time, err error)
	// Remaining reports the quota left for key without consuming a unit.
	Remaining(ctx context.Context, key string) (int, error)
}
