package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisRateLimitStore implements ports.RateLimitStore on a shared Redis
// counter, for deployments where process-local limiting is not enough.
// INCR is unconditional, so the stored count may exceed the limit within a
// window; allow/deny and remaining are still policy-identical to the memory
// store.
type RedisRateLimitStore struct {
	r         redis.Cmdable
	limit     int
	window    time.Duration
	keyPrefix string
}

func NewRedisRateLimitStore(r redis.Cmdable, limit int, window time.Duration, keyPrefix string) *RedisRateLimitStore {
	if keyPrefix == "" {
		keyPrefix = "ratelimit"
	}
	return &RedisRateLimitStore{r: r, limit: limit, window: window, keyPrefix: keyPrefix}
}

func (s *RedisRateLimitStore) windowKey(key string, windowStart time.Time) string {
	return fmt.Sprintf("%s:%s:%d", s.keyPrefix, key, windowStart.Unix())
}

// Take implements ports.RateLimitStore with an atomic INCR+EXPIRE pipeline.
func (s *RedisRateLimitStore) Take(ctx context.Context, key string) (bool, int, time.Time, error) {
	now := time.Now()
	windowStart := now.Truncate(s.window)
	reset := windowStart.Add(s.window)

	pipe := s.r.TxPipeline()
	incr := pipe.Incr(ctx, s.windowKey(key, windowStart))
	// Retain the key past the window so Remaining stays answerable at the boundary.
	pipe.Expire(ctx, s.windowKey(key, windowStart), s.window*2)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, reset, err
	}

	count := int(incr.Val())
	remaining := s.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= s.limit, remaining, reset, nil
}

// Remaining implements ports.RateLimitStore without consuming a unit.
func (s *RedisRateLimitStore) Remaining(ctx context.Context, key string) (int, time.Time, error) {
	now := time.Now()
	windowStart := now.Truncate(s.window)
	reset := windowStart.Add(s.window)

	count, err := s.r.Get(ctx, s.windowKey(key, windowStart)).Int()
	if err == redis.Nil {
		return s.limit, reset, nil
	}
	if err != nil {
		return 0, reset, err
	}

	remaining := s.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, reset, nil
}
