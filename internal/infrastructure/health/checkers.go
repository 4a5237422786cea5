package health

import (
	"context"
	"errors"

	"github.com/go-redis/redis/v8"
	"github.com/oxidizr/askgate/internal/core/ports"
)

// redisHealthChecker wraps the redis client for health checks.
type redisHealthChecker struct{ client *redis.Client }

func (r *redisHealthChecker) Name() string                    { return "redis" }
func (r *redisHealthChecker) Check(ctx context.Context) error { return r.client.Ping(ctx).Err() }

// upstreamHealthChecker reports whether the upstream credential is configured.
// It does not probe the upstream itself: that would spend paid API calls on
// every health poll.
type upstreamHealthChecker struct{ llm ports.LLMClient }

func (u *upstreamHealthChecker) Name() string { return "upstream" }
func (u *upstreamHealthChecker) Check(context.Context) error {
	if !u.llm.Configured() {
		return errors.New("upstream credential not configured")
	}
	return nil
}

// NewRedisHealthChecker creates a health checker for Redis.
func NewRedisHealthChecker(client *redis.Client) ports.HealthChecker {
	return &redisHealthChecker{client: client}
}

// NewUpstreamHealthChecker creates a health checker for the upstream API configuration.
func NewUpstreamHealthChecker(llm ports.LLMClient) ports.HealthChecker {
	return &upstreamHealthChecker{llm: llm}
}
