package services

import (
	"context"
	"time"

	"github.com/oxidizr/askgate/internal/core/ports"
	"github.com/sirupsen/logrus"
)

// RateLimiterService implements ports.RateLimiterService over a
// ports.RateLimitStore. The store (memory or Redis) owns the counters; the
// service owns logging and the fail-open policy on store errors.
type RateLimiterService struct {
	store  ports.RateLimitStore
	limit  int
	window time.Duration
	logger *logrus.Logger
}

// RateLimiterConfig groups configuration parameters for the rate limiter.
// The same values must be used to construct the backing store.
type RateLimiterConfig struct {
	MaxRequests int
	Window      time.Duration
}

func NewRateLimiterService(store ports.RateLimitStore, cfg *RateLimiterConfig, logger *logrus.Logger) *RateLimiterService {
	// Apply defaults
	limit := 10
	window := time.Minute
	if cfg != nil {
		if cfg.MaxRequests > 0 {
			limit = cfg.MaxRequests
		}
		if cfg.Window > 0 {
			window = cfg.Window
		}
	}
	return &RateLimiterService{store: store, limit: limit, window: window, logger: logger}
}

// Allow consumes one request unit for key.
func (s *RateLimiterService) Allow(ctx context.Context, key string) (bool, int, int, time.Time, error) {
	allowed, remaining, reset, err := s.store.Take(ctx, key)
	if err != nil {
		if s.logger != nil {
			s.logger.WithField("key", key).WithError(err).Error("rate limiter: failed to take from window")
		}
		// fail open
		return true, s.limit, s.limit, time.Now().Add(s.window), err
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"key": key, "allowed": allowed, "remaining": remaining, "limit": s.limit}).Debug("rate limiter window state")
	}
	return allowed, remaining, s.limit, reset, nil
}

// Remaining reports the quota left for key without consuming a unit.
func (s *RateLimiterService) Remaining(ctx context.Context, key string) (int, error) {
	remaining, _, err := s.store.Remaining(ctx, key)
	if err != nil {
		if s.logger != nil {
			s.logger.WithField("key", key).WithError(err).Error("rate limiter: failed to read remaining")
		}
		return s.limit, err
	}
	return remaining, nil
}
