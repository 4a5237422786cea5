package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/oxidizr/askgate/internal/core/ports"
	"github.com/oxidizr/askgate/internal/infrastructure/httpserver/helpers"
)

type RateLimitMiddleware struct {
	rateLimiter ports.RateLimiterService
	logger      *logrus.Logger
	rejected    prometheus.Counter
}

func NewRateLimitMiddleware(rateLimiter ports.RateLimiterService, logger *logrus.Logger, rejected prometheus.Counter) *RateLimitMiddleware {
	return &RateLimitMiddleware{rateLimiter: rateLimiter, logger: logger, rejected: rejected}
}

func (r *RateLimitMiddleware) Handler() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := helpers.ClientKey(c)

			allowed, remaining, limit, reset, rlErr := r.rateLimiter.Allow(c.Request().Context(), key)
			// Set standard rate limit headers when available
			c.Response().Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
			c.Response().Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
			c.Response().Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", reset.Unix()))

			if rlErr != nil {
				if r.logger != nil {
					r.logger.WithError(rlErr).WithField("key", key).Warn("rate limiter error; allowing request (fail-open)")
				}
				helpers.SetRateLimitRemaining(c, remaining)
				return next(c)
			}

			if !allowed {
				if r.rejected != nil {
					r.rejected.Inc()
				}
				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"error": "rate limit exceeded. please try again later",
				})
			}

			helpers.SetRateLimitRemaining(c, remaining)
			return next(c)
		}
	}
}
