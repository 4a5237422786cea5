package helpers

import "github.com/labstack/echo/v4"

type ctxKey string

const (
	keyRateLimitRemaining ctxKey = "rate_limit_remaining"
	keyClientKey          ctxKey = "client_key"
)

// unknownClient is the sentinel identity used when no caller address can be
// resolved from the request.
const unknownClient = "unknown"

// ClientKey resolves the caller identity for rate limiting: the network
// address as reported by upstream headers (trusted as given, spoofable by
// design trade-off) or the sentinel "unknown".
func ClientKey(c echo.Context) string {
	if v := c.Get(string(keyClientKey)); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	ip := c.RealIP()
	if ip == "" {
		return unknownClient
	}
	return ip
}

// SetClientKey overrides the resolved caller identity (used by tests).
func SetClientKey(c echo.Context, key string) { c.Set(string(keyClientKey), key) }

// SetRateLimitRemaining stashes the remaining quota after a successful
// limiter check so the ask handler can echo it in the response envelope.
func SetRateLimitRemaining(c echo.Context, remaining int) {
	c.Set(string(keyRateLimitRemaining), remaining)
}

// GetRateLimitRemaining returns the remaining quota recorded by the
// rate-limit middleware, if any.
func GetRateLimitRemaining(c echo.Context) (int, bool) {
	v := c.Get(string(keyRateLimitRemaining))
	n, ok := v.(int)
	return n, ok
}
