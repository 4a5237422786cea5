package question

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRateLimited indicates the caller exhausted its request quota.
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrUpstreamUnavailable covers missing credentials and upstream outages.
	// The specific cause is deliberately not exposed to callers.
	ErrUpstreamUnavailable = errors.New("service temporarily unavailable")
	// ErrUpstreamTimeout indicates the upstream call exceeded its deadline.
	ErrUpstreamTimeout = errors.New("upstream request timed out")
)

// ValidationError is a user-correctable input rejection.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ModerationError indicates the input was flagged by the upstream
// moderation check before any completion was attempted.
type ModerationError struct {
	Categories []string
}

func (e *ModerationError) Error() string {
	if len(e.Categories) == 0 {
		return "question was flagged by content moderation"
	}
	return fmt.Sprintf("question was flagged by content moderation: %s", strings.Join(e.Categories, ", "))
}
