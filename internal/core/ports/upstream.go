package ports

import "context"

// ModerationResult carries the outcome of an upstream content-policy check.
type ModerationResult struct {
	Flagged    bool
	Categories []string
}

// LLMClient abstracts the upstream language-model API (moderation + completion).
type LLMClient interface {
	// Configured reports whether an upstream credential is present.
	Configured() bool
	// Moderate classifies text against the upstream content policy.
	Moderate(ctx context.Context, text string) (*ModerationResult, error)
	// Complete generates a response to prompt under the given system instruction.
	// An upstream reply that does not report a successful completion is an error.
	Complete(ctx context.Context, system, prompt string) (string, error)
}
