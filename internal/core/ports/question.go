package ports

import (
	"context"

	"github.com/oxidizr/askgate/internal/core/domain/question"
)

// QuestionService runs the ask pipeline: validation, moderation, completion.
// Rate limiting is enforced by the HTTP layer before the pipeline runs.
type QuestionService interface {
	Ask(ctx context.Context, text string) (*question.Answer, error)
}
