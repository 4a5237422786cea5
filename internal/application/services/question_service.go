package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/oxidizr/askgate/internal/core/domain/question"
	"github.com/oxidizr/askgate/internal/core/ports"
	"github.com/oxidizr/askgate/internal/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// answerSystemPrompt constrains the upstream completion to short answers.
const answerSystemPrompt = "You are a concise assistant. Answer the user's question helpfully in no more than 120 words."

// QuestionConfig groups the tunables of the ask pipeline.
type QuestionConfig struct {
	MaxQuestionLength int
	CacheEnabled      bool
	CacheTTL          time.Duration
}

// QuestionService runs the linear ask pipeline with early exit:
// validate -> credential check -> moderation -> completion.
type QuestionService struct {
	llm       ports.LLMClient
	cache     ports.Cache
	validator *ValidatorService
	cfg       QuestionConfig
	logger    *logrus.Logger
	sf        singleflight.Group
}

func NewQuestionService(llm ports.LLMClient, cache ports.Cache, validator *ValidatorService, cfg QuestionConfig, logger *logrus.Logger) *QuestionService {
	if cfg.MaxQuestionLength <= 0 {
		cfg.MaxQuestionLength = 500
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	return &QuestionService{llm: llm, cache: cache, validator: validator, cfg: cfg, logger: logger}
}

// Ask implements ports.QuestionService.
func (s *QuestionService) Ask(ctx context.Context, text string) (*question.Answer, error) {
	if err := s.validator.ValidateText(text, s.cfg.MaxQuestionLength); err != nil {
		return nil, err
	}

	if !s.llm.Configured() {
		// The missing-credential detail is deliberately not surfaced to callers.
		if s.logger != nil {
			s.logger.Error("upstream API key is not configured")
		}
		return nil, question.ErrUpstreamUnavailable
	}

	cacheKey := utils.HashKey("ask", text)

	if s.cacheEnabled() {
		if cached, ok, err := s.cache.Get(ctx, cacheKey); err == nil && ok {
			if s.logger != nil {
				s.logger.WithField("key", cacheKey).Debug("answer served from cache")
			}
			return s.newAnswer(text, string(cached)), nil
		}
	}

	// Identical in-flight questions collapse to one upstream round trip.
	answer, err, _ := s.sf.Do(cacheKey, func() (any, error) {
		return s.askUpstream(ctx, cacheKey, text)
	})
	if err != nil {
		return nil, err
	}
	return s.newAnswer(text, answer.(string)), nil
}

func (s *QuestionService) askUpstream(ctx context.Context, cacheKey, text string) (string, error) {
	mod, err := s.llm.Moderate(ctx, text)
	if err != nil {
		return "", s.classifyUpstreamError(err, "moderation")
	}
	if mod.Flagged {
		if s.logger != nil {
			s.logger.WithField("categories", mod.Categories).Info("question flagged by moderation")
		}
		return "", &question.ModerationError{Categories: mod.Categories}
	}

	answer, err := s.llm.Complete(ctx, answerSystemPrompt, text)
	if err != nil {
		return "", s.classifyUpstreamError(err, "completion")
	}

	if s.cacheEnabled() {
		if err := s.cache.Set(ctx, cacheKey, []byte(answer), s.cfg.CacheTTL); err != nil && s.logger != nil {
			s.logger.WithError(err).Warn("failed to cache answer")
		}
	}
	return answer, nil
}

func (s *QuestionService) newAnswer(text, answer string) *question.Answer {
	return &question.Answer{
		Answer:    answer,
		Question:  text,
		RequestID: uuid.NewString(),
	}
}

func (s *QuestionService) cacheEnabled() bool {
	return s.cfg.CacheEnabled && s.cache != nil
}

func (s *QuestionService) classifyUpstreamError(err error, stage string) error {
	if s.logger != nil {
		s.logger.WithError(err).WithField("stage", stage).Error("upstream call failed")
	}
	if utils.IsTimeout(err) {
		return question.ErrUpstreamTimeout
	}
	return question.ErrUpstreamUnavailable
}
