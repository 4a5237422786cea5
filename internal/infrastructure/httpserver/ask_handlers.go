package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/oxidizr/askgate/internal/core/domain/question"
	"github.com/oxidizr/askgate/internal/infrastructure/httpserver/helpers"
)

// askQuestion handles POST /api/v1/ask. Rate limiting already happened in the
// route middleware, which stashed the caller's remaining quota in the context.
func (s *Server) askQuestion(c echo.Context) error {
	var req question.AskRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	answer, err := s.questionSvc.Ask(c.Request().Context(), req.Question)
	if err != nil {
		return s.askError(c, err)
	}

	if remaining, ok := helpers.GetRateLimitRemaining(c); ok {
		answer.Remaining = remaining
	}

	return c.JSON(http.StatusOK, answer)
}

// askError maps pipeline failures onto the error envelope taxonomy:
// validation 400, moderation 400 (with categories), upstream 503/504,
// anything else 500 with a best-effort message.
func (s *Server) askError(c echo.Context, err error) error {
	var vErr *question.ValidationError
	if errors.As(err, &vErr) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": vErr.Message})
	}

	var mErr *question.ModerationError
	if errors.As(err, &mErr) {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"error":      mErr.Error(),
			"categories": mErr.Categories,
		})
	}

	switch {
	case errors.Is(err, question.ErrUpstreamUnavailable):
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": question.ErrUpstreamUnavailable.Error()})
	case errors.Is(err, question.ErrUpstreamTimeout):
		return c.JSON(http.StatusGatewayTimeout, map[string]string{"error": question.ErrUpstreamTimeout.Error()})
	}

	if s.logger != nil {
		s.logger.WithError(err).Error("unexpected error in ask pipeline")
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
}
