// Package upstream implements the client for the OpenAI-compatible
// language-model API: a moderation check and a chat completion call, both
// wrapped in bounded exponential-backoff retry.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/oxidizr/askgate/internal/core/ports"
	"github.com/oxidizr/askgate/internal/utils"
	"github.com/sirupsen/logrus"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
	defaultTimeout = 30 * time.Second
)

// Config holds the upstream API settings.
type Config struct {
	APIKey          string
	BaseURL         string
	Model           string
	ModerationModel string
	MaxTokens       int
	Timeout         time.Duration
	RetryAttempts   int
	RetryBaseDelay  time.Duration
}

// Client talks to the upstream API. It implements ports.LLMClient.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *logrus.Logger
}

// NewClient creates an upstream client, applying defaults for anything unset.
func NewClient(cfg Config, logger *logrus.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 256
	}
	if cfg.RetryAttempts < 1 {
		cfg.RetryAttempts = 1
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = 500 * time.Millisecond
	}
	return &Client{cfg: cfg, http: &http.Client{}, logger: logger}
}

// Configured implements ports.LLMClient.
func (c *Client) Configured() bool { return c.cfg.APIKey != "" }

type moderationRequest struct {
	Input string `json:"input"`
	Model string `json:"model,omitempty"`
}

type moderationResponse struct {
	Results []struct {
		Flagged    bool            `json:"flagged"`
		Categories map[string]bool `json:"categories"`
	} `json:"results"`
}

// Moderate implements ports.LLMClient.
func (c *Client) Moderate(ctx context.Context, text string) (*ports.ModerationResult, error) {
	return utils.Retry(ctx, c.cfg.RetryAttempts, c.cfg.RetryBaseDelay, func(ctx context.Context) (*ports.ModerationResult, error) {
		var resp moderationResponse
		err := c.postJSON(ctx, "/moderations", moderationRequest{Input: text, Model: c.cfg.ModerationModel}, &resp)
		if err != nil {
			return nil, err
		}
		if len(resp.Results) == 0 {
			return nil, fmt.Errorf("moderation response contained no results")
		}

		r := resp.Results[0]
		result := &ports.ModerationResult{Flagged: r.Flagged}
		for name, hit := range r.Categories {
			if hit {
				result.Categories = append(result.Categories, name)
			}
		}
		sort.Strings(result.Categories)
		return result, nil
	})
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

// Complete implements ports.LLMClient.
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	return utils.Retry(ctx, c.cfg.RetryAttempts, c.cfg.RetryBaseDelay, func(ctx context.Context) (string, error) {
		req := chatRequest{
			Model: c.cfg.Model,
			Messages: []chatMessage{
				{Role: "system", Content: system},
				{Role: "user", Content: prompt},
			},
			MaxTokens: c.cfg.MaxTokens,
		}
		var resp chatResponse
		if err := c.postJSON(ctx, "/chat/completions", req, &resp); err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
			return "", fmt.Errorf("completion did not report a successful result")
		}
		return resp.Choices[0].Message.Content, nil
	})
}

// postJSON performs one attempt with a per-call timeout.
func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		if c.logger != nil {
			c.logger.WithError(err).WithField("path", path).Warn("upstream request failed")
		}
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if c.logger != nil {
			c.logger.WithFields(logrus.Fields{"path": path, "status": resp.StatusCode}).Warn("upstream returned non-2xx")
		}
		return fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}
	return json.Unmarshal(raw, out)
}
