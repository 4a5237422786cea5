package mocks

import (
	"context"
	"fmt"
	"time"

	"github.com/oxidizr/askgate/internal/core/domain/proxy"
	"github.com/oxidizr/askgate/internal/core/domain/question"
	"github.com/oxidizr/askgate/internal/core/ports"
)

// LLMClientMock is a lightweight mock for ports.LLMClient
type LLMClientMock struct {
	ConfiguredFn func() bool
	ModerateFn   func(ctx context.Context, text string) (*ports.ModerationResult, error)
	CompleteFn   func(ctx context.Context, system, prompt string) (string, error)

	ModerateCalls int
	CompleteCalls int
}

func (m *LLMClientMock) Configured() bool {
	if m.ConfiguredFn != nil {
		return m.ConfiguredFn()
	}
	return true
}

func (m *LLMClientMock) Moderate(ctx context.Context, text string) (*ports.ModerationResult, error) {
	m.ModerateCalls++
	if m.ModerateFn != nil {
		return m.ModerateFn(ctx, text)
	}
	return &ports.ModerationResult{}, nil
}

func (m *LLMClientMock) Complete(ctx context.Context, system, prompt string) (string, error) {
	m.CompleteCalls++
	if m.CompleteFn != nil {
		return m.CompleteFn(ctx, system, prompt)
	}
	return "mock answer", nil
}

// CacheMock is a lightweight mock for ports.Cache
type CacheMock struct {
	GetFn    func(ctx context.Context, key string) ([]byte, bool, error)
	SetFn    func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteFn func(ctx context.Context, key string) error
	ClearFn  func(ctx context.Context) error
}

func (m *CacheMock) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, key)
	}
	return nil, false, nil
}

func (m *CacheMock) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.SetFn != nil {
		return m.SetFn(ctx, key, value, ttl)
	}
	return nil
}

func (m *CacheMock) Delete(ctx context.Context, key string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, key)
	}
	return nil
}

func (m *CacheMock) Clear(ctx context.Context) error {
	if m.ClearFn != nil {
		return m.ClearFn(ctx)
	}
	return nil
}

// RateLimitStoreMock is a lightweight mock for ports.RateLimitStore
type RateLimitStoreMock struct {
	TakeFn      func(ctx context.Context, key string) (bool, int, time.Time, error)
	RemainingFn func(ctx context.Context, key string) (int, time.Time, error)
}

func (m *RateLimitStoreMock) Take(ctx context.Context, key string) (bool, int, time.Time, error) {
	if m.TakeFn != nil {
		return m.TakeFn(ctx, key)
	}
	return true, 0, time.Now(), nil
}

func (m *RateLimitStoreMock) Remaining(ctx context.Context, key string) (int, time.Time, error) {
	if m.RemainingFn != nil {
		return m.RemainingFn(ctx, key)
	}
	return 0, time.Now(), nil
}

// RateLimiterServiceMock is a lightweight mock for ports.RateLimiterService
type RateLimiterServiceMock struct {
	AllowFn     func(ctx context.Context, key string) (bool, int, int, time.Time, error)
	RemainingFn func(ctx context.Context, key string) (int, error)
}

func (m *RateLimiterServiceMock) Allow(ctx context.Context, key string) (bool, int, int, time.Time, error) {
	if m.AllowFn != nil {
		return m.AllowFn(ctx, key)
	}
	return true, 9, 10, time.Now().Add(time.Minute), nil
}

func (m *RateLimiterServiceMock) Remaining(ctx context.Context, key string) (int, error) {
	if m.RemainingFn != nil {
		return m.RemainingFn(ctx, key)
	}
	return 10, nil
}

// QuestionServiceMock is a lightweight mock for ports.QuestionService
type QuestionServiceMock struct {
	AskFn    func(ctx context.Context, text string) (*question.Answer, error)
	AskCalls int
}

func (m *QuestionServiceMock) Ask(ctx context.Context, text string) (*question.Answer, error) {
	m.AskCalls++
	if m.AskFn != nil {
		return m.AskFn(ctx, text)
	}
	return nil, fmt.Errorf("not implemented")
}

// ProxyServiceMock is a lightweight mock for ports.ProxyService
type ProxyServiceMock struct {
	ForwardFn func(ctx context.Context, req *ports.ProxyRequest) (*proxy.Result, error)
}

func (m *ProxyServiceMock) Forward(ctx context.Context, req *ports.ProxyRequest) (*proxy.Result, error) {
	if m.ForwardFn != nil {
		return m.ForwardFn(ctx, req)
	}
	return nil, proxy.ErrUnknownTarget
}
