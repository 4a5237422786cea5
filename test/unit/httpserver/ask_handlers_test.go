package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	impl "github.com/oxidizr/askgate/internal/application/services"
	"github.com/oxidizr/askgate/internal/core/domain/question"
	"github.com/oxidizr/askgate/internal/core/ports"
	"github.com/oxidizr/askgate/internal/infrastructure/httpserver"
	"github.com/oxidizr/askgate/test/mocks"
)

func newTestServer(t *testing.T, deps httpserver.ServerDeps) *httptest.Server {
	t.Helper()
	if deps.RateLimiterService == nil {
		deps.RateLimiterService = &mocks.RateLimiterServiceMock{}
	}
	if deps.ProxyService == nil {
		deps.ProxyService = &mocks.ProxyServiceMock{}
	}
	if deps.QuestionService == nil {
		deps.QuestionService = &mocks.QuestionServiceMock{}
	}
	srv := httpserver.NewServer(&httpserver.ServerConfig{
		Host:         "127.0.0.1",
		Port:         "0",
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		IdleTimeout:  time.Second,
	}, logrus.New(), deps)

	ts := httptest.NewServer(srv.Echo())
	t.Cleanup(ts.Close)
	return ts
}

func postAsk(t *testing.T, ts *httptest.Server, body any) (*http.Response, map[string]any) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/api/v1/ask", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	return resp, decoded
}

func TestAsk_EmptyQuestionMakesNoUpstreamCall(t *testing.T) {
	llm := &mocks.LLMClientMock{}
	questionSvc := impl.NewQuestionService(llm, nil, impl.NewValidatorService(), impl.QuestionConfig{MaxQuestionLength: 500}, logrus.New())
	ts := newTestServer(t, httpserver.ServerDeps{QuestionService: questionSvc})

	resp, body := postAsk(t, ts, map[string]string{"question": "   "})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "please enter your question", body["error"])
	require.Zero(t, llm.ModerateCalls)
	require.Zero(t, llm.CompleteCalls)
}

func TestAsk_RateLimitedRequestNeverReachesPipeline(t *testing.T) {
	questionSvc := &mocks.QuestionServiceMock{}
	limiter := &mocks.RateLimiterServiceMock{
		AllowFn: func(ctx context.Context, key string) (bool, int, int, time.Time, error) {
			return false, 0, 10, time.Now().Add(time.Minute), nil
		},
	}
	ts := newTestServer(t, httpserver.ServerDeps{QuestionService: questionSvc, RateLimiterService: limiter})

	resp, body := postAsk(t, ts, map[string]string{"question": "hello"})
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.Contains(t, body["error"], "rate limit exceeded")
	require.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))
	require.Equal(t, "10", resp.Header.Get("X-RateLimit-Limit"))
	require.Zero(t, questionSvc.AskCalls)
}

func TestAsk_SuccessEchoesRemainingQuota(t *testing.T) {
	questionSvc := &mocks.QuestionServiceMock{
		AskFn: func(ctx context.Context, text string) (*question.Answer, error) {
			return &question.Answer{Answer: "42", Question: text, RequestID: "req-1"}, nil
		},
	}
	limiter := &mocks.RateLimiterServiceMock{
		AllowFn: func(ctx context.Context, key string) (bool, int, int, time.Time, error) {
			return true, 4, 10, time.Now().Add(time.Minute), nil
		},
	}
	ts := newTestServer(t, httpserver.ServerDeps{QuestionService: questionSvc, RateLimiterService: limiter})

	resp, body := postAsk(t, ts, map[string]string{"question": "what is the answer?"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "42", body["answer"])
	require.Equal(t, "what is the answer?", body["question"])
	require.Equal(t, float64(4), body["remaining"])
	require.Equal(t, "req-1", body["request_id"])
}

func TestAsk_ModerationErrorCarriesCategories(t *testing.T) {
	questionSvc := &mocks.QuestionServiceMock{
		AskFn: func(ctx context.Context, text string) (*question.Answer, error) {
			return nil, &question.ModerationError{Categories: []string{"hate"}}
		},
	}
	ts := newTestServer(t, httpserver.ServerDeps{QuestionService: questionSvc})

	resp, body := postAsk(t, ts, map[string]string{"question": "flagged"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Contains(t, body["error"], "hate")
	require.Equal(t, []any{"hate"}, body["categories"])
}

func TestAsk_UpstreamErrorsMapToGatewayStatuses(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"unavailable", question.ErrUpstreamUnavailable, http.StatusServiceUnavailable},
		{"timeout", question.ErrUpstreamTimeout, http.StatusGatewayTimeout},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			questionSvc := &mocks.QuestionServiceMock{
				AskFn: func(ctx context.Context, text string) (*question.Answer, error) { return nil, tc.err },
			}
			ts := newTestServer(t, httpserver.ServerDeps{QuestionService: questionSvc})

			resp, body := postAsk(t, ts, map[string]string{"question": "hello"})
			require.Equal(t, tc.wantStatus, resp.StatusCode)
			require.NotEmpty(t, body["error"])
		})
	}
}

func TestHealth_ReportsCheckerStatus(t *testing.T) {
	ts := newTestServer(t, httpserver.ServerDeps{})

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "healthy", body["status"])
	require.Equal(t, "askgate", body["service"])
}

func TestMetrics_ObservesAskRoute(t *testing.T) {
	questionSvc := &mocks.QuestionServiceMock{
		AskFn: func(ctx context.Context, text string) (*question.Answer, error) {
			return &question.Answer{Answer: "ok", Question: text, RequestID: "req-1"}, nil
		},
	}
	ts := newTestServer(t, httpserver.ServerDeps{QuestionService: questionSvc})

	_, _ = postAsk(t, ts, map[string]string{"question": "hello"})

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := string(raw)
	require.Contains(t, body, `http_requests_total{endpoint="/api/v1/ask"`, "requests are labeled by route pattern")
	require.NotContains(t, body, `endpoint="/metrics"`, "scrapes themselves are not observed")
}

var _ ports.QuestionService = (*mocks.QuestionServiceMock)(nil)
