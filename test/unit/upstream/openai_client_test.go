package upstream_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oxidizr/askgate/internal/infrastructure/upstream"
)

func newClient(baseURL string) *upstream.Client {
	return upstream.NewClient(upstream.Config{
		APIKey:         "test-key",
		BaseURL:        baseURL,
		Model:          "test-model",
		Timeout:        time.Second,
		RetryAttempts:  3,
		RetryBaseDelay: time.Millisecond,
	}, nil)
}

func TestClient_Configured(t *testing.T) {
	require.True(t, newClient("http://localhost").Configured())
	require.False(t, upstream.NewClient(upstream.Config{}, nil).Configured())
}

func TestComplete_SendsAuthAndModel(t *testing.T) {
	var gotAuth, gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotModel, _ = req["model"].(string)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"an answer"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	answer, err := newClient(srv.URL).Complete(context.Background(), "be brief", "what is Go?")
	require.NoError(t, err)
	require.Equal(t, "an answer", answer)
	require.Equal(t, "Bearer test-key", gotAuth)
	require.Equal(t, "test-model", gotModel)
}

func TestComplete_EmptyChoicesIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).Complete(context.Background(), "sys", "q")
	require.Error(t, err)
	require.Contains(t, err.Error(), "did not report a successful result")
}

func TestComplete_RetriesTransientFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"recovered"}}]}`))
	}))
	defer srv.Close()

	answer, err := newClient(srv.URL).Complete(context.Background(), "sys", "q")
	require.NoError(t, err)
	require.Equal(t, "recovered", answer)
	require.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestComplete_ExhaustedRetriesPropagateError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).Complete(context.Background(), "sys", "q")
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 502")
	require.Equal(t, int32(3), atomic.LoadInt32(&calls), "all attempts are used before failing")
}

func TestModerate_CollectsFlaggedCategories(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/moderations", r.URL.Path)
		_, _ = w.Write([]byte(`{"results":[{"flagged":true,"categories":{"violence":true,"hate":true,"self-harm":false}}]}`))
	}))
	defer srv.Close()

	res, err := newClient(srv.URL).Moderate(context.Background(), "bad text")
	require.NoError(t, err)
	require.True(t, res.Flagged)
	require.Equal(t, []string{"hate", "violence"}, res.Categories, "categories are sorted")
}

func TestModerate_CleanText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[{"flagged":false,"categories":{}}]}`))
	}))
	defer srv.Close()

	res, err := newClient(srv.URL).Moderate(context.Background(), "hello")
	require.NoError(t, err)
	require.False(t, res.Flagged)
	require.Empty(t, res.Categories)
}

func TestModerate_NoResultsIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).Moderate(context.Background(), "hello")
	require.Error(t, err)
}
