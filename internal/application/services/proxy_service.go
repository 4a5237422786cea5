package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/oxidizr/askgate/internal/core/domain/proxy"
	"github.com/oxidizr/askgate/internal/core/ports"
	"github.com/oxidizr/askgate/internal/utils"
	"github.com/sirupsen/logrus"
)

// forwardedHeaders is the allowlist of request headers passed to targets.
var forwardedHeaders = []string{
	"Content-Type",
	"Accept",
	"Accept-Language",
	"Authorization",
	"User-Agent",
}

const maxProxyBody = 10 << 20

// ProxyConfig groups the proxy tunables. Targets maps a name to a base URL.
type ProxyConfig struct {
	Targets      map[string]string
	Timeout      time.Duration
	CacheEnabled bool
	CacheTTL     time.Duration
}

// ProxyService forwards requests to configured named targets. Idempotent
// reads go through the TTL cache; everything else is always forwarded.
// No retry happens at this layer.
type ProxyService struct {
	cfg    ProxyConfig
	cache  ports.Cache
	client *http.Client
	logger *logrus.Logger
}

func NewProxyService(cfg ProxyConfig, cache ports.Cache, logger *logrus.Logger) *ProxyService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	return &ProxyService{cfg: cfg, cache: cache, client: &http.Client{}, logger: logger}
}

// Forward implements ports.ProxyService.
func (s *ProxyService) Forward(ctx context.Context, req *ports.ProxyRequest) (*proxy.Result, error) {
	base, ok := s.cfg.Targets[req.Target]
	if !ok {
		return nil, proxy.ErrUnknownTarget
	}

	cacheable := s.cacheable(req.Method)
	// Query encoding sorts keys, so identical logical requests share a key.
	// The method is part of the key: a cached HEAD (empty body) must never
	// satisfy a GET for the same path.
	key := utils.CacheKey("proxy:"+req.Target, map[string]string{
		"method": req.Method,
		"path":   req.Path,
		"query":  req.Query.Encode(),
	})

	if cacheable {
		if cached, found, err := s.cache.Get(ctx, key); err == nil && found {
			var result proxy.Result
			if err := json.Unmarshal(cached, &result); err == nil {
				result.CacheHit = true
				return &result, nil
			}
			// Corrupt entry: drop it and fall through to a fetch.
			_ = s.cache.Delete(ctx, key)
		}
	}

	result, err := s.fetch(ctx, base, req)
	if err != nil {
		return nil, err
	}

	if cacheable && result.Status >= 200 && result.Status < 300 {
		if encoded, err := json.Marshal(result); err == nil {
			if err := s.cache.Set(ctx, key, encoded, s.cfg.CacheTTL); err != nil && s.logger != nil {
				s.logger.WithError(err).WithField("target", req.Target).Warn("failed to cache proxy response")
			}
		}
	}
	return result, nil
}

func (s *ProxyService) cacheable(method string) bool {
	if !s.cfg.CacheEnabled || s.cache == nil {
		return false
	}
	return method == http.MethodGet || method == http.MethodHead
}

func (s *ProxyService) fetch(ctx context.Context, base string, req *ports.ProxyRequest) (*proxy.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	target := strings.TrimRight(base, "/")
	if p := strings.TrimLeft(req.Path, "/"); p != "" {
		target += "/" + p
	}
	if q := req.Query.Encode(); q != "" {
		target += "?" + q
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	hreq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, err
	}
	for _, h := range forwardedHeaders {
		if v := req.Header.Get(h); v != "" {
			hreq.Header.Set(h, v)
		}
	}

	resp, err := s.client.Do(hreq)
	if err != nil {
		if utils.IsTimeout(err) {
			if s.logger != nil {
				s.logger.WithField("target", req.Target).Warn("proxy request timed out")
			}
			return nil, proxy.ErrTimeout
		}
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxProxyBody))
	if err != nil {
		if utils.IsTimeout(err) {
			return nil, proxy.ErrTimeout
		}
		return nil, err
	}

	contentType := resp.Header.Get("Content-Type")
	return &proxy.Result{
		Status:      resp.StatusCode,
		ContentType: contentType,
		Kind:        proxy.ClassifyContentType(contentType),
		Body:        raw,
	}, nil
}
