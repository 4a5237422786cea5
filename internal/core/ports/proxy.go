package ports

import (
	"context"
	"net/http"
	"net/url"

	"github.com/oxidizr/askgate/internal/core/domain/proxy"
)

// ProxyRequest describes an inbound request to be forwarded to a named target.
type ProxyRequest struct {
	Target string
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// ProxyService forwards requests to configured upstream targets,
// serving idempotent reads from cache when possible.
type ProxyService interface {
	Forward(ctx context.Context, req *ProxyRequest) (*proxy.Result, error)
}
