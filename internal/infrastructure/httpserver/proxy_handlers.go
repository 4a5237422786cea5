package httpserver

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/oxidizr/askgate/internal/core/domain/proxy"
	"github.com/oxidizr/askgate/internal/core/ports"
)

// proxyRequest handles /api/v1/proxy/:target and /api/v1/proxy/:target/*.
// GET responses may be served from cache; the cache status is reported in the
// X-Cache header.
func (s *Server) proxyRequest(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "failed to read request body"})
	}

	req := &ports.ProxyRequest{
		Target: c.Param("target"),
		Method: c.Request().Method,
		Path:   c.Param("*"),
		Query:  c.QueryParams(),
		Header: c.Request().Header,
		Body:   body,
	}

	result, err := s.proxySvc.Forward(c.Request().Context(), req)
	if err != nil {
		return s.proxyError(c, err)
	}

	if result.CacheHit {
		c.Response().Header().Set("X-Cache", "HIT")
	} else {
		c.Response().Header().Set("X-Cache", "MISS")
	}

	contentType := result.ContentType
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	return c.Blob(result.Status, contentType, result.Body)
}

func (s *Server) proxyError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, proxy.ErrUnknownTarget):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "unknown proxy target"})
	case errors.Is(err, proxy.ErrTimeout):
		return c.JSON(http.StatusGatewayTimeout, map[string]string{"error": "request timeout"})
	}
	if s.logger != nil {
		s.logger.WithError(err).Error("proxy request failed")
	}
	return c.JSON(http.StatusBadGateway, map[string]string{"error": "failed to reach upstream target"})
}
