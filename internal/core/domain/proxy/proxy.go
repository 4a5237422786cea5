// Package proxy holds the domain types for the generic REST proxy path.
package proxy

import (
	"errors"
	"strings"
)

var (
	// ErrUnknownTarget means the requested target name has no configured upstream.
	ErrUnknownTarget = errors.New("unknown proxy target")
	// ErrTimeout means the upstream did not answer within the forwarding deadline.
	ErrTimeout = errors.New("request timeout")
)

// BodyKind classifies an upstream response body by its declared content type.
type BodyKind string

const (
	KindJSON   BodyKind = "json"
	KindText   BodyKind = "text"
	KindBinary BodyKind = "binary"
)

// Result is the outcome of a forwarded (or cache-served) proxy request.
type Result struct {
	Status      int      `json:"status"`
	ContentType string   `json:"content_type"`
	Kind        BodyKind `json:"kind"`
	Body        []byte   `json:"body"`
	CacheHit    bool     `json:"-"`
}

// ClassifyContentType maps a Content-Type header value to a BodyKind.
func ClassifyContentType(contentType string) BodyKind {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "application/json"), strings.Contains(ct, "+json"):
		return KindJSON
	case strings.HasPrefix(ct, "text/"), strings.Contains(ct, "application/xml"), strings.Contains(ct, "+xml"):
		return KindText
	default:
		return KindBinary
	}
}
