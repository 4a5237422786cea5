package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// CacheKey builds a deterministic cache key from an endpoint identifier and
// its parameters. Parameter keys are sorted so that logically identical
// requests collide to the same key regardless of map iteration order.
func CacheKey(endpoint string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(endpoint)
	for _, k := range keys {
		b.WriteByte(':')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	return b.String()
}

// HashKey derives a fixed-length key from arbitrary parts. Used where the raw
// input (e.g. full question text) is too large or unbounded to embed in a key.
func HashKey(parts ...string) string {
	h := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(h[:])
}
