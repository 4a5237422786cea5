package ports

import (
	"context"
	"time"
)

// Cache defines a minimal key-value cache contract with per-entry TTL.
// Implementations should degrade gracefully (returning an error without crashing callers)
// so that application logic can fall back to the upstream call.
type Cache interface {
	// Get returns the raw bytes for key. ok=false if not found or expired.
	// A read past the entry's TTL behaves as a miss and evicts the entry.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value for key with TTL, overwriting any existing entry
	// and resetting its timestamp. A ttl <= 0 stores the entry without
	// expiry (matching Redis SET with no expiration).
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes the key; absence is not an error.
	Delete(ctx context.Context, key string) error
	// Clear removes every entry owned by this cache.
	Clear(ctx context.Context) error
}
