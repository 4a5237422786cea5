// Package cache provides the in-memory TTL cache used by the proxy and
// question services. Expiry is lazy: an expired entry is evicted on read.
package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	data     []byte
	storedAt time.Time
	ttl      time.Duration
}

func (e *entry) expired(now time.Time) bool {
	return e.ttl > 0 && now.Sub(e.storedAt) > e.ttl
}

// MemoryCache implements ports.Cache with a mutex-guarded map.
// A maxEntries cap bounds memory growth; when full, the oldest entry is
// evicted to make room.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]*entry
	maxEntries int
	now        func() time.Time
}

// NewMemoryCache creates a cache holding at most maxEntries entries.
// maxEntries <= 0 means unbounded.
func NewMemoryCache(maxEntries int) *MemoryCache {
	return NewMemoryCacheWithClock(maxEntries, time.Now)
}

// NewMemoryCacheWithClock creates a cache with an injectable clock for tests.
func NewMemoryCacheWithClock(maxEntries int, now func() time.Time) *MemoryCache {
	return &MemoryCache{
		entries:    make(map[string]*entry),
		maxEntries: maxEntries,
		now:        now,
	}
}

// Get implements ports.Cache. A read past the entry's TTL deletes it and
// reports a miss.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if e.expired(c.now()) {
		delete(c.entries, key)
		return nil, false, nil
	}
	// Hand out a copy so a caller mutating the result cannot corrupt the entry.
	data := make([]byte, len(e.data))
	copy(data, e.data)
	return data, true, nil
}

// Set implements ports.Cache. An existing entry for key is overwritten with a
// fresh timestamp.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}
	c.entries[key] = &entry{data: value, storedAt: c.now(), ttl: ttl}
	return nil
}

// Delete implements ports.Cache.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// Clear implements ports.Cache.
func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
	return nil
}

// Len reports the current number of entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *MemoryCache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	first := true
	for k, e := range c.entries {
		if first || e.storedAt.Before(oldestAt) {
			oldestKey, oldestAt = k, e.storedAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}
