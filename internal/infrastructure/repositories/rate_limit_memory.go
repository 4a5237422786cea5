package repositories

import (
	"context"
	"sync"
	"time"
)

type rateLimitEntry struct {
	count     int
	resetTime time.Time
}

// MemoryRateLimitStore implements ports.RateLimitStore with a process-local
// counter map. An entry whose window has elapsed is replaced (not merged) on
// the next access; a periodic sweep deletes expired entries to bound memory.
type MemoryRateLimitStore struct {
	mu      sync.Mutex
	entries map[string]*rateLimitEntry
	limit   int
	window  time.Duration
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemoryRateLimitStore creates a store allowing limit requests per window.
func NewMemoryRateLimitStore(limit int, window time.Duration) *MemoryRateLimitStore {
	return NewMemoryRateLimitStoreWithClock(limit, window, time.Now)
}

// NewMemoryRateLimitStoreWithClock creates a store with an injectable clock for tests.
func NewMemoryRateLimitStoreWithClock(limit int, window time.Duration, now func() time.Time) *MemoryRateLimitStore {
	return &MemoryRateLimitStore{
		entries: make(map[string]*rateLimitEntry),
		limit:   limit,
		window:  window,
		now:     now,
		stop:    make(chan struct{}),
	}
}

// Take implements ports.RateLimitStore.
func (s *MemoryRateLimitStore) Take(_ context.Context, key string) (bool, int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.entries[key]
	if !ok || !now.Before(e.resetTime) {
		e = &rateLimitEntry{count: 1, resetTime: now.Add(s.window)}
		s.entries[key] = e
		return true, s.limit - 1, e.resetTime, nil
	}

	if e.count >= s.limit {
		// Denied requests leave the counter untouched.
		return false, 0, e.resetTime, nil
	}

	e.count++
	return true, s.limit - e.count, e.resetTime, nil
}

// Remaining implements ports.RateLimitStore.
func (s *MemoryRateLimitStore) Remaining(_ context.Context, key string) (int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.entries[key]
	if !ok || !now.Before(e.resetTime) {
		return s.limit, now, nil
	}
	remaining := s.limit - e.count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, e.resetTime, nil
}

// StartSweeper launches a background goroutine that deletes expired entries
// at a fixed interval. Housekeeping only: expired entries are also detected
// lazily on access.
func (s *MemoryRateLimitStore) StartSweeper(interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

// Close stops the sweeper goroutine. Safe to call multiple times.
func (s *MemoryRateLimitStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *MemoryRateLimitStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, e := range s.entries {
		if !now.Before(e.resetTime) {
			delete(s.entries, k)
		}
	}
}

// Len reports the current number of tracked keys. Used by tests and the sweeper.
func (s *MemoryRateLimitStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
