package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/oxidizr/askgate/internal/infrastructure/repositories"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests advance time deterministically.
type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time          { return f.now }
func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func newFakeClock() *fakeClock { return &fakeClock{now: time.Unix(1700000000, 0)} }

func TestMemoryStore_QuotaExhaustion(t *testing.T) {
	clock := newFakeClock()
	store := repositories.NewMemoryRateLimitStoreWithClock(5, time.Minute, clock.Now)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		allowed, remaining, _, err := store.Take(ctx, "ip-1")
		require.NoError(t, err)
		require.True(t, allowed, "request %d within quota must be allowed", i+1)
		require.Equal(t, 5-(i+1), remaining)
	}

	allowed, remaining, _, err := store.Take(ctx, "ip-1")
	require.NoError(t, err)
	require.False(t, allowed, "request over quota must be denied")
	require.Equal(t, 0, remaining)
}

func TestMemoryStore_WindowReset(t *testing.T) {
	clock := newFakeClock()
	store := repositories.NewMemoryRateLimitStoreWithClock(2, time.Minute, clock.Now)
	ctx := context.Background()

	_, _, _, _ = store.Take(ctx, "ip-1")
	_, _, _, _ = store.Take(ctx, "ip-1")
	allowed, _, _, _ := store.Take(ctx, "ip-1")
	require.False(t, allowed)

	clock.Advance(time.Minute + time.Second)

	allowed, remaining, reset, err := store.Take(ctx, "ip-1")
	require.NoError(t, err)
	require.True(t, allowed, "an exhausted key must be allowed again after the window elapses")
	require.Equal(t, 1, remaining, "the new window starts with a fresh count")
	require.Equal(t, clock.Now().Add(time.Minute), reset)
}

func TestMemoryStore_DenyDoesNotMutate(t *testing.T) {
	clock := newFakeClock()
	store := repositories.NewMemoryRateLimitStoreWithClock(1, time.Minute, clock.Now)
	ctx := context.Background()

	_, _, _, _ = store.Take(ctx, "ip-1")
	for i := 0; i < 3; i++ {
		allowed, _, _, _ := store.Take(ctx, "ip-1")
		require.False(t, allowed)
	}

	remaining, _, err := store.Remaining(ctx, "ip-1")
	require.NoError(t, err)
	require.Equal(t, 0, remaining, "denied requests must not grow the counter past the limit")
}

func TestMemoryStore_RemainingMonotoneWithinWindow(t *testing.T) {
	clock := newFakeClock()
	store := repositories.NewMemoryRateLimitStoreWithClock(3, time.Minute, clock.Now)
	ctx := context.Background()

	prev, _, err := store.Remaining(ctx, "ip-1")
	require.NoError(t, err)
	require.Equal(t, 3, prev, "absent key reports the full quota")

	for i := 0; i < 3; i++ {
		_, _, _, _ = store.Take(ctx, "ip-1")
		cur, _, err := store.Remaining(ctx, "ip-1")
		require.NoError(t, err)
		require.LessOrEqual(t, cur, prev)
		prev = cur
	}

	clock.Advance(2 * time.Minute)
	remaining, _, err := store.Remaining(ctx, "ip-1")
	require.NoError(t, err)
	require.Equal(t, 3, remaining, "expired window reports the full quota again")
}

func TestMemoryStore_KeysAreIndependent(t *testing.T) {
	clock := newFakeClock()
	store := repositories.NewMemoryRateLimitStoreWithClock(1, time.Minute, clock.Now)
	ctx := context.Background()

	allowed, _, _, _ := store.Take(ctx, "ip-1")
	require.True(t, allowed)
	allowed, _, _, _ = store.Take(ctx, "ip-1")
	require.False(t, allowed)

	allowed, _, _, _ = store.Take(ctx, "ip-2")
	require.True(t, allowed, "another key has its own window")
}

func TestMemoryStore_SweepDeletesExpiredEntries(t *testing.T) {
	clock := newFakeClock()
	store := repositories.NewMemoryRateLimitStoreWithClock(5, time.Minute, clock.Now)
	ctx := context.Background()

	_, _, _, _ = store.Take(ctx, "ip-1")
	_, _, _, _ = store.Take(ctx, "ip-2")
	require.Equal(t, 2, store.Len())

	clock.Advance(2 * time.Minute)
	_, _, _, _ = store.Take(ctx, "ip-3")

	// Drive one sweep through the ticker with a real interval.
	store.StartSweeper(10 * time.Millisecond)
	defer store.Close()
	require.Eventually(t, func() bool { return store.Len() == 1 }, time.Second, 10*time.Millisecond,
		"expired entries should be swept, live ones kept")
}
