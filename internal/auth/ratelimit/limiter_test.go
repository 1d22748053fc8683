package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(t *testing.T, cfg Config) (*MemoryLimiter, *fakeClock) {
	t.Helper()

	// Long sweep interval keeps the sweeper idle for clock-driven tests.
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = time.Hour
	}
	l := NewMemoryLimiter(cfg)
	t.Cleanup(l.Close)

	clock := newFakeClock()
	l.now = clock.Now
	return l, clock
}

func TestMemoryLimiter_AllowsUpToMaxThenBlocks(t *testing.T) {
	l, _ := newTestLimiter(t, Config{MaxAttempts: 5, Window: time.Minute, BlockDuration: 15 * time.Minute})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		result, err := l.Check(ctx, "login", "203.0.113.7")
		require.NoError(t, err)
		assert.True(t, result.Allowed, "attempt %d should be allowed", i+1)
		assert.Equal(t, 4-i, result.Remaining)
	}

	result, err := l.Check(ctx, "login", "203.0.113.7")
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Zero(t, result.Remaining)
	assert.False(t, result.BlockedUntil.IsZero())
}

func TestMemoryLimiter_BlockedAttemptsDoNotExtendBlock(t *testing.T) {
	l, clock := newTestLimiter(t, Config{MaxAttempts: 1, Window: time.Minute, BlockDuration: time.Minute})
	ctx := context.Background()

	_, err := l.Check(ctx, "login", "eve")
	require.NoError(t, err)
	first, err := l.Check(ctx, "login", "eve")
	require.NoError(t, err)
	require.False(t, first.Allowed)

	clock.Advance(30 * time.Second)
	second, err := l.Check(ctx, "login", "eve")
	require.NoError(t, err)
	assert.False(t, second.Allowed)
	assert.Equal(t, first.BlockedUntil, second.BlockedUntil)
}

func TestMemoryLimiter_WindowElapseResetsCount(t *testing.T) {
	l, clock := newTestLimiter(t, Config{MaxAttempts: 2, Window: time.Minute, BlockDuration: 5 * time.Minute})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		result, err := l.Check(ctx, "api", "user-1")
		require.NoError(t, err)
		require.True(t, result.Allowed)
	}

	clock.Advance(time.Minute)

	result, err := l.Check(ctx, "api", "user-1")
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 1, result.Remaining)
}

func TestMemoryLimiter_CompletedBlockOpensFreshWindow(t *testing.T) {
	l, clock := newTestLimiter(t, Config{MaxAttempts: 1, Window: 30 * time.Second, BlockDuration: time.Minute})
	ctx := context.Background()

	_, err := l.Check(ctx, "login", "mallory")
	require.NoError(t, err)
	blockedAt, err := l.Check(ctx, "login", "mallory")
	require.NoError(t, err)
	require.False(t, blockedAt.Allowed)

	// Original window would have ended here, but the block governs.
	clock.Advance(45 * time.Second)
	still, err := l.Check(ctx, "login", "mallory")
	require.NoError(t, err)
	assert.False(t, still.Allowed)

	clock.Advance(20 * time.Second)
	fresh, err := l.Check(ctx, "login", "mallory")
	require.NoError(t, err)
	assert.True(t, fresh.Allowed)
	assert.Zero(t, fresh.Remaining)
	assert.True(t, fresh.BlockedUntil.IsZero())
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(t, Config{MaxAttempts: 1, Window: time.Minute, BlockDuration: time.Minute})
	ctx := context.Background()

	first, err := l.Check(ctx, "login", "alice")
	require.NoError(t, err)
	blocked, err := l.Check(ctx, "login", "alice")
	require.NoError(t, err)
	require.True(t, first.Allowed)
	require.False(t, blocked.Allowed)

	other, err := l.Check(ctx, "login", "bob")
	require.NoError(t, err)
	assert.True(t, other.Allowed)

	api, err := l.Check(ctx, "api", "alice")
	require.NoError(t, err)
	assert.True(t, api.Allowed, "same identifier under another purpose is a distinct key")
}

func TestMemoryLimiter_ResetClearsKey(t *testing.T) {
	l, _ := newTestLimiter(t, Config{MaxAttempts: 1, Window: time.Hour, BlockDuration: time.Hour})
	ctx := context.Background()

	_, err := l.Check(ctx, "login", "carol")
	require.NoError(t, err)
	blocked, err := l.Check(ctx, "login", "carol")
	require.NoError(t, err)
	require.False(t, blocked.Allowed)

	require.NoError(t, l.Reset(ctx, "login", "carol"))

	result, err := l.Check(ctx, "login", "carol")
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestMemoryLimiter_SweepRemovesExpiredKeys(t *testing.T) {
	l := NewMemoryLimiter(Config{
		MaxAttempts:   3,
		Window:        20 * time.Millisecond,
		BlockDuration: 20 * time.Millisecond,
		SweepInterval: 10 * time.Millisecond,
	})
	defer l.Close()
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		_, err := l.Check(ctx, "api", id)
		require.NoError(t, err)
	}
	require.Equal(t, 3, l.size())

	require.Eventually(t, func() bool {
		return l.size() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestMemoryLimiter_ConcurrentChecksCountEveryAttempt(t *testing.T) {
	l, _ := newTestLimiter(t, Config{MaxAttempts: 100, Window: time.Hour, BlockDuration: time.Hour})
	ctx := context.Background()

	var allowed atomic.Int64
	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				result, err := l.Check(ctx, "login", "shared")
				if err == nil && result.Allowed {
					allowed.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 100, allowed.Load())
}
