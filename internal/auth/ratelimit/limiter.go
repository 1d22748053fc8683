package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Config holds the tuning parameters for one limiter instance. Login and
// generic API traffic run separate instances with different budgets.
type Config struct {
	MaxAttempts   int
	Window        time.Duration
	BlockDuration time.Duration
	SweepInterval time.Duration
}

// Result reports one admission decision. ResetAt is when the current window
// ends; BlockedUntil is zero unless the key is serving a block.
type Result struct {
	Allowed      bool
	Remaining    int
	ResetAt      time.Time
	BlockedUntil time.Time
}

// Limiter admits or rejects one request for a purpose+identifier pair.
// Check both counts the request and decides, so callers invoke it exactly
// once per attempt. Reset clears a key early, e.g. after a successful login.
type Limiter interface {
	Check(ctx context.Context, purpose, identifier string) (Result, error)
	Reset(ctx context.Context, purpose, identifier string) error
}

type entry struct {
	count         int
	windowResetAt time.Time
	blocked       bool
	blockedUntil  time.Time
}

// MemoryLimiter is a fixed-window limiter over an in-process map. State is
// per process; deployments running more than one instance should use
// RedisLimiter instead.
type MemoryLimiter struct {
	cfg Config
	now func() time.Time

	mu      sync.Mutex
	entries map[string]*entry

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewMemoryLimiter(cfg Config) *MemoryLimiter {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.BlockDuration <= 0 {
		cfg.BlockDuration = cfg.Window
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}

	l := &MemoryLimiter{
		cfg:     cfg,
		now:     time.Now,
		entries: make(map[string]*entry),
		done:    make(chan struct{}),
	}

	l.wg.Add(1)
	go l.sweepLoop()

	return l
}

// Check records the attempt and reports whether it is admitted. A key whose
// count exceeds MaxAttempts starts a block; blocked attempts are denied
// without counting. A block runs its window to BlockedUntil, after which the
// next attempt opens a fresh window.
func (l *MemoryLimiter) Check(_ context.Context, purpose, identifier string) (Result, error) {
	key := purpose + ":" + identifier
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok || !now.Before(e.windowResetAt) {
		e = &entry{count: 1, windowResetAt: now.Add(l.cfg.Window)}
		l.entries[key] = e
		return Result{
			Allowed:   true,
			Remaining: l.cfg.MaxAttempts - 1,
			ResetAt:   e.windowResetAt,
		}, nil
	}

	if e.blocked {
		return Result{
			Allowed:      false,
			Remaining:    0,
			ResetAt:      e.windowResetAt,
			BlockedUntil: e.blockedUntil,
		}, nil
	}

	e.count++
	if e.count > l.cfg.MaxAttempts {
		e.blocked = true
		e.blockedUntil = now.Add(l.cfg.BlockDuration)
		// The block is the remainder of this key's window.
		e.windowResetAt = e.blockedUntil
		return Result{
			Allowed:      false,
			Remaining:    0,
			ResetAt:      e.windowResetAt,
			BlockedUntil: e.blockedUntil,
		}, nil
	}

	remaining := l.cfg.MaxAttempts - e.count
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   true,
		Remaining: remaining,
		ResetAt:   e.windowResetAt,
	}, nil
}

// Reset drops the key so the next attempt opens a fresh window.
func (l *MemoryLimiter) Reset(_ context.Context, purpose, identifier string) error {
	key := purpose + ":" + identifier

	l.mu.Lock()
	delete(l.entries, key)
	l.mu.Unlock()

	return nil
}

// Close stops the background sweeper.
func (l *MemoryLimiter) Close() {
	l.closeOnce.Do(func() {
		close(l.done)
		l.wg.Wait()
	})
}

func (l *MemoryLimiter) sweepLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(l.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.done:
			return
		}
	}
}

// sweep removes keys whose window and block have both elapsed. Expired keys
// are collected first, then deleted in a second pass that re-checks expiry.
func (l *MemoryLimiter) sweep() {
	now := l.now()

	l.mu.Lock()
	expired := make([]string, 0, len(l.entries))
	for key, e := range l.entries {
		if !now.Before(e.windowResetAt) && !now.Before(e.blockedUntil) {
			expired = append(expired, key)
		}
	}
	l.mu.Unlock()

	if len(expired) == 0 {
		return
	}

	l.mu.Lock()
	for _, key := range expired {
		if e, ok := l.entries[key]; ok && !now.Before(e.windowResetAt) && !now.Before(e.blockedUntil) {
			delete(l.entries, key)
		}
	}
	l.mu.Unlock()
}

// size reports the tracked key count, for tests.
func (l *MemoryLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
