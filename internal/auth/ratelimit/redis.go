package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is the fixed-window limiter for multi-instance deployments.
// Counters live in Redis with the window as TTL; a block is a separate key
// whose TTL is the block duration. The counter is dropped when a block
// starts, so the first attempt after the block opens a fresh window.
type RedisLimiter struct {
	client redis.UniversalClient
	cfg    Config
	now    func() time.Time
}

func NewRedisLimiter(client redis.UniversalClient, cfg Config) *RedisLimiter {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.BlockDuration <= 0 {
		cfg.BlockDuration = cfg.Window
	}

	return &RedisLimiter{
		client: client,
		cfg:    cfg,
		now:    time.Now,
	}
}

func (l *RedisLimiter) Check(ctx context.Context, purpose, identifier string) (Result, error) {
	counterKey := counterKey(purpose, identifier)
	blockKey := blockKey(purpose, identifier)
	now := l.now()

	blockTTL, err := l.client.PTTL(ctx, blockKey).Result()
	if err != nil {
		return Result{}, fmt.Errorf("rate limit block lookup: %w", err)
	}
	if blockTTL > 0 {
		until := now.Add(blockTTL)
		return Result{Allowed: false, Remaining: 0, ResetAt: until, BlockedUntil: until}, nil
	}

	count, err := l.client.Incr(ctx, counterKey).Result()
	if err != nil {
		return Result{}, fmt.Errorf("rate limit increment: %w", err)
	}

	var resetAt time.Time
	if count == 1 {
		if err := l.client.Expire(ctx, counterKey, l.cfg.Window).Err(); err != nil {
			return Result{}, fmt.Errorf("rate limit window: %w", err)
		}
		resetAt = now.Add(l.cfg.Window)
	} else {
		ttl, err := l.client.PTTL(ctx, counterKey).Result()
		if err != nil {
			return Result{}, fmt.Errorf("rate limit window lookup: %w", err)
		}
		if ttl <= 0 {
			// Counter lost its TTL, re-arm the window rather than leak the key.
			if err := l.client.Expire(ctx, counterKey, l.cfg.Window).Err(); err != nil {
				return Result{}, fmt.Errorf("rate limit window: %w", err)
			}
			ttl = l.cfg.Window
		}
		resetAt = now.Add(ttl)
	}

	if count > int64(l.cfg.MaxAttempts) {
		until := now.Add(l.cfg.BlockDuration)
		pipe := l.client.TxPipeline()
		pipe.Set(ctx, blockKey, "1", l.cfg.BlockDuration)
		pipe.Del(ctx, counterKey)
		if _, err := pipe.Exec(ctx); err != nil {
			return Result{}, fmt.Errorf("rate limit block: %w", err)
		}
		return Result{Allowed: false, Remaining: 0, ResetAt: until, BlockedUntil: until}, nil
	}

	remaining := l.cfg.MaxAttempts - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: true, Remaining: remaining, ResetAt: resetAt}, nil
}

func (l *RedisLimiter) Reset(ctx context.Context, purpose, identifier string) error {
	if err := l.client.Del(ctx, counterKey(purpose, identifier), blockKey(purpose, identifier)).Err(); err != nil {
		return fmt.Errorf("rate limit reset: %w", err)
	}
	return nil
}

func counterKey(purpose, identifier string) string {
	return "ratelimit:" + purpose + ":" + identifier
}

func blockKey(purpose, identifier string) string {
	return "ratelimit:" + purpose + ":" + identifier + ":block"
}
