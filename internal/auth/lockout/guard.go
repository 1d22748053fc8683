// Package lockout tracks consecutive authentication failures per account
// and locks the account once the configured maximum is reached.
package lockout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quizmentor/auth-service/internal/audit"
	"github.com/quizmentor/auth-service/internal/auth/domain"
)

const defaultReason = "too many failed login attempts"

// Guard owns the Unlocked -> Locked -> Unlocked transitions. Attempt counts
// and lock rows live in the user store so locks survive restarts.
type Guard struct {
	repo        domain.UserRepository
	events      *audit.Dispatcher
	logger      *zap.Logger
	maxAttempts int
	duration    time.Duration
	now         func() time.Time
}

func NewGuard(repo domain.UserRepository, events *audit.Dispatcher, logger *zap.Logger, maxAttempts int, duration time.Duration) *Guard {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if duration <= 0 {
		duration = 15 * time.Minute
	}

	return &Guard{
		repo:        repo,
		events:      events,
		logger:      logger,
		maxAttempts: maxAttempts,
		duration:    duration,
		now:         time.Now,
	}
}

// IsLocked returns the active lockout for the user, or nil. A lock whose
// window has passed is reported as nil without resetting failed_attempts;
// only the next successful login clears the counter.
func (g *Guard) IsLocked(ctx context.Context, userID string) (*domain.AccountLockout, error) {
	lock, err := g.repo.GetActiveLockout(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lockout lookup for user %s: %w", userID, err)
	}
	if lock == nil || lock.Expired(g.now()) {
		return nil, nil
	}
	return lock, nil
}

// RecordFailure counts one verified-wrong-password attempt. When the count
// reaches the maximum it locks the account and reports locked=true; the
// caller must then skip its own failure event, the transition already
// produced one.
func (g *Guard) RecordFailure(ctx context.Context, userID, ip, userAgent string) (locked bool, err error) {
	count, err := g.repo.IncrementFailedAttempts(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("incrementing failed attempts for user %s: %w", userID, err)
	}
	if count < g.maxAttempts {
		return false, nil
	}

	if err := g.lock(ctx, userID, defaultReason, ip, userAgent); err != nil {
		return false, err
	}
	g.logger.Warn("account locked after repeated failures",
		zap.String("user_id", userID),
		zap.Int("failed_attempts", count),
	)
	return true, nil
}

// RecordSuccess clears the attempt counter and deactivates any lock rows.
func (g *Guard) RecordSuccess(ctx context.Context, userID string) error {
	if err := g.repo.ResetFailedAttempts(ctx, userID); err != nil {
		return fmt.Errorf("resetting failed attempts for user %s: %w", userID, err)
	}
	if err := g.repo.DeactivateLockouts(ctx, userID); err != nil {
		return fmt.Errorf("deactivating lockouts for user %s: %w", userID, err)
	}
	return nil
}

// Lock places a manual lock on the account, e.g. from an abuse report.
func (g *Guard) Lock(ctx context.Context, userID, reason, ip, userAgent string) error {
	if reason == "" {
		reason = defaultReason
	}
	return g.lock(ctx, userID, reason, ip, userAgent)
}

func (g *Guard) lock(ctx context.Context, userID, reason, ip, userAgent string) error {
	now := g.now()
	lock := &domain.AccountLockout{
		ID:          uuid.New().String(),
		UserID:      userID,
		Reason:      reason,
		LockedUntil: now.Add(g.duration),
		CreatedAt:   now,
		IsActive:    true,
	}
	if err := g.repo.CreateLockout(ctx, lock); err != nil {
		return fmt.Errorf("creating lockout for user %s: %w", userID, err)
	}

	g.events.Record(audit.Event{
		UserID:    userID,
		EventType: audit.EventAccountLocked,
		RiskLevel: audit.RiskHigh,
		Success:   false,
		IPAddress: ip,
		UserAgent: userAgent,
		Detail:    reason,
	})
	return nil
}
