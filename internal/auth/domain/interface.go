package domain

//go:generate mockgen -destination=../../mocks/mock_repository.go -package=mocks github.com/quizmentor/auth-service/internal/auth/domain UserRepository

import (
	"context"
	"time"
)

// UserRepository is the persistence adapter the auth core consumes. The core
// never executes storage queries itself; the adapter must implement this
// interface in full. Lookups return (nil, nil) when no row matches so that
// "not found" stays distinguishable from adapter failure.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)

	// VerifyPassword compares a candidate against the stored hash. A wrong
	// password is (false, nil), not an error.
	VerifyPassword(ctx context.Context, userID, candidate string) (bool, error)
	UpdatePassword(ctx context.Context, userID, newPassword string) error
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error

	// IncrementFailedAttempts must be atomic at the store level and return
	// the post-increment count, so two concurrent failures cannot both
	// observe the pre-lock value.
	IncrementFailedAttempts(ctx context.Context, userID string) (int, error)
	ResetFailedAttempts(ctx context.Context, userID string) error

	CreateSession(ctx context.Context, s *Session) error
	GetSessionByAccessToken(ctx context.Context, token string) (*Session, error)
	GetSessionByRefreshToken(ctx context.Context, token string) (*Session, error)
	TouchSession(ctx context.Context, sessionID string, at time.Time) error
	InvalidateSession(ctx context.Context, sessionID string) error
	InvalidateUserSessions(ctx context.Context, userID, exceptSessionID string) error
	InvalidateOldestSession(ctx context.Context, userID string) error
	CountActiveSessions(ctx context.Context, userID string) (int, error)
	GetActiveSessionsByUserID(ctx context.Context, userID string) ([]Session, error)

	// GetActiveLockout returns the most recent lockout row still flagged
	// active, or nil. Expiry interpretation belongs to the lockout guard,
	// not the adapter.
	GetActiveLockout(ctx context.Context, userID string) (*AccountLockout, error)
	CreateLockout(ctx context.Context, lockout *AccountLockout) error
	DeactivateLockouts(ctx context.Context, userID string) error
}
