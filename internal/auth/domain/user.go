package domain

import "time"

// Account status values. Any status other than StatusActive refuses login
// before lockout or password checks are even considered.
const (
	StatusActive              = "active"
	StatusSuspended           = "suspended"
	StatusPendingVerification = "pending_verification"
	StatusDeactivated         = "deactivated"
)

type User struct {
	ID             string
	Email          string
	Username       string
	FirstName      string
	LastName       string
	Role           string
	AccountStatus  string
	PasswordHash   string
	FailedAttempts int
	LastLogin      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsActive reports whether the account may authenticate at all.
func (u *User) IsActive() bool {
	return u.AccountStatus == StatusActive
}

// Session binds a user to one active login. A refresh never extends a
// session in place: rotation creates a new row and deactivates the old one.
type Session struct {
	ID           string
	UserID       string
	AccessToken  string
	RefreshToken string
	IPAddress    string
	UserAgent    string
	ExpiresAt    time.Time
	CreatedAt    time.Time
	LastAccessed time.Time
	IsActive     bool
}

// AccountLockout is a persisted lock row. Lockouts survive restarts; the
// in-memory rate-limit state does not.
type AccountLockout struct {
	ID          string
	UserID      string
	Reason      string
	LockedUntil time.Time
	CreatedAt   time.Time
	IsActive    bool
}

// Expired reports whether the lock window has already passed. An expired lock
// row no longer denies login, but failed_attempts stays untouched until the
// next successful authentication resets it.
func (l *AccountLockout) Expired(now time.Time) bool {
	return !now.Before(l.LockedUntil)
}
