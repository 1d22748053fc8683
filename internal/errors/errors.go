package errors

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies every failure the auth core can surface to a caller.
// User-not-found and wrong-password deliberately share KindInvalidCredentials
// so responses never disclose whether an identifier exists.
type Kind string

const (
	KindInvalidCredentials Kind = "invalid_credentials"
	KindAccountLocked      Kind = "account_locked"
	KindAccountInactive    Kind = "account_inactive"
	KindRateLimited        Kind = "rate_limited"
	KindInvalidToken       Kind = "invalid_token"
	KindSessionExpired     Kind = "session_expired"
	KindWeakPassword       Kind = "weak_password"
	KindCSRFInvalid        Kind = "csrf_invalid"
	KindInternal           Kind = "internal_error"
)

// Error is the tagged error type used throughout the core. Failure paths are
// classified exactly once, at the boundary where the original error occurs,
// and propagate as one of the Kind values above.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error carrying the same Kind, so callers can test against
// the package sentinels with errors.Is regardless of wrapping.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

var (
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials, Message: "invalid credentials"}
	ErrAccountLocked      = &Error{Kind: KindAccountLocked, Message: "account temporarily locked"}
	ErrAccountInactive    = &Error{Kind: KindAccountInactive, Message: "account is not active"}
	ErrRateLimited        = &Error{Kind: KindRateLimited, Message: "too many requests"}
	ErrInvalidToken       = &Error{Kind: KindInvalidToken, Message: "invalid token"}
	ErrSessionExpired     = &Error{Kind: KindSessionExpired, Message: "session expired"}
	ErrWeakPassword       = &Error{Kind: KindWeakPassword, Message: "password does not meet policy"}
	ErrCSRFInvalid        = &Error{Kind: KindCSRFInvalid, Message: "csrf token invalid"}
	ErrInternal           = &Error{Kind: KindInternal, Message: "internal error"}
)

// New returns a taxonomy error with a caller-facing message. The message must
// already be safe to surface.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies err under kind with a caller-facing message, retaining the
// cause for server-side logging.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, cause: err}
}

// Internal wraps an adapter or infrastructure failure. The cause is retained
// for server-side logging; the surfaced message stays generic.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", cause: err}
}

// Inactive reports a status-specific account failure, e.g. "account suspended".
func Inactive(status string) *Error {
	return &Error{Kind: KindAccountInactive, Message: "account " + status}
}

// KindOf extracts the taxonomy kind from err, defaulting to KindInternal for
// anything unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return KindRateLimited
	}
	var wp *WeakPasswordError
	if errors.As(err, &wp) {
		return KindWeakPassword
	}
	return KindInternal
}

// RateLimitError carries the limiter state a handler needs to emit
// X-RateLimit-Remaining and Retry-After headers. errors.Is(err,
// ErrRateLimited) holds for it.
type RateLimitError struct {
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter.Round(time.Second))
}

func (e *RateLimitError) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == KindRateLimited
	}
	return false
}

// WeakPasswordError carries policy feedback for the caller. errors.Is(err,
// ErrWeakPassword) holds for it.
type WeakPasswordError struct {
	Feedback []string
}

func (e *WeakPasswordError) Error() string {
	return "password does not meet policy"
}

func (e *WeakPasswordError) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == KindWeakPassword
	}
	return false
}
