package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/quizmentor/auth-service/internal/auth/domain"
)

// DB is the subset of *pgxpool.Pool the repository uses. pgxmock satisfies it
// in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository implements domain.UserRepository on PostgreSQL. Password hashes
// never leave this package: verification and rehashing happen here.
type Repository struct {
	db         DB
	bcryptCost int
}

func NewRepository(db DB) *Repository {
	return &Repository{db: db, bcryptCost: bcrypt.DefaultCost}
}

// NewRepositoryWithCost overrides the bcrypt cost, e.g. to soften hashing in
// development environments. Out-of-range costs fall back to the default.
func NewRepositoryWithCost(db DB, cost int) *Repository {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Repository{db: db, bcryptCost: cost}
}

const userColumns = `id, email, username, first_name, last_name, role, account_status,
		       password_hash, failed_attempts, last_login, created_at, updated_at`

const sessionColumns = `id, user_id, access_token, refresh_token, ip_address, user_agent,
			  expires_at, created_at, last_accessed, is_active`

func (r *Repository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1
		LIMIT 1;
	`
	return r.getUser(ctx, query, email)
}

func (r *Repository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE username = $1
		LIMIT 1;
	`
	return r.getUser(ctx, query, username)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
		LIMIT 1;
	`
	return r.getUser(ctx, query, id)
}

func (r *Repository) getUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	row := r.db.QueryRow(ctx, query, arg)

	var user domain.User
	err := row.Scan(
		&user.ID, &user.Email, &user.Username, &user.FirstName, &user.LastName,
		&user.Role, &user.AccountStatus, &user.PasswordHash, &user.FailedAttempts,
		&user.LastLogin, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan user row: %w", err)
	}

	return &user, nil
}

// VerifyPassword loads the stored hash and compares in constant time. A wrong
// password or unknown user is (false, nil); only adapter faults are errors.
func (r *Repository) VerifyPassword(ctx context.Context, userID, candidate string) (bool, error) {
	var hash string
	err := r.db.QueryRow(ctx, `SELECT password_hash FROM users WHERE id = $1`, userID).Scan(&hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load password hash: %w", err)
	}

	switch err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)); {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("failed to compare password hash: %w", err)
	}
}

func (r *Repository) UpdatePassword(ctx context.Context, userID, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), r.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		UPDATE users
		SET password_hash = $2, updated_at = now()
		WHERE id = $1
	`, userID, string(hash))
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (r *Repository) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users
		SET last_login = $2, updated_at = now()
		WHERE id = $1
	`, userID, at)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// IncrementFailedAttempts bumps the counter in a single statement so two
// concurrent failures cannot read the same pre-increment value.
func (r *Repository) IncrementFailedAttempts(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		UPDATE users
		SET failed_attempts = failed_attempts + 1, updated_at = now()
		WHERE id = $1
		RETURNING failed_attempts
	`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to increment failed attempts: %w", err)
	}
	return count, nil
}

func (r *Repository) ResetFailedAttempts(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users
		SET failed_attempts = 0, updated_at = now()
		WHERE id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to reset failed attempts: %w", err)
	}
	return nil
}

func (r *Repository) CreateSession(ctx context.Context, s *domain.Session) error {
	query := `INSERT INTO sessions (` + sessionColumns + `)
		  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.Exec(ctx, query,
		s.ID, s.UserID, s.AccessToken, s.RefreshToken, s.IPAddress,
		s.UserAgent, s.ExpiresAt, s.CreatedAt, s.LastAccessed, s.IsActive)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *Repository) GetSessionByAccessToken(ctx context.Context, token string) (*domain.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE access_token = $1
		LIMIT 1;
	`
	return r.getSession(ctx, query, token)
}

func (r *Repository) GetSessionByRefreshToken(ctx context.Context, token string) (*domain.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE refresh_token = $1
		LIMIT 1;
	`
	return r.getSession(ctx, query, token)
}

func (r *Repository) getSession(ctx context.Context, query string, arg any) (*domain.Session, error) {
	row := r.db.QueryRow(ctx, query, arg)

	var s domain.Session
	err := row.Scan(
		&s.ID, &s.UserID, &s.AccessToken, &s.RefreshToken, &s.IPAddress,
		&s.UserAgent, &s.ExpiresAt, &s.CreatedAt, &s.LastAccessed, &s.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan session row: %w", err)
	}

	return &s, nil
}

func (r *Repository) TouchSession(ctx context.Context, sessionID string, at time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE sessions
		SET last_accessed = $2
		WHERE id = $1
	`, sessionID, at)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return nil
}

func (r *Repository) InvalidateSession(ctx context.Context, sessionID string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE sessions
		SET is_active = FALSE
		WHERE id = $1
	`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to invalidate session: %w", err)
	}
	return nil
}

// InvalidateUserSessions deactivates every active session for the user except
// exceptSessionID. Session ids are never empty, so an empty exception matches
// nothing and all sessions are ended.
func (r *Repository) InvalidateUserSessions(ctx context.Context, userID, exceptSessionID string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE sessions
		SET is_active = FALSE
		WHERE user_id = $1 AND is_active = TRUE AND id <> $2
	`, userID, exceptSessionID)
	if err != nil {
		return fmt.Errorf("failed to invalidate user sessions: %w", err)
	}
	return nil
}

func (r *Repository) InvalidateOldestSession(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE sessions
		SET is_active = FALSE
		WHERE id = (
			SELECT id FROM sessions
			WHERE user_id = $1 AND is_active = TRUE
			ORDER BY created_at ASC
			LIMIT 1
		)
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to invalidate oldest session: %w", err)
	}
	return nil
}

func (r *Repository) CountActiveSessions(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(id)
		FROM sessions
		WHERE user_id = $1 AND is_active = TRUE AND expires_at > now()
	`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active sessions: %w", err)
	}
	return count, nil
}

func (r *Repository) GetActiveSessionsByUserID(ctx context.Context, userID string) ([]domain.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE user_id = $1 AND is_active = TRUE AND expires_at > now()
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query active sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		var s domain.Session
		err := rows.Scan(
			&s.ID, &s.UserID, &s.AccessToken, &s.RefreshToken, &s.IPAddress,
			&s.UserAgent, &s.ExpiresAt, &s.CreatedAt, &s.LastAccessed, &s.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read session rows: %w", err)
	}

	return sessions, nil
}

func (r *Repository) GetActiveLockout(ctx context.Context, userID string) (*domain.AccountLockout, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, reason, locked_until, created_at, is_active
		FROM account_lockouts
		WHERE user_id = $1 AND is_active = TRUE
		ORDER BY created_at DESC
		LIMIT 1
	`, userID)

	var lock domain.AccountLockout
	err := row.Scan(&lock.ID, &lock.UserID, &lock.Reason, &lock.LockedUntil, &lock.CreatedAt, &lock.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan lockout row: %w", err)
	}

	return &lock, nil
}

func (r *Repository) CreateLockout(ctx context.Context, lockout *domain.AccountLockout) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO account_lockouts (id, user_id, reason, locked_until, created_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, lockout.ID, lockout.UserID, lockout.Reason, lockout.LockedUntil, lockout.CreatedAt, lockout.IsActive)
	if err != nil {
		return fmt.Errorf("failed to create lockout: %w", err)
	}
	return nil
}

func (r *Repository) DeactivateLockouts(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE account_lockouts
		SET is_active = FALSE
		WHERE user_id = $1 AND is_active = TRUE
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate lockouts: %w", err)
	}
	return nil
}
