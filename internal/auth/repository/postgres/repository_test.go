package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/quizmentor/auth-service/internal/auth/domain"
	repo "github.com/quizmentor/auth-service/internal/auth/repository/postgres"
)

var userColumns = []string{
	"id", "email", "username", "first_name", "last_name", "role", "account_status",
	"password_hash", "failed_attempts", "last_login", "created_at", "updated_at",
}

var sessionColumns = []string{
	"id", "user_id", "access_token", "refresh_token", "ip_address", "user_agent",
	"expires_at", "created_at", "last_accessed", "is_active",
}

func userRow(id, email string) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows(userColumns).
		AddRow(id, email, "student1", "Alice", "Nguyen", "student", "active",
			"hash", 0, nil, now, now)
}

// TestGetByEmail covers the GetByEmail repository method.
func TestGetByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewRepository(mock)
	userEmail := "student@example.com"
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, email").
			WithArgs(userEmail).
			WillReturnRows(userRow("user-123", userEmail))

		user, err := r.GetByEmail(ctx, userEmail)
		require.NoError(t, err)
		assert.Equal(t, "user-123", user.ID)
		assert.Equal(t, userEmail, user.Email)
		assert.Equal(t, "student", user.Role)
		assert.Nil(t, user.LastLogin)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, email").
			WithArgs(userEmail).
			WillReturnError(pgx.ErrNoRows)

		user, err := r.GetByEmail(ctx, userEmail)
		require.NoError(t, err) // Should return nil user, nil error
		assert.Nil(t, user)
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, email").
			WithArgs(userEmail).
			WillReturnError(fmt.Errorf("db error"))

		_, err := r.GetByEmail(ctx, userEmail)
		assert.Error(t, err)
	})
}

// TestGetByUsername covers the GetByUsername repository method.
func TestGetByUsername(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewRepository(mock)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("WHERE username").
			WithArgs("student1").
			WillReturnRows(userRow("user-123", "student@example.com"))

		user, err := r.GetByUsername(ctx, "student1")
		require.NoError(t, err)
		assert.Equal(t, "student1", user.Username)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("WHERE username").
			WithArgs("ghost").
			WillReturnError(pgx.ErrNoRows)

		user, err := r.GetByUsername(ctx, "ghost")
		require.NoError(t, err)
		assert.Nil(t, user)
	})
}

// TestGetByID covers the GetByID repository method.
func TestGetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewRepository(mock)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("WHERE id").
			WithArgs("user-123").
			WillReturnRows(userRow("user-123", "student@example.com"))

		user, err := r.GetByID(ctx, "user-123")
		require.NoError(t, err)
		assert.Equal(t, "user-123", user.ID)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("WHERE id").
			WithArgs("missing").
			WillReturnError(pgx.ErrNoRows)

		user, err := r.GetByID(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, user)
	})
}

// TestVerifyPassword covers bcrypt comparison against the stored hash.
func TestVerifyPassword(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewRepository(mock)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	require.NoError(t, err)

	t.Run("correct password", func(t *testing.T) {
		mock.ExpectQuery("SELECT password_hash").
			WithArgs("user-123").
			WillReturnRows(pgxmock.NewRows([]string{"password_hash"}).AddRow(string(hash)))

		ok, err := r.VerifyPassword(ctx, "user-123", "correct-password")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("wrong password", func(t *testing.T) {
		mock.ExpectQuery("SELECT password_hash").
			WithArgs("user-123").
			WillReturnRows(pgxmock.NewRows([]string{"password_hash"}).AddRow(string(hash)))

		ok, err := r.VerifyPassword(ctx, "user-123", "wrong-password")
		require.NoError(t, err) // Mismatch is not an adapter failure
		assert.False(t, ok)
	})

	t.Run("unknown user", func(t *testing.T) {
		mock.ExpectQuery("SELECT password_hash").
			WithArgs("missing").
			WillReturnError(pgx.ErrNoRows)

		ok, err := r.VerifyPassword(ctx, "missing", "anything")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectQuery("SELECT password_hash").
			WithArgs("user-123").
			WillReturnError(fmt.Errorf("db error"))

		_, err := r.VerifyPassword(ctx, "user-123", "correct-password")
		assert.Error(t, err)
	})
}

// TestUpdatePassword covers rehash-and-store.
func TestUpdatePassword(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewRepository(mock)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		// The hash is salted, so only the user id argument is predictable.
		mock.ExpectExec("SET password_hash").
			WithArgs("user-123", pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := r.UpdatePassword(ctx, "user-123", "Brand#New9pass")
		assert.NoError(t, err)
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectExec("SET password_hash").
			WithArgs("user-123", pgxmock.AnyArg()).
			WillReturnError(fmt.Errorf("db error"))

		err := r.UpdatePassword(ctx, "user-123", "Brand#New9pass")
		assert.Error(t, err)
	})
}

// TestUpdateLastLogin covers the last_login stamp.
func TestUpdateLastLogin(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewRepository(mock)
	at := time.Now()

	mock.ExpectExec("SET last_login").
		WithArgs("user-123", at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = r.UpdateLastLogin(context.Background(), "user-123", at)
	require.NoError(t, err)

	mock.ExpectExec("SET last_login").
		WithArgs("user-123", at).
		WillReturnError(fmt.Errorf("db error"))

	err = r.UpdateLastLogin(context.Background(), "user-123", at)
	require.Error(t, err)
}

// TestIncrementFailedAttempts covers the atomic counter bump.
func TestIncrementFailedAttempts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewRepository(mock)
	ctx := context.Background()

	t.Run("returns post-increment count", func(t *testing.T) {
		mock.ExpectQuery("RETURNING failed_attempts").
			WithArgs("user-123").
			WillReturnRows(pgxmock.NewRows([]string{"failed_attempts"}).AddRow(3))

		count, err := r.IncrementFailedAttempts(ctx, "user-123")
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectQuery("RETURNING failed_attempts").
			WithArgs("user-123").
			WillReturnError(fmt.Errorf("db error"))

		_, err := r.IncrementFailedAttempts(ctx, "user-123")
		assert.Error(t, err)
	})
}

// TestResetFailedAttempts covers the counter reset.
func TestResetFailedAttempts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewRepository(mock)

	mock.ExpectExec("SET failed_attempts = 0").
		WithArgs("user-123").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = r.ResetFailedAttempts(context.Background(), "user-123")
	require.NoError(t, err)
}

// TestCreateSession covers the session insert.
func TestCreateSession(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewRepository(mock)
	ctx := context.Background()
	now := time.Now()
	session := &domain.Session{
		ID:           "sess-1",
		UserID:       "user-123",
		AccessToken:  "access",
		RefreshToken: "refresh",
		IPAddress:    "203.0.113.8",
		UserAgent:    "go-test",
		ExpiresAt:    now.Add(24 * time.Hour),
		CreatedAt:    now,
		LastAccessed: now,
		IsActive:     true,
	}

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO sessions").
			WithArgs(session.ID, session.UserID, session.AccessToken, session.RefreshToken,
				session.IPAddress, session.UserAgent, session.ExpiresAt, session.CreatedAt,
				session.LastAccessed, session.IsActive).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := r.CreateSession(ctx, session)
		assert.NoError(t, err)
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO sessions").
			WithArgs(session.ID, session.UserID, session.AccessToken, session.RefreshToken,
				session.IPAddress, session.UserAgent, session.ExpiresAt, session.CreatedAt,
				session.LastAccessed, session.IsActive).
			WillReturnError(fmt.Errorf("db error"))

		err := r.CreateSession(ctx, session)
		assert.Error(t, err)
	})
}

// TestGetSessionByAccessToken covers the access-token lookup.
func TestGetSessionByAccessToken(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewRepository(mock)
	ctx := context.Background()
	now := time.Now()

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("WHERE access_token").
			WithArgs("access").
			WillReturnRows(pgxmock.NewRows(sessionColumns).
				AddRow("sess-1", "user-123", "access", "refresh", "203.0.113.8", "go-test",
					now.Add(24*time.Hour), now, now, true))

		session, err := r.GetSessionByAccessToken(ctx, "access")
		require.NoError(t, err)
		assert.Equal(t, "sess-1", session.ID)
		assert.True(t, session.IsActive)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("WHERE access_token").
			WithArgs("stale").
			WillReturnError(pgx.ErrNoRows)

		session, err := r.GetSessionByAccessToken(ctx, "stale")
		require.NoError(t, err)
		assert.Nil(t, session)
	})
}

// TestGetSessionByRefreshToken covers the refresh-token lookup.
func TestGetSessionByRefreshToken(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewRepository(mock)
	now := time.Now()

	mock.ExpectQuery("WHERE refresh_token").
		WithArgs("refresh").
		WillReturnRows(pgxmock.NewRows(sessionColumns).
			AddRow("sess-1", "user-123", "access", "refresh", "", "",
				now.Add(24*time.Hour), now, now, true))

	session, err := r.GetSessionByRefreshToken(context.Background(), "refresh")
	require.NoError(t, err)
	assert.Equal(t, "user-123", session.UserID)
}

// TestTouchSession covers the last_accessed stamp.
func TestTouchSession(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewRepository(mock)
	at := time.Now()

	mock.ExpectExec("SET last_accessed").
		WithArgs("sess-1", at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = r.TouchSession(context.Background(), "sess-1", at)
	require.NoError(t, err)
}

// TestInvalidateSession covers single-session deactivation.
func TestInvalidateSession(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewRepository(mock)

	mock.ExpectExec("SET is_active = FALSE").
		WithArgs("sess-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = r.InvalidateSession(context.Background(), "sess-1")
	require.NoError(t, err)

	mock.ExpectExec("SET is_active = FALSE").
		WithArgs("sess-1").
		WillReturnError(fmt.Errorf("db error"))

	err = r.InvalidateSession(context.Background(), "sess-1")
	require.Error(t, err)
}

// TestInvalidateUserSessions covers the everything-but-current sweep.
func TestInvalidateUserSessions(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewRepository(mock)

	mock.ExpectExec("UPDATE sessions").
		WithArgs("user-123", "sess-current").
		WillReturnResult(pgxmock.NewResult("UPDATE", 4))

	err = r.InvalidateUserSessions(context.Background(), "user-123", "sess-current")
	require.NoError(t, err)
}

// TestInvalidateOldestSession covers cap eviction.
func TestInvalidateOldestSession(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewRepository(mock)

	mock.ExpectExec("ORDER BY created_at ASC").
		WithArgs("user-123").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = r.InvalidateOldestSession(context.Background(), "user-123")
	require.NoError(t, err)
}

// TestCountActiveSessions covers the per-user session count.
func TestCountActiveSessions(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewRepository(mock)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(id\\)").
			WithArgs("user-123").
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))

		count, err := r.CountActiveSessions(ctx, "user-123")
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(id\\)").
			WithArgs("user-123").
			WillReturnError(fmt.Errorf("db error"))

		_, err := r.CountActiveSessions(ctx, "user-123")
		assert.Error(t, err)
	})
}

// TestGetActiveSessionsByUserID covers the session enumeration.
func TestGetActiveSessionsByUserID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewRepository(mock)
	ctx := context.Background()
	now := time.Now()

	t.Run("success", func(t *testing.T) {
		rows := pgxmock.NewRows(sessionColumns).
			AddRow("sess-2", "user-123", "a2", "r2", "203.0.113.9", "tablet",
				now.Add(24*time.Hour), now, now, true).
			AddRow("sess-1", "user-123", "a1", "r1", "203.0.113.8", "laptop",
				now.Add(24*time.Hour), now.Add(-time.Hour), now, true)

		mock.ExpectQuery("WHERE user_id").
			WithArgs("user-123").
			WillReturnRows(rows)

		sessions, err := r.GetActiveSessionsByUserID(ctx, "user-123")
		require.NoError(t, err)
		require.Len(t, sessions, 2)
		assert.Equal(t, "sess-2", sessions[0].ID)
		assert.Equal(t, "laptop", sessions[1].UserAgent)
	})

	t.Run("database error on row scan", func(t *testing.T) {
		// A type mismatch in the last column forces a scan error.
		rows := pgxmock.NewRows(sessionColumns).
			AddRow("sess-1", "user-123", "a1", "r1", "", "",
				now, now, now, "not-a-bool")

		mock.ExpectQuery("WHERE user_id").
			WithArgs("user-123").
			WillReturnRows(rows)

		sessions, err := r.GetActiveSessionsByUserID(ctx, "user-123")
		assert.Error(t, err)
		assert.Nil(t, sessions)
		assert.Contains(t, err.Error(), "failed to scan session row")
	})
}

// TestGetActiveLockout covers the lockout lookup.
func TestGetActiveLockout(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewRepository(mock)
	ctx := context.Background()
	columns := []string{"id", "user_id", "reason", "locked_until", "created_at", "is_active"}

	t.Run("success", func(t *testing.T) {
		until := time.Now().Add(15 * time.Minute)
		mock.ExpectQuery("FROM account_lockouts").
			WithArgs("user-123").
			WillReturnRows(pgxmock.NewRows(columns).
				AddRow("lock-1", "user-123", "too many failed login attempts", until, time.Now(), true))

		lock, err := r.GetActiveLockout(ctx, "user-123")
		require.NoError(t, err)
		assert.Equal(t, "lock-1", lock.ID)
		assert.WithinDuration(t, until, lock.LockedUntil, time.Second)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("FROM account_lockouts").
			WithArgs("user-123").
			WillReturnError(pgx.ErrNoRows)

		lock, err := r.GetActiveLockout(ctx, "user-123")
		require.NoError(t, err)
		assert.Nil(t, lock)
	})
}

// TestCreateLockout covers the lockout insert.
func TestCreateLockout(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewRepository(mock)
	now := time.Now()
	lock := &domain.AccountLockout{
		ID:          "lock-1",
		UserID:      "user-123",
		Reason:      "too many failed login attempts",
		LockedUntil: now.Add(15 * time.Minute),
		CreatedAt:   now,
		IsActive:    true,
	}

	mock.ExpectExec("INSERT INTO account_lockouts").
		WithArgs(lock.ID, lock.UserID, lock.Reason, lock.LockedUntil, lock.CreatedAt, lock.IsActive).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = r.CreateLockout(context.Background(), lock)
	require.NoError(t, err)
}

// TestDeactivateLockouts covers clearing lockouts after a success.
func TestDeactivateLockouts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewRepository(mock)

	mock.ExpectExec("UPDATE account_lockouts").
		WithArgs("user-123").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = r.DeactivateLockouts(context.Background(), "user-123")
	require.NoError(t, err)
}
