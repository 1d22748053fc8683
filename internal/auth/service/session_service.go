package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quizmentor/auth-service/internal/auth/domain"
	apperrors "github.com/quizmentor/auth-service/internal/errors"
)

// SessionService owns the session lifecycle: creation with a per-user cap,
// fail-closed validation, rotation on refresh, and idempotent invalidation.
type SessionService struct {
	repo        domain.UserRepository
	tokens      TokenGenerator
	logger      *zap.Logger
	maxSessions int
	now         func() time.Time
}

func NewSessionService(repo domain.UserRepository, tokens TokenGenerator, logger *zap.Logger, maxSessions int) *SessionService {
	return &SessionService{
		repo:        repo,
		tokens:      tokens,
		logger:      logger,
		maxSessions: maxSessions,
		now:         time.Now,
	}
}

// Create issues a token pair and persists the session row. When the user is
// at the session cap, the oldest active session is evicted first.
func (s *SessionService) Create(ctx context.Context, user *domain.User, ip, userAgent string) (*domain.Session, string, string, error) {
	accessToken, refreshToken, _, err := s.tokens.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", "", apperrors.Internal(err)
	}

	if s.maxSessions > 0 {
		count, err := s.repo.CountActiveSessions(ctx, user.ID)
		if err != nil {
			return nil, "", "", apperrors.Internal(err)
		}
		if count >= s.maxSessions {
			if err := s.repo.InvalidateOldestSession(ctx, user.ID); err != nil {
				return nil, "", "", apperrors.Internal(err)
			}
		}
	}

	now := s.now()
	session := &domain.Session{
		ID:           uuid.New().String(),
		UserID:       user.ID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		IPAddress:    ip,
		UserAgent:    userAgent,
		ExpiresAt:    now.Add(s.tokens.GetRefreshTokenExpiry()),
		CreatedAt:    now,
		LastAccessed: now,
		IsActive:     true,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, "", "", apperrors.Internal(err)
	}

	return session, accessToken, refreshToken, nil
}

// Validate checks the access token signature and the stored session state,
// failing closed on either. The last-accessed stamp is updated best-effort;
// a failed touch never fails the validation itself.
func (s *SessionService) Validate(ctx context.Context, accessToken string) (*domain.Session, *JWTCustomClaims, error) {
	claims, err := s.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, nil, err
	}

	session, err := s.repo.GetSessionByAccessToken(ctx, accessToken)
	if err != nil {
		return nil, nil, apperrors.Internal(err)
	}
	if session == nil || !session.IsActive || s.now().After(session.ExpiresAt) {
		return nil, nil, apperrors.ErrSessionExpired
	}

	if err := s.repo.TouchSession(ctx, session.ID, s.now()); err != nil {
		s.logger.Warn("failed to update session last_accessed",
			zap.String("session_id", session.ID),
			zap.Error(err),
		)
	}

	return session, claims, nil
}

// Refresh rotates the session: a new session and token pair are created and
// only then is the old session invalidated. If invalidation fails the old
// session stays usable rather than leaving the user with no session at all.
func (s *SessionService) Refresh(ctx context.Context, refreshToken, ip, userAgent string) (*domain.Session, string, string, *domain.User, error) {
	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, "", "", nil, err
	}

	old, err := s.repo.GetSessionByRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, "", "", nil, apperrors.Internal(err)
	}
	if old == nil || !old.IsActive || s.now().After(old.ExpiresAt) {
		return nil, "", "", nil, apperrors.ErrSessionExpired
	}
	if old.UserID != claims.UserID {
		return nil, "", "", nil, apperrors.ErrInvalidToken
	}

	user, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, "", "", nil, apperrors.Internal(err)
	}
	if user == nil {
		return nil, "", "", nil, apperrors.ErrInvalidToken
	}
	if !user.IsActive() {
		return nil, "", "", nil, apperrors.Inactive(user.AccountStatus)
	}

	session, accessToken, newRefreshToken, err := s.Create(ctx, user, ip, userAgent)
	if err != nil {
		return nil, "", "", nil, err
	}

	if err := s.repo.InvalidateSession(ctx, old.ID); err != nil {
		s.logger.Error("failed to invalidate rotated session",
			zap.String("session_id", old.ID),
			zap.Error(err),
		)
	}

	return session, accessToken, newRefreshToken, user, nil
}

// Invalidate ends the session holding the access token. A missing or
// already-inactive session is treated as logged out, not as an error.
func (s *SessionService) Invalidate(ctx context.Context, accessToken string) (*domain.Session, error) {
	session, err := s.repo.GetSessionByAccessToken(ctx, accessToken)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if session == nil {
		return nil, nil
	}

	if err := s.repo.InvalidateSession(ctx, session.ID); err != nil {
		return nil, apperrors.Internal(err)
	}
	return session, nil
}

// InvalidateByID ends a single session by id.
func (s *SessionService) InvalidateByID(ctx context.Context, sessionID string) error {
	if err := s.repo.InvalidateSession(ctx, sessionID); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// InvalidateAll ends every active session for the user except the one given.
// Pass an empty exceptSessionID to end them all.
func (s *SessionService) InvalidateAll(ctx context.Context, userID, exceptSessionID string) error {
	if err := s.repo.InvalidateUserSessions(ctx, userID, exceptSessionID); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// ActiveSessions lists the user's live sessions for the account security
// page.
func (s *SessionService) ActiveSessions(ctx context.Context, userID string) ([]domain.Session, error) {
	sessions, err := s.repo.GetActiveSessionsByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return sessions, nil
}
