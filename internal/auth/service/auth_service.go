package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/quizmentor/auth-service/internal/audit"
	"github.com/quizmentor/auth-service/internal/auth/csrf"
	"github.com/quizmentor/auth-service/internal/auth/domain"
	"github.com/quizmentor/auth-service/internal/auth/dto"
	"github.com/quizmentor/auth-service/internal/auth/lockout"
	"github.com/quizmentor/auth-service/internal/auth/password"
	"github.com/quizmentor/auth-service/internal/auth/ratelimit"
	apperrors "github.com/quizmentor/auth-service/internal/errors"
	"github.com/quizmentor/auth-service/internal/metrics"
	authconstant "github.com/quizmentor/auth-service/pkg/constant"
)

// AuthService orchestrates the login, logout, refresh, validate and
// password-change flows across the token, session, lockout, rate-limit and
// CSRF components. Each flow emits exactly one audit event per outcome.
type AuthService struct {
	repo      domain.UserRepository
	tokens    TokenGenerator
	sessions  *SessionService
	guard     *lockout.Guard
	limiter   ratelimit.Limiter
	csrf      *csrf.Store
	passwords *password.Validator
	events    *audit.Dispatcher
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// AuthServiceDeps lists the collaborators AuthService needs. Metrics and
// Logger default to inert instances when nil; everything else is required.
type AuthServiceDeps struct {
	Repo      domain.UserRepository
	Tokens    TokenGenerator
	Sessions  *SessionService
	Guard     *lockout.Guard
	Limiter   ratelimit.Limiter
	CSRF      *csrf.Store
	Passwords *password.Validator
	Events    *audit.Dispatcher
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

func NewAuthService(deps AuthServiceDeps) *AuthService {
	if deps.Metrics == nil {
		deps.Metrics = metrics.New(nil)
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &AuthService{
		repo:      deps.Repo,
		tokens:    deps.Tokens,
		sessions:  deps.Sessions,
		guard:     deps.Guard,
		limiter:   deps.Limiter,
		csrf:      deps.CSRF,
		passwords: deps.Passwords,
		events:    deps.Events,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
	}
}

// Login runs the full authentication state machine. Failures fold into the
// tagged error taxonomy; user-not-found and wrong-password are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, input dto.LoginInput) (*dto.LoginResponse, error) {
	identifier := strings.ToLower(strings.TrimSpace(input.Identifier))

	// Step 1: rate limit by client IP and by identifier, before any store
	// access.
	if err := s.checkLoginLimit(ctx, input, identifier); err != nil {
		return nil, err
	}

	// Step 2: lookup. A miss burns the same failure class as a wrong
	// password.
	user, err := s.lookupUser(ctx, identifier)
	if err != nil {
		return nil, s.loginInternal(ctx, "user lookup", err, "", input)
	}
	if user == nil {
		s.loginFailure(audit.Event{
			EventType: audit.EventLoginFailure,
			RiskLevel: audit.RiskLow,
			IPAddress: input.IPAddress,
			UserAgent: input.UserAgent,
			Detail:    "unknown identifier",
		}, metrics.ResultInvalidCredentials)
		return nil, apperrors.ErrInvalidCredentials
	}

	// Step 3: account status, before lockout. A suspended account's lock
	// state is irrelevant.
	if !user.IsActive() {
		s.loginFailure(audit.Event{
			UserID:    user.ID,
			EventType: audit.EventLoginFailure,
			RiskLevel: audit.RiskLow,
			IPAddress: input.IPAddress,
			UserAgent: input.UserAgent,
			Detail:    "account " + user.AccountStatus,
		}, metrics.ResultInactive)
		return nil, apperrors.Inactive(user.AccountStatus)
	}

	// Step 4: lockout. An attempt against a locked account is suspicious
	// in itself; the counter is already maxed, so it is not incremented.
	lock, err := s.guard.IsLocked(ctx, user.ID)
	if err != nil {
		return nil, s.loginInternal(ctx, "lockout check", err, user.ID, input)
	}
	if lock != nil {
		s.loginFailure(audit.Event{
			UserID:    user.ID,
			EventType: audit.EventLoginFailure,
			RiskLevel: audit.RiskHigh,
			IPAddress: input.IPAddress,
			UserAgent: input.UserAgent,
			Detail:    "attempt while account locked",
		}, metrics.ResultLocked)
		return nil, apperrors.ErrAccountLocked
	}

	// Step 5: password.
	ok, err := s.repo.VerifyPassword(ctx, user.ID, input.Password)
	if err != nil {
		return nil, s.loginInternal(ctx, "password verification", err, user.ID, input)
	}
	if !ok {
		locked, err := s.guard.RecordFailure(ctx, user.ID, input.IPAddress, input.UserAgent)
		if err != nil {
			return nil, s.loginInternal(ctx, "failure recording", err, user.ID, input)
		}
		if locked {
			// The lock transition already emitted its own event.
			s.metrics.LockoutsStarted.Inc()
			s.metrics.LoginAttempts.WithLabelValues(metrics.ResultInvalidCredentials).Inc()
		} else {
			s.loginFailure(audit.Event{
				UserID:    user.ID,
				EventType: audit.EventLoginFailure,
				RiskLevel: audit.RiskLow,
				IPAddress: input.IPAddress,
				UserAgent: input.UserAgent,
				Detail:    "wrong password",
			}, metrics.ResultInvalidCredentials)
		}
		return nil, apperrors.ErrInvalidCredentials
	}

	// An optional expected role must match, but a mismatch must not reveal
	// that the credentials were otherwise correct.
	if input.Role != "" && user.Role != input.Role {
		s.loginFailure(audit.Event{
			UserID:    user.ID,
			EventType: audit.EventLoginFailure,
			RiskLevel: audit.RiskLow,
			IPAddress: input.IPAddress,
			UserAgent: input.UserAgent,
			Detail:    "role mismatch",
		}, metrics.ResultInvalidCredentials)
		return nil, apperrors.ErrInvalidCredentials
	}

	// Step 6: success. Clear counters, stamp last_login, open the session.
	if err := s.guard.RecordSuccess(ctx, user.ID); err != nil {
		return nil, s.loginInternal(ctx, "success recording", err, user.ID, input)
	}
	if err := s.repo.UpdateLastLogin(ctx, user.ID, time.Now()); err != nil {
		s.logger.Warn("failed to update last_login", zap.String("user_id", user.ID), zap.Error(err))
	}
	if err := s.limiter.Reset(ctx, authconstant.PurposeLogin, "id:"+identifier); err != nil {
		s.logger.Warn("failed to reset login limiter", zap.Error(err))
	}

	session, accessToken, refreshToken, err := s.sessions.Create(ctx, user, input.IPAddress, input.UserAgent)
	if err != nil {
		return nil, s.loginInternal(ctx, "session creation", err, user.ID, input)
	}

	csrfToken, err := s.csrf.Issue(session.ID)
	if err != nil {
		return nil, s.loginInternal(ctx, "csrf issuance", err, user.ID, input)
	}

	s.events.Record(audit.Event{
		UserID:    user.ID,
		EventType: audit.EventLoginSuccess,
		RiskLevel: audit.RiskLow,
		Success:   true,
		IPAddress: input.IPAddress,
		UserAgent: input.UserAgent,
	})
	s.metrics.LoginAttempts.WithLabelValues(metrics.ResultSuccess).Inc()

	return &dto.LoginResponse{
		User:      dto.NewUserOutput(user),
		Tokens:    s.tokenResponse(accessToken, refreshToken),
		CSRFToken: csrfToken,
	}, nil
}

// Logout invalidates the session behind the access token. An unknown or
// already-dead session is treated as logged out.
func (s *AuthService) Logout(ctx context.Context, accessToken, ip, userAgent string) error {
	session, err := s.sessions.Invalidate(ctx, accessToken)
	if err != nil {
		s.logger.Error("logout failed", zap.Error(err))
		s.events.Record(audit.Event{
			EventType: audit.EventInternalError,
			RiskLevel: audit.RiskHigh,
			IPAddress: ip,
			UserAgent: userAgent,
			Detail:    "logout",
		})
		return err
	}

	event := audit.Event{
		EventType: audit.EventLogout,
		RiskLevel: audit.RiskLow,
		Success:   true,
		IPAddress: ip,
		UserAgent: userAgent,
	}
	if session != nil {
		event.UserID = session.UserID
		s.csrf.Revoke(session.ID)
	}
	s.events.Record(event)

	return nil
}

// ValidateSession verifies the access token and the stored session, then
// re-reads the user so a status change since login still locks the caller
// out. Only failures are audited; successes are counted in metrics alone.
func (s *AuthService) ValidateSession(ctx context.Context, accessToken, ip, userAgent string) (*dto.ValidateResponse, *domain.Session, error) {
	session, claims, err := s.sessions.Validate(ctx, accessToken)
	if err != nil {
		return nil, nil, s.validateFailure(ctx, err, ip, userAgent)
	}

	user, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, nil, s.validateFailure(ctx, apperrors.Internal(err), ip, userAgent)
	}
	if user == nil || !user.IsActive() {
		return nil, nil, s.validateFailure(ctx, apperrors.ErrSessionExpired, ip, userAgent)
	}

	s.metrics.TokenVerifications.WithLabelValues(metrics.ResultSuccess).Inc()

	return &dto.ValidateResponse{Valid: true, User: dto.NewUserOutput(user)}, session, nil
}

// Refresh rotates the caller's session and reissues the CSRF token for the
// new session id.
func (s *AuthService) Refresh(ctx context.Context, input dto.RefreshInput) (*dto.LoginResponse, error) {
	session, accessToken, refreshToken, user, err := s.sessions.Refresh(ctx, input.RefreshToken, input.IPAddress, input.UserAgent)
	if err != nil {
		return nil, s.refreshFailure(ctx, err, input)
	}

	csrfToken, err := s.csrf.Issue(session.ID)
	if err != nil {
		return nil, s.refreshFailure(ctx, apperrors.Internal(err), input)
	}

	s.events.Record(audit.Event{
		UserID:    user.ID,
		EventType: audit.EventTokenRefresh,
		RiskLevel: audit.RiskLow,
		Success:   true,
		IPAddress: input.IPAddress,
		UserAgent: input.UserAgent,
	})
	s.metrics.SessionRefreshes.WithLabelValues(metrics.ResultSuccess).Inc()

	return &dto.LoginResponse{
		User:      dto.NewUserOutput(user),
		Tokens:    s.tokenResponse(accessToken, refreshToken),
		CSRFToken: csrfToken,
	}, nil
}

// ChangePassword verifies the current password, applies the strength policy
// with the user's own identifiers blocked, stores the new hash and ends
// every other session for the account.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentSessionID string, input dto.ChangePasswordInput) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return s.changeInternal(ctx, "user lookup", err, userID, input)
	}
	if user == nil {
		return apperrors.ErrInvalidCredentials
	}

	ok, err := s.repo.VerifyPassword(ctx, userID, input.CurrentPassword)
	if err != nil {
		return s.changeInternal(ctx, "password verification", err, userID, input)
	}
	if !ok {
		s.events.Record(audit.Event{
			UserID:    userID,
			EventType: audit.EventPasswordChange,
			RiskLevel: audit.RiskLow,
			IPAddress: input.IPAddress,
			UserAgent: input.UserAgent,
			Detail:    "wrong current password",
		})
		return apperrors.ErrInvalidCredentials
	}

	result := s.passwords.Validate(input.NewPassword, &password.UserInfo{
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
	if !result.Valid {
		s.events.Record(audit.Event{
			UserID:    userID,
			EventType: audit.EventPasswordChange,
			RiskLevel: audit.RiskLow,
			IPAddress: input.IPAddress,
			UserAgent: input.UserAgent,
			Detail:    "rejected by password policy",
		})
		return &apperrors.WeakPasswordError{Feedback: result.Feedback}
	}

	if err := s.repo.UpdatePassword(ctx, userID, input.NewPassword); err != nil {
		return s.changeInternal(ctx, "password update", err, userID, input)
	}
	if err := s.guard.RecordSuccess(ctx, userID); err != nil {
		return s.changeInternal(ctx, "counter reset", err, userID, input)
	}
	if err := s.sessions.InvalidateAll(ctx, userID, currentSessionID); err != nil {
		return s.changeInternal(ctx, "session invalidation", err, userID, input)
	}

	s.events.Record(audit.Event{
		UserID:    userID,
		EventType: audit.EventPasswordChange,
		RiskLevel: audit.RiskMedium,
		Success:   true,
		IPAddress: input.IPAddress,
		UserAgent: input.UserAgent,
	})

	return nil
}

// ActiveSessions lists the user's live sessions.
func (s *AuthService) ActiveSessions(ctx context.Context, userID string) ([]domain.Session, error) {
	return s.sessions.ActiveSessions(ctx, userID)
}

// RevokeSession ends one of the user's sessions by id, for the account
// security page. The session must belong to the user.
func (s *AuthService) RevokeSession(ctx context.Context, userID, sessionID, ip, userAgent string) error {
	sessions, err := s.sessions.ActiveSessions(ctx, userID)
	if err != nil {
		return err
	}
	for _, session := range sessions {
		if session.ID == sessionID {
			if err := s.sessions.InvalidateByID(ctx, sessionID); err != nil {
				return err
			}
			s.csrf.Revoke(sessionID)
			s.events.Record(audit.Event{
				UserID:    userID,
				EventType: audit.EventLogout,
				RiskLevel: audit.RiskLow,
				Success:   true,
				IPAddress: ip,
				UserAgent: userAgent,
				Detail:    "session revoked",
			})
			return nil
		}
	}
	return apperrors.ErrSessionExpired
}

// ValidateCSRF checks the echoed token for the session and audits a failure.
func (s *AuthService) ValidateCSRF(sessionID, token, ip, userAgent string) error {
	if s.csrf.Validate(sessionID, token) {
		return nil
	}
	s.events.Record(audit.Event{
		EventType: audit.EventSessionInvalid,
		RiskLevel: audit.RiskMedium,
		IPAddress: ip,
		UserAgent: userAgent,
		Detail:    "csrf validation failed",
	})
	return apperrors.ErrCSRFInvalid
}

func (s *AuthService) checkLoginLimit(ctx context.Context, input dto.LoginInput, identifier string) error {
	keys := []string{"ip:" + input.IPAddress, "id:" + identifier}
	for _, key := range keys {
		result, err := s.limiter.Check(ctx, authconstant.PurposeLogin, key)
		if err != nil {
			return s.loginInternal(ctx, "rate limit check", err, "", input)
		}
		if !result.Allowed {
			s.events.Record(audit.Event{
				EventType: audit.EventRateLimitExceeded,
				RiskLevel: audit.RiskMedium,
				IPAddress: input.IPAddress,
				UserAgent: input.UserAgent,
				Detail:    "login throttled",
			})
			s.metrics.RateLimitRejects.WithLabelValues(authconstant.PurposeLogin).Inc()
			s.metrics.LoginAttempts.WithLabelValues(metrics.ResultRateLimited).Inc()
			return rateLimitError(result)
		}
	}
	return nil
}

func (s *AuthService) lookupUser(ctx context.Context, identifier string) (*domain.User, error) {
	if strings.Contains(identifier, "@") {
		return s.repo.GetByEmail(ctx, identifier)
	}
	return s.repo.GetByUsername(ctx, identifier)
}

func (s *AuthService) tokenResponse(accessToken, refreshToken string) *dto.TokenResponse {
	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    authconstant.DefaultTokenType,
		ExpiresIn:    int(s.tokens.GetAccessTokenExpiry().Seconds()),
	}
}

// loginFailure emits the single audit event and outcome metric for one
// failed login path.
func (s *AuthService) loginFailure(event audit.Event, result string) {
	event.Success = false
	s.events.Record(event)
	s.metrics.LoginAttempts.WithLabelValues(result).Inc()
}

// loginInternal logs an adapter failure with full detail and surfaces a
// generic internal error.
func (s *AuthService) loginInternal(_ context.Context, op string, err error, userID string, input dto.LoginInput) error {
	s.logger.Error("login "+op+" failed", zap.Error(err), zap.String("user_id", userID))
	s.events.Record(audit.Event{
		UserID:    userID,
		EventType: audit.EventInternalError,
		RiskLevel: audit.RiskHigh,
		IPAddress: input.IPAddress,
		UserAgent: input.UserAgent,
		Detail:    "login " + op,
	})
	s.metrics.LoginAttempts.WithLabelValues(metrics.ResultError).Inc()
	return apperrors.Internal(err)
}

func (s *AuthService) validateFailure(_ context.Context, err error, ip, userAgent string) error {
	kind := apperrors.KindOf(err)
	if kind == apperrors.KindInternal {
		s.logger.Error("session validation failed", zap.Error(err))
		s.events.Record(audit.Event{
			EventType: audit.EventInternalError,
			RiskLevel: audit.RiskHigh,
			IPAddress: ip,
			UserAgent: userAgent,
			Detail:    "session validation",
		})
		s.metrics.TokenVerifications.WithLabelValues(metrics.ResultError).Inc()
		return err
	}

	s.events.Record(audit.Event{
		EventType: audit.EventSessionInvalid,
		RiskLevel: audit.RiskLow,
		IPAddress: ip,
		UserAgent: userAgent,
		Detail:    string(kind),
	})
	s.metrics.TokenVerifications.WithLabelValues(resultForKind(kind)).Inc()
	return err
}

func (s *AuthService) refreshFailure(_ context.Context, err error, input dto.RefreshInput) error {
	kind := apperrors.KindOf(err)
	if kind == apperrors.KindInternal {
		s.logger.Error("session refresh failed", zap.Error(err))
		s.events.Record(audit.Event{
			EventType: audit.EventInternalError,
			RiskLevel: audit.RiskHigh,
			IPAddress: input.IPAddress,
			UserAgent: input.UserAgent,
			Detail:    "session refresh",
		})
		s.metrics.SessionRefreshes.WithLabelValues(metrics.ResultError).Inc()
		return err
	}

	s.events.Record(audit.Event{
		EventType: audit.EventTokenRefresh,
		RiskLevel: audit.RiskLow,
		IPAddress: input.IPAddress,
		UserAgent: input.UserAgent,
		Detail:    string(kind),
	})
	s.metrics.SessionRefreshes.WithLabelValues(resultForKind(kind)).Inc()
	return err
}

func (s *AuthService) changeInternal(_ context.Context, op string, err error, userID string, input dto.ChangePasswordInput) error {
	s.logger.Error("password change "+op+" failed", zap.Error(err), zap.String("user_id", userID))
	s.events.Record(audit.Event{
		UserID:    userID,
		EventType: audit.EventInternalError,
		RiskLevel: audit.RiskHigh,
		IPAddress: input.IPAddress,
		UserAgent: input.UserAgent,
		Detail:    "password change " + op,
	})
	return apperrors.Internal(err)
}

func rateLimitError(result ratelimit.Result) *apperrors.RateLimitError {
	retryAt := result.ResetAt
	if !result.BlockedUntil.IsZero() {
		retryAt = result.BlockedUntil
	}
	return &apperrors.RateLimitError{
		Remaining:  result.Remaining,
		ResetAt:    result.ResetAt,
		RetryAfter: time.Until(retryAt),
	}
}

func resultForKind(kind apperrors.Kind) string {
	switch kind {
	case apperrors.KindSessionExpired:
		return metrics.ResultExpired
	case apperrors.KindAccountInactive:
		return metrics.ResultInactive
	default:
		return metrics.ResultInvalidToken
	}
}
