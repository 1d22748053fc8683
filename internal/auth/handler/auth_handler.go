package handler

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/quizmentor/auth-service/internal/auth/domain"
	"github.com/quizmentor/auth-service/internal/auth/dto"
	"github.com/quizmentor/auth-service/internal/auth/service"
	apperrors "github.com/quizmentor/auth-service/internal/errors"
	"github.com/quizmentor/auth-service/pkg/constant"
)

// Locals keys set by RequireSession for downstream handlers.
const (
	localSession = "auth_session"
	localUser    = "auth_user"
)

// CookieSettings controls the flags stamped on the token and CSRF cookies.
// Secure should only be disabled for local development over plain HTTP.
type CookieSettings struct {
	Secure        bool
	Domain        string
	AccessMaxAge  time.Duration
	RefreshMaxAge time.Duration
}

type AuthHandler struct {
	auth    *service.AuthService
	cookies CookieSettings
	logger  *zap.Logger
}

func NewAuthHandler(auth *service.AuthService, cookies CookieSettings, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AuthHandler{auth: auth, cookies: cookies, logger: logger}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input dto.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid input",
		})
	}

	// Capture metadata
	input.IPAddress = c.IP()
	input.UserAgent = string(c.Request().Header.UserAgent())

	resp, err := h.auth.Login(c.UserContext(), input)
	if err != nil {
		return h.renderError(c, err)
	}

	h.setAuthCookies(c, resp.Tokens, resp.CSRFToken)

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var input dto.RefreshInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
		}
	}

	// Cookie fallback lets browser clients refresh without echoing the
	// token in the body.
	if input.RefreshToken == "" {
		input.RefreshToken = c.Cookies(constant.RefreshTokenCookie)
	}

	if input.RefreshToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing refresh token"})
	}

	input.IPAddress = c.IP()
	input.UserAgent = string(c.Request().Header.UserAgent())

	resp, err := h.auth.Refresh(c.UserContext(), input)
	if err != nil {
		return h.renderError(c, err)
	}

	h.setAuthCookies(c, resp.Tokens, resp.CSRFToken)

	return c.Status(fiber.StatusOK).JSON(resp)
}

// Validate reports whether the presented access token still maps to a live
// session. Failures answer 200 with valid=false rather than an error so
// frontends can poll it cheaply.
func (h *AuthHandler) Validate(c *fiber.Ctx) error {
	token := h.requestToken(c)
	if token == "" {
		return c.Status(fiber.StatusOK).JSON(dto.ValidateResponse{Valid: false})
	}

	resp, _, err := h.auth.ValidateSession(c.UserContext(), token, c.IP(), string(c.Request().Header.UserAgent()))
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindInternal {
			return h.renderError(c, err)
		}

		return c.Status(fiber.StatusOK).JSON(dto.ValidateResponse{Valid: false})
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token := h.requestToken(c)
	if token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing access token"})
	}

	if err := h.auth.Logout(c.UserContext(), token, c.IP(), string(c.Request().Header.UserAgent())); err != nil {
		return h.renderError(c, err)
	}

	h.clearAuthCookies(c)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "logged out"})
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	sess := sessionFromLocals(c)
	if sess == nil {
		return h.renderError(c, apperrors.ErrSessionExpired)
	}

	var input dto.ChangePasswordInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	input.IPAddress = c.IP()
	input.UserAgent = string(c.Request().Header.UserAgent())

	if err := h.auth.ChangePassword(c.UserContext(), sess.UserID, sess.ID, input); err != nil {
		return h.renderError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "password changed"})
}

// Sessions lists the caller's live sessions so they can spot and revoke
// logins they do not recognize.
func (h *AuthHandler) Sessions(c *fiber.Ctx) error {
	sess := sessionFromLocals(c)
	if sess == nil {
		return h.renderError(c, apperrors.ErrSessionExpired)
	}

	active, err := h.auth.ActiveSessions(c.UserContext(), sess.UserID)
	if err != nil {
		return h.renderError(c, err)
	}

	out := make([]dto.SessionOutput, 0, len(active))
	for _, s := range active {
		out = append(out, dto.SessionOutput{
			ID:        s.ID,
			IPAddress: s.IPAddress,
			UserAgent: s.UserAgent,
			CreatedAt: s.CreatedAt,
			ExpiresAt: s.ExpiresAt,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"sessions": out, "current": sess.ID})
}

func (h *AuthHandler) RevokeSession(c *fiber.Ctx) error {
	sess := sessionFromLocals(c)
	if sess == nil {
		return h.renderError(c, apperrors.ErrSessionExpired)
	}

	target := c.Params("id")
	if target == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing session id"})
	}

	err := h.auth.RevokeSession(c.UserContext(), sess.UserID, target, c.IP(), string(c.Request().Header.UserAgent()))
	if err != nil {
		return h.renderError(c, err)
	}

	if target == sess.ID {
		h.clearAuthCookies(c)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "session revoked"})
}

func (h *AuthHandler) Health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
}

// requestToken pulls the access token from the Authorization header, falling
// back to the cookie for browser clients.
func (h *AuthHandler) requestToken(c *fiber.Ctx) string {
	const bearer = "Bearer "

	header := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(header, bearer) && len(header) > len(bearer) {
		return header[len(bearer):]
	}

	return c.Cookies(constant.AccessTokenCookie)
}

func (h *AuthHandler) setAuthCookies(c *fiber.Ctx, tokens *dto.TokenResponse, csrfToken string) {
	c.Cookie(&fiber.Cookie{
		Name:     constant.AccessTokenCookie,
		Value:    tokens.AccessToken,
		Domain:   h.cookies.Domain,
		MaxAge:   int(h.cookies.AccessMaxAge.Seconds()),
		Secure:   h.cookies.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
	c.Cookie(&fiber.Cookie{
		Name:     constant.RefreshTokenCookie,
		Value:    tokens.RefreshToken,
		Domain:   h.cookies.Domain,
		MaxAge:   int(h.cookies.RefreshMaxAge.Seconds()),
		Secure:   h.cookies.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
	// Readable by scripts. The double-submit check needs the frontend to
	// echo this value in the X-CSRF-Token header.
	c.Cookie(&fiber.Cookie{
		Name:     constant.CSRFTokenCookie,
		Value:    csrfToken,
		Domain:   h.cookies.Domain,
		MaxAge:   int(h.cookies.RefreshMaxAge.Seconds()),
		Secure:   h.cookies.Secure,
		HTTPOnly: false,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

func (h *AuthHandler) clearAuthCookies(c *fiber.Ctx) {
	// A past Expires is the deletion signal; clients drop the cookie on
	// receipt.
	expired := time.Now().Add(-time.Hour)
	for _, name := range []string{constant.AccessTokenCookie, constant.RefreshTokenCookie, constant.CSRFTokenCookie} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Domain:   h.cookies.Domain,
			Expires:  expired,
			Secure:   h.cookies.Secure,
			HTTPOnly: name != constant.CSRFTokenCookie,
			SameSite: fiber.CookieSameSiteStrictMode,
		})
	}
}

// renderError is the single place error kinds turn into HTTP statuses.
func (h *AuthHandler) renderError(c *fiber.Ctx, err error) error {
	var rle *apperrors.RateLimitError
	if errors.As(err, &rle) {
		c.Set(fiber.HeaderRetryAfter, retryAfterSeconds(rle.RetryAfter))
		c.Set("X-RateLimit-Remaining", "0")

		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": "too many requests",
		})
	}

	var wpe *apperrors.WeakPasswordError
	if errors.As(err, &wpe) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":    "password does not meet policy",
			"feedback": wpe.Feedback,
		})
	}

	kind := apperrors.KindOf(err)

	var status int

	switch kind {
	case apperrors.KindInvalidCredentials, apperrors.KindInvalidToken, apperrors.KindSessionExpired:
		status = fiber.StatusUnauthorized
	case apperrors.KindAccountLocked:
		status = fiber.StatusLocked
	case apperrors.KindAccountInactive, apperrors.KindCSRFInvalid:
		status = fiber.StatusForbidden
	case apperrors.KindRateLimited:
		status = fiber.StatusTooManyRequests
	case apperrors.KindWeakPassword:
		status = fiber.StatusUnprocessableEntity
	default:
		status = fiber.StatusInternalServerError
	}

	if status == fiber.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err), zap.String("path", c.Path()))

		return c.Status(status).JSON(fiber.Map{"error": "internal error"})
	}

	return c.Status(status).JSON(fiber.Map{"error": publicMessage(err)})
}

// publicMessage returns the sanitized message of a tagged error. Wrapped
// causes never reach the response body.
func publicMessage(err error) string {
	var e *apperrors.Error
	if errors.As(err, &e) {
		return e.Message
	}

	return "request failed"
}

func retryAfterSeconds(d time.Duration) string {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}

	return strconv.Itoa(secs)
}

func sessionFromLocals(c *fiber.Ctx) *domain.Session {
	sess, _ := c.Locals(localSession).(*domain.Session)
	return sess
}

// UserFromLocals exposes the authenticated user to handlers mounted behind
// RequireSession outside this package.
func UserFromLocals(c *fiber.Ctx) *dto.UserOutput {
	user, _ := c.Locals(localUser).(*dto.UserOutput)
	return user
}
