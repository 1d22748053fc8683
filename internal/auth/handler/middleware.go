package handler

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/quizmentor/auth-service/internal/auth/ratelimit"
	apperrors "github.com/quizmentor/auth-service/internal/errors"
	"github.com/quizmentor/auth-service/internal/metrics"
	"github.com/quizmentor/auth-service/pkg/constant"
)

// RequireSession authenticates the request and stashes the session and user
// output in locals. Rejections are uniform 401s so callers cannot probe which
// check failed.
func (h *AuthHandler) RequireSession(c *fiber.Ctx) error {
	token := h.requestToken(c)
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing access token"})
	}

	resp, sess, err := h.auth.ValidateSession(c.UserContext(), token, c.IP(), string(c.Request().Header.UserAgent()))
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindInternal {
			return h.renderError(c, err)
		}

		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or expired session"})
	}

	c.Locals(localSession, sess)
	c.Locals(localUser, resp.User)

	return c.Next()
}

// RequireCSRF enforces the double-submit check on state-changing routes. It
// must be mounted behind RequireSession because tokens are bound per session.
func (h *AuthHandler) RequireCSRF(c *fiber.Ctx) error {
	sess := sessionFromLocals(c)
	if sess == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing session"})
	}

	token := c.Get(constant.CSRFHeader)

	err := h.auth.ValidateCSRF(sess.ID, token, c.IP(), string(c.Request().Header.UserAgent()))
	if err != nil {
		return h.renderError(c, err)
	}

	return c.Next()
}

// Throttle applies a limiter to everything passing through, keyed by client
// IP. It guards the general API surface; login carries its own stricter keys
// inside the service.
func Throttle(limiter ratelimit.Limiter, purpose string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := limiter.Check(c.UserContext(), purpose, "ip:"+c.IP())
		if err != nil {
			// A limiter backend error rejects the request; the limit never
			// fails open.
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
		}

		if !result.Allowed {
			retry := time.Until(result.ResetAt)
			if !result.BlockedUntil.IsZero() {
				retry = time.Until(result.BlockedUntil)
			}
			c.Set(fiber.HeaderRetryAfter, retryAfterSeconds(retry))
			c.Set("X-RateLimit-Remaining", "0")

			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many requests"})
		}

		c.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

		return c.Next()
	}
}

// RequestMetrics records the duration of every request. The route label is
// the registered pattern, not the raw path; raw paths are unbounded.
func RequestMetrics(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		m.RequestDuration.WithLabelValues(c.Method(), c.Route().Path, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())

		return err
	}
}
