package handler

import (
	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(app *fiber.App, h *AuthHandler) {
	app.Get("/healthz", h.Health)

	v1 := app.Group("/api/v1")
	v1.Post("/login", h.Login)
	v1.Post("/refresh", h.Refresh)
	v1.Get("/session", h.Validate)
	v1.Delete("/session", h.Logout)

	// Authenticated surface. State-changing routes additionally pass the
	// CSRF double-submit check.
	protected := v1.Group("", h.RequireSession)
	protected.Get("/sessions", h.Sessions)

	mutating := protected.Group("", h.RequireCSRF)
	mutating.Post("/password", h.ChangePassword)
	mutating.Delete("/sessions/:id", h.RevokeSession)
}
