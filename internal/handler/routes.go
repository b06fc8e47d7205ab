package handler

import (
	"github.com/gofiber/fiber/v2"
)

func SetupRoutes(
	app *fiber.App,
	oauthHandler *OAuthHandler,
	healthHandler *HealthHandler,
) {
	// Health checks
	app.Get("/health", healthHandler.Health)
	app.Get("/ready", healthHandler.Ready)

	// OAuth protocol endpoints
	app.Get("/authorize", oauthHandler.Authorize)
	app.Post("/approve", oauthHandler.Approve)
	app.Post("/token", oauthHandler.Token)
	app.Post("/introspect", oauthHandler.Introspect)
}
