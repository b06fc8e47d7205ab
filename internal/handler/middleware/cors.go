package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/andressep95/authz-server/internal/config"
)

// CORSMiddleware configures and returns CORS middleware
func CORSMiddleware(cfg *config.Config) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowMethods: "GET,POST",
		AllowHeaders: "Content-Type,Authorization",
	})
}
