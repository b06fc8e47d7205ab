package middleware

import (
	"log"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
)

// RecoveryMiddleware turns panics into a generic server_error response.
// The panic value never reaches the client; OAuth callers only see the
// protocol-level error code.
func RecoveryMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[HTTP] PANIC: %v\n%s", r, debug.Stack())

				if err := c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "server_error",
				}); err != nil {
					log.Printf("[HTTP] Failed to send panic response: %v", err)
				}
			}
		}()

		return c.Next()
	}
}
