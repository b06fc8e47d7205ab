package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/andressep95/authz-server/internal/service"
)

// PageRenderer is the collaborator that presents browser-facing pages. The
// protocol core hands it small view models and stays agnostic of markup.
type PageRenderer interface {
	// Error presents a terminal error page. Used when no trusted
	// redirect URI exists to carry the error back to the client.
	Error(c *fiber.Ctx, message string) error

	// Approval presents a staged authorization request for the user's
	// yes/no decision.
	Approval(c *fiber.Ctx, pending *service.PendingAuthorization) error
}

// JSONRenderer serves the view models as JSON for an external UI layer to
// render.
type JSONRenderer struct{}

func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

func (r *JSONRenderer) Error(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": message,
	})
}

func (r *JSONRenderer) Approval(c *fiber.Ctx, pending *service.PendingAuthorization) error {
	return c.Status(fiber.StatusOK).JSON(pending)
}
