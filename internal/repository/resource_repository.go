package repository

import (
	"context"

	"github.com/andressep95/authz-server/internal/domain"
)

type ResourceRepository interface {
	// FindByResourceID retrieves a registered protected resource.
	// Returns ErrNotFound for unknown ids.
	FindByResourceID(ctx context.Context, resourceID string) (*domain.ProtectedResource, error)
}
