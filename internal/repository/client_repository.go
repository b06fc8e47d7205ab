package repository

import (
	"context"

	"github.com/andressep95/authz-server/internal/domain"
)

type ClientRepository interface {
	// FindByClientID retrieves a registered client. Returns ErrNotFound
	// for unknown ids.
	FindByClientID(ctx context.Context, clientID string) (*domain.Client, error)
}
