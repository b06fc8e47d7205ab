package repository

import (
	"context"

	"github.com/andressep95/authz-server/internal/domain"
)

type TokenRepository interface {
	// Insert persists an issued token record. Records are never mutated
	// after creation.
	Insert(ctx context.Context, token *domain.Token) error

	// FindByAccessToken retrieves a token record by exact access-token
	// string match. Returns ErrNotFound for never-issued tokens.
	FindByAccessToken(ctx context.Context, accessToken string) (*domain.Token, error)

	// Clear removes all persisted tokens.
	Clear(ctx context.Context) error
}
