package repository

import (
	"context"

	"github.com/andressep95/authz-server/internal/domain"
)

type CodeRepository interface {
	// Put stores an issued authorization code.
	Put(ctx context.Context, code string, authCode *domain.AuthorizationCode) error

	// Take retrieves and removes the code in a single atomic step, so a
	// racing duplicate redemption always finds it absent. Returns
	// ErrNotFound for unknown or already-redeemed codes.
	Take(ctx context.Context, code string) (*domain.AuthorizationCode, error)
}
