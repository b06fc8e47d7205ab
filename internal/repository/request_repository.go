package repository

import (
	"context"

	"github.com/andressep95/authz-server/internal/domain"
)

type RequestRepository interface {
	// Put stages an authorization request under an opaque request id.
	Put(ctx context.Context, reqID string, req *domain.AuthorizationRequest) error

	// Take retrieves and removes the staged request in a single atomic
	// step. Two concurrent Takes of the same id must not both succeed.
	// Returns ErrNotFound when the id is absent or already consumed.
	Take(ctx context.Context, reqID string) (*domain.AuthorizationRequest, error)
}
