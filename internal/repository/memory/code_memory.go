package memory

import (
	"context"
	"sync"

	"github.com/andressep95/authz-server/internal/domain"
	"github.com/andressep95/authz-server/internal/repository"
)

type codeRepository struct {
	mu    sync.Mutex
	codes map[string]*domain.AuthorizationCode
}

// NewCodeRepository creates an in-memory store for issued authorization
// codes.
func NewCodeRepository() repository.CodeRepository {
	return &codeRepository{
		codes: make(map[string]*domain.AuthorizationCode),
	}
}

func (r *codeRepository) Put(ctx context.Context, code string, authCode *domain.AuthorizationCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.codes[code] = authCode
	return nil
}

// Take burns the code under the lock: of two simultaneous redemptions,
// exactly one observes the code present.
func (r *codeRepository) Take(ctx context.Context, code string) (*domain.AuthorizationCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	authCode, ok := r.codes[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	delete(r.codes, code)
	return authCode, nil
}
