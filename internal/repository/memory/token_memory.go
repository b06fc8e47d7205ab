package memory

import (
	"context"
	"sync"

	"github.com/andressep95/authz-server/internal/domain"
	"github.com/andressep95/authz-server/internal/repository"
)

type tokenRepository struct {
	mu     sync.RWMutex
	tokens map[string]*domain.Token
}

// NewTokenRepository creates an in-memory token store, keyed by the
// access-token string.
func NewTokenRepository() repository.TokenRepository {
	return &tokenRepository{
		tokens: make(map[string]*domain.Token),
	}
}

func (r *tokenRepository) Insert(ctx context.Context, token *domain.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tokens[token.AccessToken] = token
	return nil
}

func (r *tokenRepository) FindByAccessToken(ctx context.Context, accessToken string) (*domain.Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	token, ok := r.tokens[accessToken]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return token, nil
}

func (r *tokenRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tokens = make(map[string]*domain.Token)
	return nil
}
