package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/andressep95/authz-server/internal/domain"
	"github.com/andressep95/authz-server/internal/repository"
)

type tokenRepository struct {
	redis *redis.Client
}

// NewTokenRepository creates a Redis-backed token store keyed by the
// access-token string. Records carry no TTL; issued tokens live until
// Clear is called.
func NewTokenRepository(redisClient *redis.Client) repository.TokenRepository {
	return &tokenRepository{redis: redisClient}
}

func tokenKey(accessToken string) string {
	return fmt.Sprintf("token:%s", accessToken)
}

func (r *tokenRepository) Insert(ctx context.Context, token *domain.Token) error {
	payload, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token record: %w", err)
	}

	if err := r.redis.Set(ctx, tokenKey(token.AccessToken), payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}

	return nil
}

func (r *tokenRepository) FindByAccessToken(ctx context.Context, accessToken string) (*domain.Token, error) {
	payload, err := r.redis.Get(ctx, tokenKey(accessToken)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}

	var token domain.Token
	if err := json.Unmarshal(payload, &token); err != nil {
		return nil, fmt.Errorf("failed to decode token record: %w", err)
	}

	return &token, nil
}

func (r *tokenRepository) Clear(ctx context.Context) error {
	keys, err := r.redis.Keys(ctx, tokenKey("*")).Result()
	if err != nil {
		return fmt.Errorf("failed to list token keys: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}

	if err := r.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to clear tokens: %w", err)
	}

	return nil
}
