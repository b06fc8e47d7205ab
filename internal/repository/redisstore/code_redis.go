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

type codeRepository struct {
	redis *redis.Client
}

// NewCodeRepository creates a Redis-backed store for issued authorization
// codes. Codes are burned with GETDEL, so a racing duplicate redemption
// always finds the code absent.
func NewCodeRepository(redisClient *redis.Client) repository.CodeRepository {
	return &codeRepository{redis: redisClient}
}

func codeKey(code string) string {
	return fmt.Sprintf("authcode:%s", code)
}

func (r *codeRepository) Put(ctx context.Context, code string, authCode *domain.AuthorizationCode) error {
	payload, err := json.Marshal(authCode)
	if err != nil {
		return fmt.Errorf("failed to encode authorization code: %w", err)
	}

	if err := r.redis.Set(ctx, codeKey(code), payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to store authorization code: %w", err)
	}

	return nil
}

func (r *codeRepository) Take(ctx context.Context, code string) (*domain.AuthorizationCode, error) {
	payload, err := r.redis.GetDel(ctx, codeKey(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to take authorization code: %w", err)
	}

	var authCode domain.AuthorizationCode
	if err := json.Unmarshal(payload, &authCode); err != nil {
		return nil, fmt.Errorf("failed to decode authorization code: %w", err)
	}

	return &authCode, nil
}
