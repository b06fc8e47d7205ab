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

type requestRepository struct {
	redis *redis.Client
}

// NewRequestRepository creates a Redis-backed staging area for pending
// authorization requests. GETDEL makes the retrieve-and-remove step atomic
// across server instances sharing the same Redis.
func NewRequestRepository(redisClient *redis.Client) repository.RequestRepository {
	return &requestRepository{redis: redisClient}
}

func requestKey(reqID string) string {
	return fmt.Sprintf("authreq:%s", reqID)
}

func (r *requestRepository) Put(ctx context.Context, reqID string, req *domain.AuthorizationRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode authorization request: %w", err)
	}

	if err := r.redis.Set(ctx, requestKey(reqID), payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to stage authorization request: %w", err)
	}

	return nil
}

func (r *requestRepository) Take(ctx context.Context, reqID string) (*domain.AuthorizationRequest, error) {
	payload, err := r.redis.GetDel(ctx, requestKey(reqID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to take authorization request: %w", err)
	}

	var req domain.AuthorizationRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("failed to decode authorization request: %w", err)
	}

	return &req, nil
}
