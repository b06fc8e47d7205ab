package memory

import (
	"context"
	"sync"

	"github.com/andressep95/authz-server/internal/domain"
	"github.com/andressep95/authz-server/internal/repository"
)

type requestRepository struct {
	mu       sync.Mutex
	requests map[string]*domain.AuthorizationRequest
}

// NewRequestRepository creates an in-memory staging area for pending
// authorization requests.
func NewRequestRepository() repository.RequestRepository {
	return &requestRepository{
		requests: make(map[string]*domain.AuthorizationRequest),
	}
}

func (r *requestRepository) Put(ctx context.Context, reqID string, req *domain.AuthorizationRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.requests[reqID] = req
	return nil
}

// Take removes the request under the lock, so a replayed approval of the
// same request id always finds it gone.
func (r *requestRepository) Take(ctx context.Context, reqID string) (*domain.AuthorizationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[reqID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	delete(r.requests, reqID)
	return req, nil
}
