package memory

import (
	"context"

	"github.com/andressep95/authz-server/internal/domain"
	"github.com/andressep95/authz-server/internal/repository"
)

type clientRepository struct {
	clients map[string]*domain.Client
}

// NewClientRepository builds a read-only client registry from the static
// registrations. The registry never changes after startup, so lookups need
// no locking.
func NewClientRepository(clients []domain.Client) repository.ClientRepository {
	byID := make(map[string]*domain.Client, len(clients))
	for i := range clients {
		byID[clients[i].ClientID] = &clients[i]
	}
	return &clientRepository{clients: byID}
}

func (r *clientRepository) FindByClientID(ctx context.Context, clientID string) (*domain.Client, error) {
	client, ok := r.clients[clientID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return client, nil
}
