package memory

import (
	"context"

	"github.com/andressep95/authz-server/internal/domain"
	"github.com/andressep95/authz-server/internal/repository"
)

type resourceRepository struct {
	resources map[string]*domain.ProtectedResource
}

// NewResourceRepository builds a read-only protected-resource registry.
func NewResourceRepository(resources []domain.ProtectedResource) repository.ResourceRepository {
	byID := make(map[string]*domain.ProtectedResource, len(resources))
	for i := range resources {
		byID[resources[i].ResourceID] = &resources[i]
	}
	return &resourceRepository{resources: byID}
}

func (r *resourceRepository) FindByResourceID(ctx context.Context, resourceID string) (*domain.ProtectedResource, error) {
	resource, ok := r.resources[resourceID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return resource, nil
}
