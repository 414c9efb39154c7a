package repository

import (
	"context"

	"workspace-control-plane/backend/internal/role/domain"
)

// Repository defines persistence for roles and their permission sets.
type Repository interface {
	// GetByID returns the role with its resolved permission set, or nil if not found.
	GetByID(ctx context.Context, id string) (*domain.Role, error)
	GetByName(ctx context.Context, name string) (*domain.Role, error)
	List(ctx context.Context) ([]*domain.Role, error)
}
