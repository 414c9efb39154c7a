package repository

import (
	"context"

	"workspace-control-plane/backend/internal/team/domain"
)

// Repository defines persistence for teams.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Team, error)
	ListByOrg(ctx context.Context, orgID string) ([]*domain.Team, error)
	Create(ctx context.Context, t *domain.Team) error
}
