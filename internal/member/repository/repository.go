package repository

import (
	"context"

	"workspace-control-plane/backend/internal/member/domain"
)

// Repository defines persistence for organization and team memberships.
type Repository interface {
	GetOrgMember(ctx context.Context, userID, orgID string) (*domain.OrgMember, error)
	ListOrgMembersByUser(ctx context.Context, userID string) ([]*domain.OrgMember, error)
	ListOrgMembersByOrg(ctx context.Context, orgID string) ([]*domain.OrgMember, error)
	CreateOrgMember(ctx context.Context, m *domain.OrgMember) error

	GetTeamMember(ctx context.Context, userID, teamID string) (*domain.TeamMember, error)
	ListTeamMembersByUser(ctx context.Context, userID string) ([]*domain.TeamMember, error)
	CreateTeamMember(ctx context.Context, m *domain.TeamMember) error
}
