// Package service resolves membership rows into evaluator-ready members.
// This is the read side consumed by handlers before any permission check:
// a raw membership row only carries a role id, so the service joins in the
// role's permission set to produce an authz.Member.
package service

import (
	"context"
	"errors"

	"workspace-control-plane/backend/internal/authz"
	"workspace-control-plane/backend/internal/member/domain"
	roledomain "workspace-control-plane/backend/internal/role/domain"
)

// ErrRoleNotFound indicates a membership references a role that does not exist.
var ErrRoleNotFound = errors.New("role not found")

// MemberRepo is the minimal member repository needed by the service.
type MemberRepo interface {
	GetOrgMember(ctx context.Context, userID, orgID string) (*domain.OrgMember, error)
	ListOrgMembersByUser(ctx context.Context, userID string) ([]*domain.OrgMember, error)
	ListOrgMembersByOrg(ctx context.Context, orgID string) ([]*domain.OrgMember, error)
	GetTeamMember(ctx context.Context, userID, teamID string) (*domain.TeamMember, error)
	ListTeamMembersByUser(ctx context.Context, userID string) ([]*domain.TeamMember, error)
}

// RoleRepo is the minimal role repository needed by the service.
type RoleRepo interface {
	GetByID(ctx context.Context, id string) (*roledomain.Role, error)
}

// Memberships groups a user's resolved org- and team-scoped members.
type Memberships struct {
	Organization []authz.Member
	Team         []authz.Member
}

// Service resolves membership rows into authz.Member values.
type Service struct {
	members MemberRepo
	roles   RoleRepo
}

// NewService returns a member service backed by the given repositories.
func NewService(members MemberRepo, roles RoleRepo) *Service {
	return &Service{members: members, roles: roles}
}

// ResolveOrgMember returns the user's membership in the org as an
// evaluator-ready member, or nil if the user is not a member.
func (s *Service) ResolveOrgMember(ctx context.Context, userID, orgID string) (*authz.Member, error) {
	row, err := s.members.GetOrgMember(ctx, userID, orgID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	return s.orgMemberFromRow(ctx, row)
}

// ResolveTeamMember returns the user's membership in the team as an
// evaluator-ready member, or nil if the user is not a member.
func (s *Service) ResolveTeamMember(ctx context.Context, userID, teamID string) (*authz.Member, error) {
	row, err := s.members.GetTeamMember(ctx, userID, teamID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	return s.teamMemberFromRow(ctx, row)
}

// ResolveMemberships returns all org and team memberships held by the user,
// with role permission sets resolved.
func (s *Service) ResolveMemberships(ctx context.Context, userID string) (*Memberships, error) {
	orgRows, err := s.members.ListOrgMembersByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	teamRows, err := s.members.ListTeamMembersByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &Memberships{}
	for _, row := range orgRows {
		m, err := s.orgMemberFromRow(ctx, row)
		if err != nil {
			return nil, err
		}
		out.Organization = append(out.Organization, *m)
	}
	for _, row := range teamRows {
		m, err := s.teamMemberFromRow(ctx, row)
		if err != nil {
			return nil, err
		}
		out.Team = append(out.Team, *m)
	}
	return out, nil
}

// ListOrgMembers returns every member of the organization with resolved roles.
func (s *Service) ListOrgMembers(ctx context.Context, orgID string) ([]authz.Member, error) {
	rows, err := s.members.ListOrgMembersByOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	out := make([]authz.Member, 0, len(rows))
	for _, row := range rows {
		m, err := s.orgMemberFromRow(ctx, row)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, nil
}

func (s *Service) orgMemberFromRow(ctx context.Context, row *domain.OrgMember) (*authz.Member, error) {
	ref, err := s.roleRef(ctx, row.RoleID)
	if err != nil {
		return nil, err
	}
	return &authz.Member{
		Kind:           authz.KindOrg,
		UserID:         row.UserID,
		OrganizationID: row.OrganizationID,
		MembershipType: row.MembershipType,
		Role:           ref,
	}, nil
}

func (s *Service) teamMemberFromRow(ctx context.Context, row *domain.TeamMember) (*authz.Member, error) {
	ref, err := s.roleRef(ctx, row.RoleID)
	if err != nil {
		return nil, err
	}
	return &authz.Member{
		Kind:           authz.KindTeam,
		UserID:         row.UserID,
		OrganizationID: row.OrganizationID,
		TeamID:         row.TeamID,
		Role:           ref,
	}, nil
}

func (s *Service) roleRef(ctx context.Context, roleID string) (authz.RoleRef, error) {
	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		return authz.RoleRef{}, err
	}
	if role == nil {
		return authz.RoleRef{}, ErrRoleNotFound
	}
	return role.Ref(), nil
}
