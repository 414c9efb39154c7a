package service

import (
	"context"
	"errors"
	"testing"

	"workspace-control-plane/backend/internal/authz"
	"workspace-control-plane/backend/internal/member/domain"
	roledomain "workspace-control-plane/backend/internal/role/domain"
)

type fakeMemberRepo struct {
	orgMembers  []*domain.OrgMember
	teamMembers []*domain.TeamMember
}

func (r *fakeMemberRepo) GetOrgMember(_ context.Context, userID, orgID string) (*domain.OrgMember, error) {
	for _, m := range r.orgMembers {
		if m.UserID == userID && m.OrganizationID == orgID {
			return m, nil
		}
	}
	return nil, nil
}

func (r *fakeMemberRepo) ListOrgMembersByUser(_ context.Context, userID string) ([]*domain.OrgMember, error) {
	var out []*domain.OrgMember
	for _, m := range r.orgMembers {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMemberRepo) ListOrgMembersByOrg(_ context.Context, orgID string) ([]*domain.OrgMember, error) {
	var out []*domain.OrgMember
	for _, m := range r.orgMembers {
		if m.OrganizationID == orgID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMemberRepo) GetTeamMember(_ context.Context, userID, teamID string) (*domain.TeamMember, error) {
	for _, m := range r.teamMembers {
		if m.UserID == userID && m.TeamID == teamID {
			return m, nil
		}
	}
	return nil, nil
}

func (r *fakeMemberRepo) ListTeamMembersByUser(_ context.Context, userID string) ([]*domain.TeamMember, error) {
	var out []*domain.TeamMember
	for _, m := range r.teamMembers {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeRoleRepo struct{ roles map[string]*roledomain.Role }

func (r *fakeRoleRepo) GetByID(_ context.Context, id string) (*roledomain.Role, error) {
	return r.roles[id], nil
}

func newTestService() *Service {
	members := &fakeMemberRepo{
		orgMembers: []*domain.OrgMember{
			{ID: "om-1", UserID: "user-1", OrganizationID: "org-1", RoleID: "role-admin", MembershipType: authz.MembershipTypeTeam},
			{ID: "om-2", UserID: "user-2", OrganizationID: "org-1", RoleID: "role-member", MembershipType: authz.MembershipTypeClient},
		},
		teamMembers: []*domain.TeamMember{
			{ID: "tm-1", UserID: "user-1", TeamID: "team-1", OrganizationID: "org-1", RoleID: "role-member"},
		},
	}
	roles := &fakeRoleRepo{roles: map[string]*roledomain.Role{
		"role-admin": {
			ID:   "role-admin",
			Name: roledomain.NameAdmin,
			Permissions: []authz.Permission{
				authz.PermissionManageOrganization,
				authz.PermissionManageTeam,
			},
		},
		"role-member": {ID: "role-member", Name: roledomain.NameMember},
	}}
	return NewService(members, roles)
}

func TestResolveOrgMember(t *testing.T) {
	svc := newTestService()
	m, err := svc.ResolveOrgMember(context.Background(), "user-1", "org-1")
	if err != nil {
		t.Fatalf("ResolveOrgMember: %v", err)
	}
	if m == nil {
		t.Fatal("expected a member")
	}
	if m.Kind != authz.KindOrg {
		t.Errorf("Kind = %v, want KindOrg", m.Kind)
	}
	if m.MembershipType != authz.MembershipTypeTeam {
		t.Errorf("MembershipType = %s, want team", m.MembershipType)
	}
	if !m.Role.Grants(authz.PermissionManageOrganization) {
		t.Error("role permissions not resolved")
	}
}

func TestResolveOrgMemberNotAMember(t *testing.T) {
	svc := newTestService()
	m, err := svc.ResolveOrgMember(context.Background(), "user-1", "org-other")
	if err != nil {
		t.Fatalf("ResolveOrgMember: %v", err)
	}
	if m != nil {
		t.Error("expected nil for non-member")
	}
}

func TestResolveOrgMemberUnknownRole(t *testing.T) {
	members := &fakeMemberRepo{orgMembers: []*domain.OrgMember{
		{ID: "om-1", UserID: "user-1", OrganizationID: "org-1", RoleID: "role-gone", MembershipType: authz.MembershipTypeTeam},
	}}
	svc := NewService(members, &fakeRoleRepo{roles: map[string]*roledomain.Role{}})
	_, err := svc.ResolveOrgMember(context.Background(), "user-1", "org-1")
	if !errors.Is(err, ErrRoleNotFound) {
		t.Fatalf("err = %v, want ErrRoleNotFound", err)
	}
}

func TestResolveTeamMember(t *testing.T) {
	svc := newTestService()
	m, err := svc.ResolveTeamMember(context.Background(), "user-1", "team-1")
	if err != nil {
		t.Fatalf("ResolveTeamMember: %v", err)
	}
	if m == nil {
		t.Fatal("expected a member")
	}
	if m.Kind != authz.KindTeam {
		t.Errorf("Kind = %v, want KindTeam", m.Kind)
	}
	if m.TeamID != "team-1" || m.OrganizationID != "org-1" {
		t.Errorf("scope fields wrong: %+v", m)
	}
	if m.MembershipType != "" {
		t.Error("team members must not carry a membership type")
	}
}

func TestResolveMemberships(t *testing.T) {
	svc := newTestService()
	ms, err := svc.ResolveMemberships(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ResolveMemberships: %v", err)
	}
	if len(ms.Organization) != 1 || len(ms.Team) != 1 {
		t.Fatalf("got %d org / %d team memberships, want 1/1", len(ms.Organization), len(ms.Team))
	}
}

func TestListOrgMembers(t *testing.T) {
	svc := newTestService()
	members, err := svc.ListOrgMembers(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("ListOrgMembers: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("got %d members, want 2", len(members))
	}
}
