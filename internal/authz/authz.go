// Package authz evaluates declarative permission requirements against a
// resolved workspace member. Evaluation is a pure function over in-memory
// data: no I/O, no caching, no errors.
package authz

// Permission identifies a single capability granted through a role.
type Permission string

const (
	PermissionManageOrganization        Permission = "manage_organization"
	PermissionManageOrganizationMembers Permission = "manage_organization_members"
	PermissionManageTeam                Permission = "manage_team"
	PermissionManageTeamMembers         Permission = "manage_team_members"
	PermissionAssignRoles               Permission = "assign_roles"
	PermissionManageBilling             Permission = "manage_billing"
	PermissionViewAnalytics             Permission = "view_analytics"
	PermissionExportAnalytics           Permission = "export_analytics"
)

// MembershipType classifies an organization member as internal ("team")
// or external ("client"). Team-scoped members carry no membership type.
type MembershipType string

const (
	MembershipTypeTeam   MembershipType = "team"
	MembershipTypeClient MembershipType = "client"
)

// MemberKind tags which scope a Member belongs to.
type MemberKind int

const (
	// KindOrg is an organization-scoped member. Carries a MembershipType.
	KindOrg MemberKind = iota
	// KindTeam is a team-scoped member. Never membership-type-gated.
	KindTeam
)

// RoleRef is a member's resolved role: its name plus the full set of
// permissions the role grants. A member always has exactly one role.
type RoleRef struct {
	ID          string
	Name        string
	Permissions []Permission
}

// Grants reports whether the role grants the given permission.
func (r RoleRef) Grants(p Permission) bool {
	for _, granted := range r.Permissions {
		if granted == p {
			return true
		}
	}
	return false
}

// Member is a principal's association with an organization or a team.
// Kind is the explicit discriminant; MembershipType is only meaningful
// when Kind is KindOrg.
type Member struct {
	Kind           MemberKind
	UserID         string
	OrganizationID string
	// TeamID is set only for team-scoped members.
	TeamID string
	// MembershipType is set only for organization-scoped members.
	MembershipType MembershipType
	Role           RoleRef
}

// Requirement is a declarative access rule. Every clause is optional;
// an unset clause is vacuously satisfied.
type Requirement struct {
	// Role requires an exact, case-sensitive role-name match.
	Role string
	// MembershipType is only enforced against organization-scoped members.
	MembershipType MembershipType
	// Permissions must all be granted by the member's role (conjunction).
	Permissions []Permission
}

// MeetsRequirements reports whether member satisfies every clause of req.
// A nil member never satisfies any requirement, including the empty one.
func MeetsRequirements(member *Member, req Requirement) bool {
	if member == nil {
		return false
	}
	if !hasRequiredRole(member, req) {
		return false
	}
	if !hasRequiredPermissions(member, req) {
		return false
	}
	switch member.Kind {
	case KindOrg:
		return hasRequiredMembershipType(member, req)
	case KindTeam:
		// Team-scoped members skip the membership-type clause entirely.
		return true
	default:
		return false
	}
}

func hasRequiredRole(member *Member, req Requirement) bool {
	if req.Role == "" {
		return true
	}
	return member.Role.Name == req.Role
}

func hasRequiredPermissions(member *Member, req Requirement) bool {
	for _, p := range req.Permissions {
		if !member.Role.Grants(p) {
			return false
		}
	}
	return true
}

func hasRequiredMembershipType(member *Member, req Requirement) bool {
	if req.MembershipType == "" {
		return true
	}
	return member.MembershipType == req.MembershipType
}
