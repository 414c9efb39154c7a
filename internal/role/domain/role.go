package domain

import (
	"time"

	"workspace-control-plane/backend/internal/authz"
)

// Role is a centrally defined bundle of permissions. Roles are not
// user-created; members reference them by id.
type Role struct {
	ID          string
	Name        string
	Description string
	Permissions []authz.Permission
	CreatedAt   time.Time
}

// Ref returns the evaluator-ready view of the role.
func (r *Role) Ref() authz.RoleRef {
	return authz.RoleRef{ID: r.ID, Name: r.Name, Permissions: r.Permissions}
}

// Built-in role names referenced by seed data and the invitation flow.
const (
	NameAdmin  = "admin"
	NameMember = "member"
)
