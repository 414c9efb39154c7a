package domain

import (
	"errors"
	"time"

	"workspace-control-plane/backend/internal/authz"
)

// OrgMember is a user's membership row in an organization. MembershipType
// classifies the member as internal ("team") or external ("client").
type OrgMember struct {
	ID             string
	UserID         string
	OrganizationID string
	RoleID         string
	MembershipType authz.MembershipType
	CreatedAt      time.Time
}

// Validate validates the org member for persistence.
func (m *OrgMember) Validate() error {
	if m.UserID == "" {
		return errors.New("user id is required")
	}
	if m.OrganizationID == "" {
		return errors.New("organization id is required")
	}
	if m.RoleID == "" {
		return errors.New("role id is required")
	}
	switch m.MembershipType {
	case authz.MembershipTypeTeam, authz.MembershipTypeClient:
		return nil
	default:
		return errors.New("membership type must be team or client")
	}
}

// TeamMember is a user's membership row in a team. Team members carry no
// membership type.
type TeamMember struct {
	ID             string
	UserID         string
	TeamID         string
	OrganizationID string
	RoleID         string
	CreatedAt      time.Time
}

// Validate validates the team member for persistence.
func (m *TeamMember) Validate() error {
	if m.UserID == "" {
		return errors.New("user id is required")
	}
	if m.TeamID == "" {
		return errors.New("team id is required")
	}
	if m.RoleID == "" {
		return errors.New("role id is required")
	}
	return nil
}
