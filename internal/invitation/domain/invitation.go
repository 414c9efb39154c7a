// Package domain defines the invitation entity and its derived lifecycle.
// An invitation has no stored status column: Pending, Accepted, and Expired
// are derived from accepted_at and expires_at, and a revoked invitation is
// a deleted row.
package domain

import (
	"errors"
	"strings"
	"time"

	"workspace-control-plane/backend/internal/authz"
)

// Invitation is a time-limited, single-use offer of membership identified
// by an opaque token. TeamID empty means organization-wide.
type Invitation struct {
	ID             string
	OrganizationID string
	TeamID         string
	Email          string
	RoleID         string
	MembershipType authz.MembershipType
	Token          string
	InvitedBy      string
	CreatedAt      time.Time
	ExpiresAt      time.Time
	// AcceptedAt is nil until the invitation is accepted. Acceptance is terminal.
	AcceptedAt *time.Time
}

// Status is the derived lifecycle state of an invitation row. Revoked rows
// are deleted, so no Status value exists for them.
type Status int

const (
	// StatusPending means the invitation can still be accepted.
	StatusPending Status = iota
	// StatusAccepted means the invitation produced a member. Terminal.
	StatusAccepted
	// StatusExpired means expires_at passed without acceptance. Terminal.
	StatusExpired
)

// StatusAt derives the lifecycle state at the given instant.
func (i *Invitation) StatusAt(now time.Time) Status {
	if i.AcceptedAt != nil {
		return StatusAccepted
	}
	if !i.ExpiresAt.After(now) {
		return StatusExpired
	}
	return StatusPending
}

// PendingAt reports whether the invitation can be accepted at the given instant.
func (i *Invitation) PendingAt(now time.Time) bool {
	return i.StatusAt(now) == StatusPending
}

// StatusLabel returns the string label for a status.
func StatusLabel(s Status) string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusAccepted:
		return "ACCEPTED"
	case StatusExpired:
		return "EXPIRED"
	default:
		return "UNSPECIFIED"
	}
}

// Validate validates the invitation for persistence.
func (i *Invitation) Validate() error {
	if strings.TrimSpace(i.Email) == "" {
		return errors.New("email is required")
	}
	if i.OrganizationID == "" {
		return errors.New("organization id is required")
	}
	if i.RoleID == "" {
		return errors.New("role id is required")
	}
	if i.Token == "" {
		return errors.New("token is required")
	}
	switch i.MembershipType {
	case authz.MembershipTypeTeam, authz.MembershipTypeClient:
	default:
		return errors.New("membership type must be team or client")
	}
	if i.ExpiresAt.IsZero() {
		return errors.New("expiry is required")
	}
	return nil
}
