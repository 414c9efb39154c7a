package repository

import (
	"context"
	"time"

	"workspace-control-plane/backend/internal/invitation/domain"
	memberdomain "workspace-control-plane/backend/internal/member/domain"
)

// Repository defines persistence for invitations. Revocation is modeled as
// row deletion, so there is no status column to update.
type Repository interface {
	GetByToken(ctx context.Context, token string) (*domain.Invitation, error)
	// GetPendingByEmailAndOrg returns the pending invitation for the
	// (email, org) pair at the given instant, or nil if none exists.
	GetPendingByEmailAndOrg(ctx context.Context, email, orgID string, now time.Time) (*domain.Invitation, error)
	// InsertIfNoPending inserts the invitation only if no pending invitation
	// exists for the same (email, org) pair. The guard and the insert run as
	// a single statement so concurrent creates cannot both succeed.
	// Returns false when a pending invitation blocked the insert.
	InsertIfNoPending(ctx context.Context, inv *domain.Invitation, now time.Time) (bool, error)
	// ListPending returns pending invitations for the org at the given
	// instant. teamID filters to a team; includeNoTeam additionally includes
	// org-wide rows; with teamID empty only org-wide rows are returned.
	ListPending(ctx context.Context, orgID, teamID string, includeNoTeam bool, now time.Time) ([]*domain.Invitation, error)
	// AcceptAndCreateMembers sets accepted_at for the token and inserts the
	// membership rows in one transaction, so a membership failure can never
	// leave the invitation accepted without its member. teamMember may be
	// nil for org-wide invitations. Returns false if the row is missing or
	// already accepted.
	AcceptAndCreateMembers(ctx context.Context, token string, at time.Time, orgMember *memberdomain.OrgMember, teamMember *memberdomain.TeamMember) (bool, error)
	// DeleteByToken removes the row. Returns false if no row matched.
	DeleteByToken(ctx context.Context, token string) (bool, error)
}
