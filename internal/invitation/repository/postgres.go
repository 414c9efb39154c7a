package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"workspace-control-plane/backend/internal/invitation/domain"
	memberdomain "workspace-control-plane/backend/internal/member/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an invitation repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const invitationColumns = `id, organization_id, team_id, email, role_id, membership_type,
	token, invited_by, created_at, expires_at, accepted_at`

// GetByToken returns the invitation for the token, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE token = $1`, token)
	inv, err := scanInvitation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return inv, nil
}

// GetPendingByEmailAndOrg returns the pending invitation for the (email, org)
// pair at the given instant, or nil if none exists.
func (r *PostgresRepository) GetPendingByEmailAndOrg(ctx context.Context, email, orgID string, now time.Time) (*domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations
		 WHERE email = $1 AND organization_id = $2 AND accepted_at IS NULL AND expires_at > $3`,
		email, orgID, now)
	inv, err := scanInvitation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return inv, nil
}

// InsertIfNoPending inserts the invitation unless a pending one already exists
// for the same (email, org) pair. Guard and insert are one statement, so two
// concurrent creates cannot both pass the duplicate check.
func (r *PostgresRepository) InsertIfNoPending(ctx context.Context, inv *domain.Invitation, now time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO invitations
		   (id, organization_id, team_id, email, role_id, membership_type, token, invited_by, created_at, expires_at)
		 SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		 WHERE NOT EXISTS (
		   SELECT 1 FROM invitations
		   WHERE email = $4 AND organization_id = $2 AND accepted_at IS NULL AND expires_at > $11
		 )`,
		inv.ID, inv.OrganizationID, nullString(inv.TeamID), inv.Email, inv.RoleID,
		inv.MembershipType, inv.Token, inv.InvitedBy, inv.CreatedAt, inv.ExpiresAt, now)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ListPending returns pending invitations for the org at the given instant,
// filtered by team scope.
func (r *PostgresRepository) ListPending(ctx context.Context, orgID, teamID string, includeNoTeam bool, now time.Time) ([]*domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations
		 WHERE organization_id = $1 AND accepted_at IS NULL AND expires_at > $2`
	args := []any{orgID, now}
	switch {
	case teamID != "" && includeNoTeam:
		query += ` AND (team_id = $3 OR team_id IS NULL)`
		args = append(args, teamID)
	case teamID != "":
		query += ` AND team_id = $3`
		args = append(args, teamID)
	default:
		query += ` AND team_id IS NULL`
	}
	query += ` ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// AcceptAndCreateMembers sets accepted_at for the token and inserts the
// membership rows in a single transaction. The accepted_at IS NULL guard and
// the member inserts commit or roll back together, so a failed insert (e.g.
// the invitee already holds a membership) leaves the invitation pending and
// the token retryable. Returns false if the row is missing or already accepted.
func (r *PostgresRepository) AcceptAndCreateMembers(ctx context.Context, token string, at time.Time, orgMember *memberdomain.OrgMember, teamMember *memberdomain.TeamMember) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE invitations SET accepted_at = $1 WHERE token = $2 AND accepted_at IS NULL`,
		at, token)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n != 1 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO organization_members (id, user_id, organization_id, role_id, membership_type, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		orgMember.ID, orgMember.UserID, orgMember.OrganizationID, orgMember.RoleID,
		orgMember.MembershipType, orgMember.CreatedAt); err != nil {
		return false, err
	}
	if teamMember != nil {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO team_members (id, user_id, team_id, organization_id, role_id, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			teamMember.ID, teamMember.UserID, teamMember.TeamID, teamMember.OrganizationID,
			teamMember.RoleID, teamMember.CreatedAt); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteByToken removes the invitation row. Returns false if no row matched.
func (r *PostgresRepository) DeleteByToken(ctx context.Context, token string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM invitations WHERE token = $1`, token)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvitation(row rowScanner) (*domain.Invitation, error) {
	var inv domain.Invitation
	var teamID sql.NullString
	var acceptedAt sql.NullTime
	err := row.Scan(&inv.ID, &inv.OrganizationID, &teamID, &inv.Email, &inv.RoleID,
		&inv.MembershipType, &inv.Token, &inv.InvitedBy, &inv.CreatedAt, &inv.ExpiresAt, &acceptedAt)
	if err != nil {
		return nil, err
	}
	inv.TeamID = teamID.String
	if acceptedAt.Valid {
		t := acceptedAt.Time
		inv.AcceptedAt = &t
	}
	return &inv, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
