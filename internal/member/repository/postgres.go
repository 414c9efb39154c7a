package repository

import (
	"context"
	"database/sql"
	"errors"

	"workspace-control-plane/backend/internal/member/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a member repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const orgMemberColumns = `id, user_id, organization_id, role_id, membership_type, created_at`

// GetOrgMember returns the user's membership in the given org, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetOrgMember(ctx context.Context, userID, orgID string) (*domain.OrgMember, error) {
	var m domain.OrgMember
	err := r.db.QueryRowContext(ctx,
		`SELECT `+orgMemberColumns+` FROM organization_members
		 WHERE user_id = $1 AND organization_id = $2`, userID, orgID).
		Scan(&m.ID, &m.UserID, &m.OrganizationID, &m.RoleID, &m.MembershipType, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// ListOrgMembersByUser returns all organization memberships held by the user.
func (r *PostgresRepository) ListOrgMembersByUser(ctx context.Context, userID string) ([]*domain.OrgMember, error) {
	return r.listOrgMembers(ctx,
		`SELECT `+orgMemberColumns+` FROM organization_members WHERE user_id = $1 ORDER BY created_at`, userID)
}

// ListOrgMembersByOrg returns all members of the given organization.
func (r *PostgresRepository) ListOrgMembersByOrg(ctx context.Context, orgID string) ([]*domain.OrgMember, error) {
	return r.listOrgMembers(ctx,
		`SELECT `+orgMemberColumns+` FROM organization_members WHERE organization_id = $1 ORDER BY created_at`, orgID)
}

// CreateOrgMember persists the org membership. The member must have ID set.
func (r *PostgresRepository) CreateOrgMember(ctx context.Context, m *domain.OrgMember) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO organization_members (id, user_id, organization_id, role_id, membership_type, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, m.UserID, m.OrganizationID, m.RoleID, m.MembershipType, m.CreatedAt)
	return err
}

const teamMemberColumns = `id, user_id, team_id, organization_id, role_id, created_at`

// GetTeamMember returns the user's membership in the given team, or nil if not found.
func (r *PostgresRepository) GetTeamMember(ctx context.Context, userID, teamID string) (*domain.TeamMember, error) {
	var m domain.TeamMember
	err := r.db.QueryRowContext(ctx,
		`SELECT `+teamMemberColumns+` FROM team_members
		 WHERE user_id = $1 AND team_id = $2`, userID, teamID).
		Scan(&m.ID, &m.UserID, &m.TeamID, &m.OrganizationID, &m.RoleID, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// ListTeamMembersByUser returns all team memberships held by the user.
func (r *PostgresRepository) ListTeamMembersByUser(ctx context.Context, userID string) ([]*domain.TeamMember, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+teamMemberColumns+` FROM team_members WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.TeamMember
	for rows.Next() {
		var m domain.TeamMember
		if err := rows.Scan(&m.ID, &m.UserID, &m.TeamID, &m.OrganizationID, &m.RoleID, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// CreateTeamMember persists the team membership. The member must have ID set.
func (r *PostgresRepository) CreateTeamMember(ctx context.Context, m *domain.TeamMember) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO team_members (id, user_id, team_id, organization_id, role_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, m.UserID, m.TeamID, m.OrganizationID, m.RoleID, m.CreatedAt)
	return err
}

func (r *PostgresRepository) listOrgMembers(ctx context.Context, query string, arg string) ([]*domain.OrgMember, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.OrgMember
	for rows.Next() {
		var m domain.OrgMember
		if err := rows.Scan(&m.ID, &m.UserID, &m.OrganizationID, &m.RoleID, &m.MembershipType, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}
