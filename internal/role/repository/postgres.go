package repository

import (
	"context"
	"database/sql"
	"errors"

	"workspace-control-plane/backend/internal/authz"
	"workspace-control-plane/backend/internal/role/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a role repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the role for id with its permission set, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	return r.getOne(ctx, `SELECT id, name, description, created_at FROM roles WHERE id = $1`, id)
}

// GetByName returns the role with the given name, or nil if not found.
func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	return r.getOne(ctx, `SELECT id, name, description, created_at FROM roles WHERE name = $1`, name)
}

// List returns all roles with resolved permission sets, ordered by name.
func (r *PostgresRepository) List(ctx context.Context) ([]*domain.Role, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, created_at FROM roles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, role := range out {
		perms, err := r.permissionsFor(ctx, role.ID)
		if err != nil {
			return nil, err
		}
		role.Permissions = perms
	}
	return out, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query, arg string) (*domain.Role, error) {
	row := r.db.QueryRowContext(ctx, query, arg)
	role, err := scanRole(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	perms, err := r.permissionsFor(ctx, role.ID)
	if err != nil {
		return nil, err
	}
	role.Permissions = perms
	return role, nil
}

// permissionsFor returns the permission actions granted to the role through
// the role_permissions join.
func (r *PostgresRepository) permissionsFor(ctx context.Context, roleID string) ([]authz.Permission, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.action FROM permissions p
		 JOIN role_permissions rp ON rp.permission_id = p.id
		 WHERE rp.role_id = $1 ORDER BY p.action`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []authz.Permission
	for rows.Next() {
		var action string
		if err := rows.Scan(&action); err != nil {
			return nil, err
		}
		perms = append(perms, authz.Permission(action))
	}
	return perms, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRole(row rowScanner) (*domain.Role, error) {
	var role domain.Role
	var desc sql.NullString
	if err := row.Scan(&role.ID, &role.Name, &desc, &role.CreatedAt); err != nil {
		return nil, err
	}
	role.Description = desc.String
	return &role, nil
}
