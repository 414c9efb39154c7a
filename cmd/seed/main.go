// seed inserts development sample data for local testing.
// Idempotent: skips inserts if the dev user (dev@example.com) already exists.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"workspace-control-plane/backend/internal/authz"
	"workspace-control-plane/backend/internal/config"
	"workspace-control-plane/backend/internal/db"
	memberdomain "workspace-control-plane/backend/internal/member/domain"
	memberrepo "workspace-control-plane/backend/internal/member/repository"
	orgdomain "workspace-control-plane/backend/internal/organization/domain"
	orgrepo "workspace-control-plane/backend/internal/organization/repository"
	roledomain "workspace-control-plane/backend/internal/role/domain"
	"workspace-control-plane/backend/internal/security"
	teamdomain "workspace-control-plane/backend/internal/team/domain"
	teamrepo "workspace-control-plane/backend/internal/team/repository"
	userdomain "workspace-control-plane/backend/internal/user/domain"
	userrepo "workspace-control-plane/backend/internal/user/repository"
)

const (
	devUserEmail = "dev@example.com"
	devPassword  = "Dev-Password-123!"
	devOrgName   = "Dev Workspace"
	devTeamName  = "Platform"
)

var allPermissions = []authz.Permission{
	authz.PermissionManageOrganization,
	authz.PermissionManageOrganizationMembers,
	authz.PermissionManageTeam,
	authz.PermissionManageTeamMembers,
	authz.PermissionAssignRoles,
	authz.PermissionManageBilling,
	authz.PermissionViewAnalytics,
	authz.PermissionExportAnalytics,
}

var memberPermissions = []authz.Permission{
	authz.PermissionViewAnalytics,
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is not set")
		os.Exit(1)
	}

	pool, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	ctx := context.Background()
	users := userrepo.NewPostgresRepository(pool)

	existing, err := users.GetByEmail(ctx, devUserEmail)
	if err != nil {
		log.Fatalf("check dev user: %v", err)
	}
	if existing != nil {
		log.Printf("dev user %s already exists, nothing to do", devUserEmail)
		return
	}

	now := time.Now().UTC()

	adminRoleID, err := seedRole(ctx, pool, roledomain.NameAdmin, "Full workspace administration", allPermissions)
	if err != nil {
		log.Fatalf("seed admin role: %v", err)
	}
	if _, err := seedRole(ctx, pool, roledomain.NameMember, "Standard workspace member", memberPermissions); err != nil {
		log.Fatalf("seed member role: %v", err)
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	hash, err := hasher.Hash([]byte(devPassword))
	if err != nil {
		log.Fatalf("hash dev password: %v", err)
	}
	user := &userdomain.User{
		ID:           uuid.New().String(),
		Email:        devUserEmail,
		Name:         "Dev User",
		PasswordHash: hash,
		Status:       userdomain.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Create(ctx, user); err != nil {
		log.Fatalf("create dev user: %v", err)
	}

	org := &orgdomain.Org{
		ID:        uuid.New().String(),
		Name:      devOrgName,
		Status:    orgdomain.OrgStatusActive,
		CreatedAt: now,
	}
	if err := orgrepo.NewPostgresRepository(pool).Create(ctx, org); err != nil {
		log.Fatalf("create dev org: %v", err)
	}

	team := &teamdomain.Team{
		ID:             uuid.New().String(),
		OrganizationID: org.ID,
		Name:           devTeamName,
		CreatedAt:      now,
	}
	if err := teamrepo.NewPostgresRepository(pool).Create(ctx, team); err != nil {
		log.Fatalf("create dev team: %v", err)
	}

	members := memberrepo.NewPostgresRepository(pool)
	if err := members.CreateOrgMember(ctx, &memberdomain.OrgMember{
		ID:             uuid.New().String(),
		UserID:         user.ID,
		OrganizationID: org.ID,
		RoleID:         adminRoleID,
		MembershipType: authz.MembershipTypeTeam,
		CreatedAt:      now,
	}); err != nil {
		log.Fatalf("create dev org membership: %v", err)
	}

	log.Printf("seeded dev user %s (password %q), org %q, team %q", devUserEmail, devPassword, devOrgName, devTeamName)
}

// seedRole upserts a role with its permission set and returns the role id.
func seedRole(ctx context.Context, pool *sql.DB, name, description string, perms []authz.Permission) (string, error) {
	var roleID string
	err := pool.QueryRowContext(ctx, `SELECT id FROM roles WHERE name = $1`, name).Scan(&roleID)
	if err == sql.ErrNoRows {
		roleID = uuid.New().String()
		if _, err := pool.ExecContext(ctx,
			`INSERT INTO roles (id, name, description, created_at) VALUES ($1, $2, $3, $4)`,
			roleID, name, description, time.Now().UTC()); err != nil {
			return "", err
		}
	} else if err != nil {
		return "", err
	}

	for _, p := range perms {
		var permID string
		err := pool.QueryRowContext(ctx, `SELECT id FROM permissions WHERE action = $1`, string(p)).Scan(&permID)
		if err == sql.ErrNoRows {
			permID = uuid.New().String()
			if _, err := pool.ExecContext(ctx,
				`INSERT INTO permissions (id, action) VALUES ($1, $2)`, permID, string(p)); err != nil {
				return "", err
			}
		} else if err != nil {
			return "", err
		}
		if _, err := pool.ExecContext(ctx,
			`INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			roleID, permID); err != nil {
			return "", err
		}
	}
	return roleID, nil
}
