package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akz4ol/baselayer/internal/domain"
)

// RoleRepository is the pgx-backed CRUD surface for roles, acls, and
// the role_acls/user_roles join tables (spec.md §3).
type RoleRepository struct {
	db *sql.DB
}

// NewRoleRepository wraps a connection pool.
func NewRoleRepository(db *sql.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// Seed creates the bootstrap ACLs and roles of domain.SeedRoles if they
// do not already exist, matching cesium-ml/baselayer's schema-bootstrap
// role set.
func (r *RoleRepository) Seed(ctx context.Context) error {
	for _, seed := range domain.SeedRoles {
		for _, acl := range seed.ACLs {
			if _, err := r.db.ExecContext(ctx,
				`INSERT INTO acls (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, acl); err != nil {
				return fmt.Errorf("seed acl %q: %w", acl, err)
			}
		}

		var roleID uuid.UUID
		now := time.Now().UTC()
		err := r.db.QueryRowContext(ctx,
			`INSERT INTO roles (id, name, created_at, updated_at) VALUES ($1, $2, $3, $3)
			 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			 RETURNING id`, uuid.New(), seed.Name, now).Scan(&roleID)
		if err != nil {
			return fmt.Errorf("seed role %q: %w", seed.Name, err)
		}

		for _, acl := range seed.ACLs {
			if _, err := r.db.ExecContext(ctx,
				`INSERT INTO role_acls (role_id, acl_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				roleID, acl); err != nil {
				return fmt.Errorf("seed role_acl %q/%q: %w", seed.Name, acl, err)
			}
		}
	}
	return nil
}

// ListByUser loads the roles assigned to a user, with each role's own
// ACLNames populated — the association-proxy pair SPEC_FULL.md §5
// calls for (domain.Role.ACLNames, domain.User.RoleIDs).
func (r *RoleRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Role, error) {
	const q = `
		SELECT r.id, r.name, r.created_at, r.updated_at
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1`

	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("query user roles: %w", err)
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range roles {
		acls, err := r.aclNames(ctx, roles[i].ID)
		if err != nil {
			return nil, err
		}
		roles[i] = *roles[i].WithACLs(acls)
	}
	return roles, nil
}

func (r *RoleRepository) aclNames(ctx context.Context, roleID uuid.UUID) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT acl_id FROM role_acls WHERE role_id = $1`, roleID)
	if err != nil {
		return nil, fmt.Errorf("query role acls: %w", err)
	}
	defer rows.Close()

	var acls []string
	for rows.Next() {
		var acl string
		if err := rows.Scan(&acl); err != nil {
			return nil, fmt.Errorf("scan role acl: %w", err)
		}
		acls = append(acls, acl)
	}
	return acls, rows.Err()
}

// AssignRole grants a role to a user.
func (r *RoleRepository) AssignRole(ctx context.Context, userID, roleID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, roleID)
	if err != nil {
		return fmt.Errorf("assign role: %w", err)
	}
	return nil
}

// RevokeRole removes a role assignment from a user.
func (r *RoleRepository) RevokeRole(ctx context.Context, userID, roleID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2`, userID, roleID)
	if err != nil {
		return fmt.Errorf("revoke role: %w", err)
	}
	return nil
}

// ByName looks up a role by its unique name, e.g. for CLI role
// assignment by human-readable name.
func (r *RoleRepository) ByName(ctx context.Context, name string) (*domain.Role, error) {
	var role domain.Role
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM roles WHERE name = $1`, name,
	).Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query role by name: %w", err)
	}
	return &role, nil
}
