package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/akz4ol/baselayer/internal/domain"
)

// UserRepository is the pgx-backed CRUD surface for the users table
// and its derived-permissions query (spec.md §3, "union of ACLs
// granted directly with ACLs obtained transitively through roles").
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository wraps a connection pool.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID loads one user row, or nil if not found.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const q = `
		SELECT id, username, first_name, last_name, contact_email,
		       contact_phone, oauth_uid, preferences, expiration_date,
		       created_at, updated_at
		FROM users WHERE id = $1`

	var u domain.User
	var preferences []byte
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.ContactEmail,
		&u.ContactPhone, &u.OAuthUID, &preferences, &u.ExpirationDate,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	u.Preferences = preferences
	return &u, nil
}

// GetByOAuthUID loads the user linked to a social-login identity, used
// by internal/oauth's callback handler to resolve the principal behind
// a successful OIDC exchange.
func (r *UserRepository) GetByOAuthUID(ctx context.Context, oauthUID string) (*domain.User, error) {
	const q = `
		SELECT id, username, first_name, last_name, contact_email,
		       contact_phone, oauth_uid, preferences, expiration_date,
		       created_at, updated_at
		FROM users WHERE oauth_uid = $1`

	var u domain.User
	var preferences []byte
	err := r.db.QueryRowContext(ctx, q, oauthUID).Scan(
		&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.ContactEmail,
		&u.ContactPhone, &u.OAuthUID, &preferences, &u.ExpirationDate,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user by oauth uid: %w", err)
	}
	u.Preferences = preferences
	return &u, nil
}

// Permissions resolves the derived attribute of spec.md §3: the union
// of ACLs granted directly via user_acls with ACLs obtained
// transitively through user_roles ⨝ role_acls.
func (r *UserRepository) Permissions(ctx context.Context, userID uuid.UUID) ([]string, error) {
	const q = `
		SELECT acl_id FROM user_acls WHERE user_id = $1
		UNION
		SELECT ra.acl_id
		FROM user_roles ur
		JOIN role_acls ra ON ra.role_id = ur.role_id
		WHERE ur.user_id = $1`

	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("query user permissions: %w", err)
	}
	defer rows.Close()

	var perms []string
	for rows.Next() {
		var acl string
		if err := rows.Scan(&acl); err != nil {
			return nil, fmt.Errorf("scan user permission: %w", err)
		}
		perms = append(perms, acl)
	}
	return perms, rows.Err()
}
