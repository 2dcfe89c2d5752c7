package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akz4ol/baselayer/internal/domain"
)

// TokenRepository is the pgx-backed CRUD surface for the tokens table,
// including the bcrypt secret-hash lookup path (internal/domain.Token,
// SecretHash) and the token's delegated-ACL set (token_acls).
type TokenRepository struct {
	db   *sql.DB
	cost int
}

// NewTokenRepository wraps a connection pool. cost is the bcrypt work
// factor new tokens are hashed with (config.AuthConfig.BcryptCost).
func NewTokenRepository(db *sql.DB, cost int) *TokenRepository {
	return &TokenRepository{db: db, cost: cost}
}

// GetByID loads one token row by its public id, or nil if not found.
func (r *TokenRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Token, error) {
	const q = `
		SELECT id, name, created_by_id, token_hash, created_at, updated_at
		FROM tokens WHERE id = $1`

	var t domain.Token
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&t.ID, &t.Name, &t.CreatedByID, &t.SecretHash, &t.CreatedAt, &t.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query token: %w", err)
	}
	return &t, nil
}

// Permissions resolves a Token's delegated ACL set from token_acls.
func (r *TokenRepository) Permissions(ctx context.Context, tokenID uuid.UUID) ([]string, error) {
	const q = `SELECT acl_id FROM token_acls WHERE token_id = $1`

	rows, err := r.db.QueryContext(ctx, q, tokenID)
	if err != nil {
		return nil, fmt.Errorf("query token permissions: %w", err)
	}
	defer rows.Close()

	var perms []string
	for rows.Next() {
		var acl string
		if err := rows.Scan(&acl); err != nil {
			return nil, fmt.Errorf("scan token permission: %w", err)
		}
		perms = append(perms, acl)
	}
	return perms, rows.Err()
}

// Create issues a new token for createdBy, storing only the bcrypt
// digest of its secret. requestedACLs must already have been checked
// by the caller against the creator's own permissions (spec.md §4.2,
// "enforced by the issuing handler, not by the DB") — Create does not
// re-derive the creator's permission set.
func (r *TokenRepository) Create(ctx context.Context, name string, createdBy uuid.UUID, requestedACLs []string) (*domain.Token, string, error) {
	secret, hash, err := domain.NewTokenSecret(r.cost)
	if err != nil {
		return nil, "", err
	}

	now := time.Now().UTC()
	t := &domain.Token{
		ID:          uuid.New(),
		Name:        name,
		CreatedByID: createdBy,
		SecretHash:  hash,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, "", fmt.Errorf("begin token create: %w", err)
	}
	defer tx.Rollback()

	const insertToken = `
		INSERT INTO tokens (id, name, created_by_id, token_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := tx.ExecContext(ctx, insertToken, t.ID, t.Name, t.CreatedByID, t.SecretHash, t.CreatedAt, t.UpdatedAt); err != nil {
		return nil, "", fmt.Errorf("insert token: %w", err)
	}

	const insertACL = `INSERT INTO token_acls (token_id, acl_id) VALUES ($1, $2)`
	for _, acl := range requestedACLs {
		if _, err := tx.ExecContext(ctx, insertACL, t.ID, acl); err != nil {
			return nil, "", fmt.Errorf("insert token acl %q: %w", acl, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, "", fmt.Errorf("commit token create: %w", err)
	}
	return t, secret, nil
}

// Revoke deletes a token and its delegated ACLs (ON DELETE CASCADE
// handles token_acls).
func (r *TokenRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM tokens WHERE id = $1`
	result, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check revoke result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("token not found")
	}
	return nil
}
