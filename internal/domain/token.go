package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Token is an opaque bearer credential delegated from its creator. A
// Token's effective user is its creator, and its permissions must be a
// subset of the creator's permissions at issuance time (spec.md §3).
//
// The bearer credential presented over HTTP ("Authorization: token
// <opaque>") is the composite string "<id>.<secret>": ID is the
// row's public, indexable identifier (also what token_acls.token_id
// and every FK reference uses); secret is a 128-bit random value never
// stored in the clear. SecretHash is its bcrypt digest (the tokens
// table's token_hash column, SPEC_FULL.md §4) — splitting the
// credential this way is what lets a lookup resolve the row in O(1)
// by ID while still keeping the secret itself unrecoverable from the
// database, instead of bcrypt-comparing against every issued token.
type Token struct {
	ID          uuid.UUID
	Name        string
	CreatedByID uuid.UUID
	SecretHash  string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	permissions []string
}

// NewTokenSecret generates a fresh 128-bit random bearer secret and
// its bcrypt digest for storage in token_hash. cost is the configured
// bcrypt work factor (config.AuthConfig.BcryptCost).
func NewTokenSecret(cost int) (secret, hash string, err error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("generate token secret: %w", err)
	}
	secret = hex.EncodeToString(raw)
	digest, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", "", fmt.Errorf("hash token secret: %w", err)
	}
	return secret, string(digest), nil
}

// VerifySecret reports whether secret matches the bcrypt digest stored
// on the token.
func (t *Token) VerifySecret(secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(t.SecretHash), []byte(secret)) == nil
}

// Bearer renders the composite "<id>.<secret>" credential returned to
// the caller at issuance time. The plaintext secret is never stored or
// reconstructable afterward.
func (t *Token) Bearer(secret string) string {
	return t.ID.String() + "." + secret
}

// ParseBearer splits a presented "Authorization: token <opaque>" value
// into its id and secret components.
func ParseBearer(raw string) (uuid.UUID, string, error) {
	for i := 0; i < len(raw); i++ {
		if raw[i] == '.' {
			id, err := uuid.Parse(raw[:i])
			if err != nil {
				return uuid.UUID{}, "", fmt.Errorf("parse bearer token id: %w", err)
			}
			secret := raw[i+1:]
			if secret == "" {
				return uuid.UUID{}, "", fmt.Errorf("parse bearer token: empty secret")
			}
			return id, secret, nil
		}
	}
	return uuid.UUID{}, "", fmt.Errorf("parse bearer token: malformed credential")
}

var _ Principal = (*Token)(nil)

// EffectiveUserID implements Principal: a Token's effective user is its
// creator, never the token's own id.
func (t *Token) EffectiveUserID() uuid.UUID { return t.CreatedByID }

// WithPermissions attaches the token's delegated ACL set, loaded from
// token_acls.
func (t *Token) WithPermissions(perms []string) *Token {
	t.permissions = perms
	return t
}

// Permissions implements Principal.
func (t *Token) Permissions() []string { return t.permissions }

// IsAdmin implements Principal.
func (t *Token) IsAdmin() bool { return hasAdminACL(t.permissions) }

// ACLSubsetOf reports whether requested is a subset of creatorPerms,
// the invariant enforced by the issuing handler at token-creation time
// (spec.md §3, "not by the DB").
func ACLSubsetOf(requested, creatorPerms []string) bool {
	have := make(map[string]struct{}, len(creatorPerms))
	for _, p := range creatorPerms {
		have[p] = struct{}{}
	}
	for _, p := range requested {
		if _, ok := have[p]; !ok {
			return false
		}
	}
	return true
}
