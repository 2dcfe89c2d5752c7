package domain

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// User is a human principal. Attributes mirror spec.md §3: a unique
// slugified username, optional contact details, optional OAuth linkage,
// free-form preferences, and an optional expiration date.
type User struct {
	ID             uuid.UUID
	Username       string
	FirstName      *string
	LastName       *string
	ContactEmail   *string
	ContactPhone   *string
	OAuthUID       *string
	Preferences    json.RawMessage
	ExpirationDate *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// permissions is set by WithPermissions. Nothing in this tree fills
	// roles or directACLs, so they stay nil and RoleIDs returns an empty
	// slice.
	roles       []Role
	directACLs  []string
	permissions []string
}

var _ Principal = (*User)(nil)

// EffectiveUserID implements Principal.
func (u *User) EffectiveUserID() uuid.UUID { return u.ID }

// IsActive reports whether the user's account has not expired.
func (u *User) IsActive(now time.Time) bool {
	return u.ExpirationDate == nil || u.ExpirationDate.After(now)
}

// WithPermissions attaches the resolved permission set (union of direct
// ACLs and role-derived ACLs) to the user. Called by
// internal/middleware.BrowserAuth with the set its UserLoader resolves
// from user_acls and user_roles ⨝ role_acls.
func (u *User) WithPermissions(perms []string) *User {
	u.permissions = perms
	return u
}

// Permissions implements Principal.
func (u *User) Permissions() []string { return u.permissions }

// IsAdmin implements Principal.
func (u *User) IsAdmin() bool { return hasAdminACL(u.permissions) }

// RoleIDs is the association-proxy equivalent of SQLAlchemy's
// `role_ids`: a plain method returning the ids of assigned roles.
func (u *User) RoleIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(u.roles))
	for _, r := range u.roles {
		ids = append(ids, r.ID)
	}
	return ids
}

// MarshalJSON renders a User using explicit field mapping rather than
// reflection-driven isinstance chains.
func (u *User) MarshalJSON() ([]byte, error) {
	type alias struct {
		ID           uuid.UUID `json:"id"`
		Username     string    `json:"username"`
		FirstName    *string   `json:"first_name,omitempty"`
		LastName     *string   `json:"last_name,omitempty"`
		ContactEmail *string   `json:"contact_email,omitempty"`
		ContactPhone *string   `json:"contact_phone,omitempty"`
		Preferences  json.RawMessage `json:"preferences,omitempty"`
		CreatedAt    string    `json:"created_at"`
		UpdatedAt    string    `json:"updated_at"`
		Permissions  []string  `json:"permissions,omitempty"`
	}
	a := alias{
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		ContactEmail: u.ContactEmail,
		ContactPhone: u.ContactPhone,
		Preferences:  u.Preferences,
		CreatedAt:    u.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    u.UpdatedAt.UTC().Format(time.RFC3339),
		Permissions:  u.permissions,
	}
	return json.Marshal(a)
}

var usernameUnsafe = regexp.MustCompile(`[^a-z0-9_-]+`)

// Slugify lowercases and strips characters that are not ASCII-safe for a
// username, matching the "lowercase, ASCII-safe" invariant of spec.md §3.
func Slugify(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r > unicode.MaxASCII {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	slug := usernameUnsafe.ReplaceAllString(b.String(), "-")
	slug = strings.Trim(slug, "-")
	return slug
}
