// Package domain defines the core entities of the authenticated request
// plane: users, tokens, ACLs, and roles, plus the Principal abstraction
// every request resolves to.
package domain

import "github.com/google/uuid"

// Principal is a User or a Token. Every request resolves to exactly one.
type Principal interface {
	// EffectiveUserID returns the id used for AccessibleIfUserMatches
	// comparisons: the principal's own id for a User, the creator's id
	// for a Token.
	EffectiveUserID() uuid.UUID

	// Permissions returns the ACL names granted to this principal.
	Permissions() []string

	// IsAdmin reports whether the permission set contains the "System
	// admin" sentinel.
	IsAdmin() bool
}

// SystemAdminACL is the sentinel capability that grants admin bypass on
// every Restricted policy and every AccessibleIf* policy.
const SystemAdminACL = "System admin"

func hasAdminACL(perms []string) bool {
	for _, p := range perms {
		if p == SystemAdminACL {
			return true
		}
	}
	return false
}
