// Package access compiles declarative row-level access policies into
// SQL queries, per spec.md §4.1. Each entity type declares, as static
// metadata, one Policy per access mode (create/read/update/delete);
// the compiler turns that policy into a SELECT over the entity's table
// that returns exactly the rows a given Principal may access under that
// mode.
package access

import "github.com/akz4ol/baselayer/internal/domain"

// Mode is one of the four access modes a policy is evaluated under.
type Mode string

const (
	Create Mode = "create"
	Read   Mode = "read"
	Update Mode = "update"
	Delete Mode = "delete"
)

// Policies bundles the four per-mode policies an entity type declares.
// The zero value (all nil) is invalid; use Defaults() to get spec.md's
// default of Public create/read, Restricted update/delete.
type Policies struct {
	Create Policy
	Read   Policy
	Update Policy
	Delete Policy
}

// For returns the policy registered for the given mode.
func (p Policies) For(mode Mode) Policy {
	switch mode {
	case Create:
		return p.Create
	case Read:
		return p.Read
	case Update:
		return p.Update
	case Delete:
		return p.Delete
	default:
		panic("access: unknown mode " + string(mode))
	}
}

// Defaults returns spec.md §3's default policy set: public create and
// read, restricted update and delete.
func Defaults() Policies {
	return Policies{
		Create: Public(),
		Read:   Public(),
		Update: Restricted(),
		Delete: Restricted(),
	}
}

// Entity is implemented by every mapped type that wants row-level
// access control. Table must match the name registered in the
// Registry so relationship chains can be resolved.
type Entity interface {
	Table() string
	AccessPolicies() Policies
}

// RowID is satisfied by mapped rows carrying a uuid primary key, used
// by the verified session (internal/session) to group pending rows by
// type and id for bulk verification.
type RowID interface {
	Entity
	RowID() string // stringified uuid; empty if not yet assigned (new row pre-flush)
}

// effectiveUserID resolves the id an AccessibleIfUserMatches chain
// compares against: the Token creator's id, never the Token's own id
// (spec.md §4.1 edge cases).
func effectiveUserID(p domain.Principal) string {
	return p.EffectiveUserID().String()
}
