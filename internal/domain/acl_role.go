package domain

import (
	"time"

	"github.com/google/uuid"
)

// ACL is a named capability string, e.g. "Upload Data", "Manage Groups",
// or the sentinel SystemAdminACL. ACLs are seeded at schema bootstrap
// and immutable during normal operation (spec.md §3).
type ACL struct {
	ID        string // the capability name is itself the key
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Role is a named, string-keyed collection of ACLs assignable to a User.
type Role struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time

	acls []string
}

// WithACLs attaches the role's granted ACL names, loaded from role_acls.
func (r *Role) WithACLs(acls []string) *Role {
	r.acls = acls
	return r
}

// ACLNames is the association-proxy equivalent of SQLAlchemy's
// `acl_ids`.
func (r *Role) ACLNames() []string { return r.acls }

// SeedRoles describes the roles created at schema bootstrap. Unlike the
// gatewayops teacher's BuiltinRoles (scoped to one org), baselayer roles
// are global, matching cesium-ml/baselayer's flat role/ACL model.
var SeedRoles = []struct {
	Name string
	ACLs []string
}{
	{Name: "Super admin", ACLs: []string{SystemAdminACL}},
	{Name: "Full user", ACLs: []string{"Upload Data", "Comment", "Annotate"}},
	{Name: "View only", ACLs: []string{}},
}
