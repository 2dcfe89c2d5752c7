package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/akz4ol/baselayer/internal/access"
)

// Group is the bundled example entity SPEC_FULL.md §4 ships to
// exercise the access registry end-to-end: a generic team/workspace
// container, modeled on cesium-ml/baselayer's own Group
// (original_source/app/models.py).
type Group struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Group) Table() string { return "groups" }

// AccessPolicies: any member (reachable via the group_users join) may
// read a group; only admins may create/update/delete one directly —
// membership changes go through GroupUser instead.
func (Group) AccessPolicies() access.Policies {
	return access.Policies{
		Create: access.Restricted(),
		Read:   access.AccessibleByUser("members.user"),
		Update: access.Restricted(),
		Delete: access.Restricted(),
	}
}

func (g Group) RowID() string { return g.ID.String() }

// GroupUser is the group_users join row: one user's membership in one
// group.
type GroupUser struct {
	GroupID   uuid.UUID
	UserID    uuid.UUID
	CreatedAt time.Time
}

func (GroupUser) Table() string { return "group_users" }

// AccessPolicies: a membership row is readable by anyone who can read
// its group — members see their co-members, nobody else does.
func (GroupUser) AccessPolicies() access.Policies {
	readable := access.AccessibleIfRelatedRowsAreAccessible(
		access.RelatedClause{Prop: "group", Mode: access.Read},
	)
	return access.Policies{
		Create: access.Restricted(),
		Read:   readable,
		Update: access.Restricted(),
		Delete: access.Restricted(),
	}
}

// RowID has no single-column primary key; the composite key is
// rendered as "groupID:userID" for bulk-verification bookkeeping.
func (gu GroupUser) RowID() string {
	return gu.GroupID.String() + ":" + gu.UserID.String()
}
