package store

import (
	"github.com/akz4ol/baselayer/internal/access"
	"github.com/akz4ol/baselayer/internal/registry"
)

// RegisterCoreEntities wires the two bundled example entities into
// both the relationship registry (for chain/clause traversal) and the
// access registry (for related-row policy lookups), the boot-time
// population SPEC_FULL.md §5 describes for application-defined
// entities.
func RegisterCoreEntities(rel *registry.Registry, reg *access.Registry) {
	rel.Register(registry.EntityMeta{
		Table: "groups",
		Relationships: map[string]registry.Relationship{
			// groups.id = group_users.group_id — the join column pair
			// happens to have the foreign key physically on the target
			// side, but the registry only needs an equi-join condition,
			// not which side declares the constraint.
			"members": {Name: "members", TargetTable: "group_users", ForeignKeyColumn: "id", TargetIDColumn: "group_id"},
		},
	})
	rel.Register(registry.EntityMeta{
		Table: "group_users",
		Relationships: map[string]registry.Relationship{
			"user":  {Name: "user", TargetTable: "users", ForeignKeyColumn: "user_id", TargetIDColumn: "id"},
			"group": {Name: "group", TargetTable: "groups", ForeignKeyColumn: "group_id", TargetIDColumn: "id"},
		},
	})
	rel.Register(registry.EntityMeta{Table: "users"})

	reg.RegisterEntity(Group{})
	reg.RegisterEntity(GroupUser{})
}
