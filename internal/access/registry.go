package access

import (
	"fmt"

	"github.com/akz4ol/baselayer/internal/registry"
)

// Registry pairs the relationship metadata of internal/registry with a
// catalog of live Entity values, so that
// AccessibleIfRelatedRowsAreAccessible can look up a related table's
// own declared policy for a given mode (the Go analogue of the Python
// original reading `getattr(join_target, mode)` off the mapped class).
type Registry struct {
	rel      *registry.Registry
	entities map[string]Entity
}

// NewRegistry wraps a relationship registry with an empty entity
// catalog.
func NewRegistry(rel *registry.Registry) *Registry {
	return &Registry{rel: rel, entities: make(map[string]Entity)}
}

// RegisterEntity adds e to the catalog, keyed by its table name, so
// related-row policies can be resolved during compilation.
func (r *Registry) RegisterEntity(e Entity) {
	r.entities[e.Table()] = e
}

// EntityByTable returns the registered Entity for a table name.
func (r *Registry) EntityByTable(table string) (Entity, error) {
	e, ok := r.entities[table]
	if !ok {
		return nil, fmt.Errorf("access: no entity registered for table %q", table)
	}
	return e, nil
}

// Relationship resolves a named relationship on a table via the
// wrapped relationship registry.
func (r *Registry) Relationship(table, name string) (registry.Relationship, error) {
	return r.rel.Relationship(table, name)
}
