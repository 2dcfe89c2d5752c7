package access

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/akz4ol/baselayer/internal/domain"
)

// CompileListQuery compiles e's declared policy for mode into a
// standalone SQL query and its bind arguments, returning every row id
// of e's table that principal may access under that mode.
func CompileListQuery(reg *Registry, principal domain.Principal, e Entity, mode Mode) (string, []any, error) {
	policy := e.AccessPolicies().For(mode)
	if policy == nil {
		return "", nil, fmt.Errorf("access: entity %q declares no policy for mode %q", e.Table(), mode)
	}
	b := newQueryBuilder()
	sql, err := policy.compile(b, reg, principal, e, b.alias("a"))
	if err != nil {
		return "", nil, err
	}
	return sql, b.args, nil
}

// CompileIsAccessibleQuery compiles a boolean point query: does
// principal have mode-access to the row identified by id.
func CompileIsAccessibleQuery(reg *Registry, principal domain.Principal, e Entity, mode Mode, id string) (string, []any, error) {
	policy := e.AccessPolicies().For(mode)
	if policy == nil {
		return "", nil, fmt.Errorf("access: entity %q declares no policy for mode %q", e.Table(), mode)
	}
	b := newQueryBuilder()
	listSQL, err := policy.compile(b, reg, principal, e, b.alias("a"))
	if err != nil {
		return "", nil, err
	}
	idPlaceholder := b.bind(id)
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM (%s) x WHERE x.id = %s)", listSQL, idPlaceholder)
	return query, b.args, nil
}

// IsAccessibleBy executes CompileIsAccessibleQuery against db and
// returns its boolean result — the Go equivalent of the Python
// original's `obj.is_accessible_by(user)` instance method.
func IsAccessibleBy(ctx context.Context, db *sql.DB, reg *Registry, principal domain.Principal, e Entity, mode Mode, id string) (bool, error) {
	query, args, err := CompileIsAccessibleQuery(reg, principal, e, mode, id)
	if err != nil {
		return false, err
	}
	var ok bool
	if err := db.QueryRowContext(ctx, query, args...).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}
