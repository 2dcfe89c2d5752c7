package access

import (
	"fmt"
	"strings"

	"github.com/akz4ol/baselayer/internal/domain"
)

// compile turns publicPolicy into an unfiltered row selection.
func (publicPolicy) compile(b *queryBuilder, reg *Registry, principal domain.Principal, e Entity, alias string) (string, error) {
	return publicSelect(e, alias), nil
}

func publicSelect(e Entity, alias string) string {
	return fmt.Sprintf("SELECT %s.id AS id FROM %s %s", alias, e.Table(), alias)
}

// compile turns restrictedPolicy into an always-false selection,
// unless the principal is an admin, in which case it behaves like
// Public.
func (restrictedPolicy) compile(b *queryBuilder, reg *Registry, principal domain.Principal, e Entity, alias string) (string, error) {
	if principal.IsAdmin() {
		return publicSelect(e, alias), nil
	}
	return fmt.Sprintf("%s WHERE FALSE", publicSelect(e, alias)), nil
}

// compile walks userMatchPolicy's relationship chain, joining each hop
// in turn, and filters the final hop's id against the principal's
// effective user id.
func (p userMatchPolicy) compile(b *queryBuilder, reg *Registry, principal domain.Principal, e Entity, alias string) (string, error) {
	if principal.IsAdmin() {
		return publicSelect(e, alias), nil
	}

	var joins []string
	currentTable := e.Table()
	currentAlias := alias
	for _, name := range p.chain {
		rel, err := reg.Relationship(currentTable, name)
		if err != nil {
			return "", err
		}
		nextAlias := b.alias("t")
		joins = append(joins, fmt.Sprintf(
			"JOIN %s %s ON %s.%s = %s.%s",
			rel.TargetTable, nextAlias, currentAlias, rel.ForeignKeyColumn, nextAlias, rel.TargetIDColumn,
		))
		currentTable = rel.TargetTable
		currentAlias = nextAlias
	}

	placeholder := b.bind(effectiveUserID(principal))
	query := fmt.Sprintf("SELECT %s.id AS id FROM %s %s", alias, e.Table(), alias)
	if len(joins) > 0 {
		query += " " + strings.Join(joins, " ")
	}
	query += fmt.Sprintf(" WHERE %s.id = %s", currentAlias, placeholder)
	return query, nil
}

// compile joins e's table to each related entity's own accessible-ids
// subquery, directly on the foreign key column — a single-step join,
// simplifying the original Python implementation's two-step
// join-then-subquery-join, since the relationship's foreign key and
// the related row's primary key already identify the same join
// condition the subquery would otherwise re-derive.
func (p relatedPolicy) compile(b *queryBuilder, reg *Registry, principal domain.Principal, e Entity, alias string) (string, error) {
	if principal.IsAdmin() {
		return publicSelect(e, alias), nil
	}

	query := fmt.Sprintf("SELECT %s.id AS id FROM %s %s", alias, e.Table(), alias)
	for _, clause := range p.clauses {
		rel, err := reg.Relationship(e.Table(), clause.Prop)
		if err != nil {
			return "", err
		}
		targetEntity, err := reg.EntityByTable(rel.TargetTable)
		if err != nil {
			return "", err
		}
		targetPolicy := targetEntity.AccessPolicies().For(clause.Mode)
		if targetPolicy.isPublic() {
			// An always-accessible related row constrains nothing; skip
			// the join entirely (mirrors the AND-identity rule this
			// policy would otherwise need a redundant join to express).
			continue
		}

		subAlias := b.alias("r")
		subSQL, err := targetPolicy.compile(b, reg, principal, targetEntity, subAlias)
		if err != nil {
			return "", err
		}
		joinAlias := b.alias("rj")
		query += fmt.Sprintf(
			" JOIN (%s) %s ON %s.id = %s.%s",
			subSQL, joinAlias, joinAlias, alias, rel.ForeignKeyColumn,
		)
	}
	return query, nil
}

// compile runs each sub-policy as its own accessible-ids subquery and
// joins it into e's row selection: inner JOIN for AND (every
// sub-policy must admit the row), LEFT JOIN plus an OR'd
// IS NOT NULL filter for OR (any one sub-policy admitting the row is
// enough).
func (c composedPolicy) compile(b *queryBuilder, reg *Registry, principal domain.Principal, e Entity, alias string) (string, error) {
	query := fmt.Sprintf("SELECT %s.id AS id FROM %s %s", alias, e.Table(), alias)

	var orAliases []string
	for _, sub := range c.policies {
		subAlias := b.alias("s")
		subSQL, err := sub.compile(b, reg, principal, e, subAlias)
		if err != nil {
			return "", err
		}
		joinAlias := b.alias("sj")
		if c.logic == "AND" {
			query += fmt.Sprintf(" JOIN (%s) %s ON %s.id = %s.id", subSQL, joinAlias, joinAlias, alias)
		} else {
			query += fmt.Sprintf(" LEFT JOIN (%s) %s ON %s.id = %s.id", subSQL, joinAlias, joinAlias, alias)
			orAliases = append(orAliases, joinAlias)
		}
	}

	if c.logic == "OR" && len(orAliases) > 0 {
		conds := make([]string, len(orAliases))
		for i, a := range orAliases {
			conds[i] = fmt.Sprintf("%s.id IS NOT NULL", a)
		}
		query += " WHERE " + strings.Join(conds, " OR ")
	}

	return query, nil
}

// compile delegates to the application-supplied function.
func (p customPolicy) compile(b *queryBuilder, reg *Registry, principal domain.Principal, e Entity, alias string) (string, error) {
	return p.fn(b.bind, principal, e, alias)
}
