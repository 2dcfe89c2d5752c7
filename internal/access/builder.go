package access

import "fmt"

// queryBuilder accumulates bind-parameter values and generates unique
// table aliases while a Policy tree is compiled into SQL text. Every
// Policy.compile call shares one builder so that placeholder numbering
// ($1, $2, ...) stays consistent across the whole compiled query.
type queryBuilder struct {
	args    []any
	aliasN  int
}

func newQueryBuilder() *queryBuilder {
	return &queryBuilder{}
}

// bind appends a value and returns its positional placeholder.
func (b *queryBuilder) bind(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

// alias returns a fresh table alias with the given prefix, unique
// within this compilation.
func (b *queryBuilder) alias(prefix string) string {
	b.aliasN++
	return fmt.Sprintf("%s%d", prefix, b.aliasN)
}
