package access

import "github.com/akz4ol/baselayer/internal/domain"

// Policy is a compiled access-control rule: given a Principal and an
// Entity, it contributes a SELECT over the entity's table (or a join
// fragment participating in one) that yields exactly the ids that
// principal may touch under the mode it was declared for.
//
// compile is unexported: Policy variants are only ever produced by the
// constructors in this file, and only ever driven by the compiler in
// compile.go and query.go.
type Policy interface {
	compile(b *queryBuilder, reg *Registry, principal domain.Principal, e Entity, alias string) (string, error)
	isPublic() bool
}

// Public grants every principal, including unauthenticated ones,
// access to every row.
func Public() Policy { return publicPolicy{} }

type publicPolicy struct{}

func (publicPolicy) isPublic() bool { return true }

// Restricted grants access to admins only.
func Restricted() Policy { return restrictedPolicy{} }

type restrictedPolicy struct{}

func (restrictedPolicy) isPublic() bool { return false }

// AccessibleByUser grants access when following the named relationship
// chain from the entity to a User row lands on the requesting
// principal's effective user id. chain is dot-separated, e.g.
// "group.users" or "owner". An empty chain is a construction-time
// error (spec.md §4.1: "a policy with an empty relationship chain must
// be rejected at policy construction time, not at query time").
func AccessibleByUser(chain string) Policy {
	names := splitChain(chain)
	if len(names) == 0 {
		panic("access: AccessibleByUser requires a non-empty relationship chain")
	}
	return userMatchPolicy{chain: names}
}

type userMatchPolicy struct {
	chain []string
}

func (userMatchPolicy) isPublic() bool { return false }

func splitChain(chain string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(chain); i++ {
		if i == len(chain) || chain[i] == '.' {
			if i > start {
				out = append(out, chain[start:i])
			}
			start = i + 1
		}
	}
	return out
}

// RelatedClause names one relationship to check, under one mode, for
// AccessibleIfRelatedRowsAreAccessible.
type RelatedClause struct {
	Prop string
	Mode Mode
}

// AccessibleIfRelatedRowsAreAccessible grants access when the row
// reachable via each listed relationship is itself accessible, under
// that relationship's declared mode, to the same principal. All
// clauses must pass (conjunction); use Composed for an OR across
// relationships.
func AccessibleIfRelatedRowsAreAccessible(clauses ...RelatedClause) Policy {
	if len(clauses) == 0 {
		panic("access: AccessibleIfRelatedRowsAreAccessible requires at least one clause")
	}
	return relatedPolicy{clauses: clauses}
}

type relatedPolicy struct {
	clauses []RelatedClause
}

func (relatedPolicy) isPublic() bool { return false }

// CustomFunc implements application-specific access logic that the
// declarative variants cannot express. bind allocates a shared
// placeholder for a literal value used in the returned SQL fragment.
type CustomFunc func(bind func(v any) string, principal domain.Principal, e Entity, alias string) (string, error)

// Custom wraps an application-supplied SQL fragment generator.
func Custom(fn CustomFunc) Policy { return customPolicy{fn: fn} }

type customPolicy struct {
	fn CustomFunc
}

func (customPolicy) isPublic() bool { return false }

// Composed combines policies under "AND" or "OR" logic, applying
// spec.md §4.1's simplification rules: under AND, a Public sub-policy
// contributes nothing (identity element) and is dropped; under OR, a
// Public sub-policy absorbs the whole composition, which collapses to
// Public. Panics if logic is not "AND" or "OR", or if policies is
// empty.
func Composed(logic string, policies ...Policy) Policy {
	if logic != "AND" && logic != "OR" {
		panic(`access: Composed logic must be "AND" or "OR", got ` + logic)
	}
	if len(policies) == 0 {
		panic("access: Composed requires at least one policy")
	}

	if logic == "OR" {
		for _, p := range policies {
			if p.isPublic() {
				return Public()
			}
		}
		return composedPolicy{policies: policies, logic: logic}
	}

	kept := make([]Policy, 0, len(policies))
	for _, p := range policies {
		if p.isPublic() {
			continue
		}
		kept = append(kept, p)
	}
	if len(kept) == 0 {
		return Public()
	}
	if len(kept) == 1 {
		return kept[0]
	}
	return composedPolicy{policies: kept, logic: logic}
}

type composedPolicy struct {
	policies []Policy
	logic    string
}

func (c composedPolicy) isPublic() bool {
	return false // Composed already collapses an all-Public OR to publicPolicy{} above.
}

// And combines this policy with others under AND.
func (c composedPolicy) And(others ...Policy) Policy {
	return Composed("AND", append([]Policy{c}, others...)...)
}

// Or combines this policy with others under OR.
func (c composedPolicy) Or(others ...Policy) Policy {
	return Composed("OR", append([]Policy{c}, others...)...)
}

// And returns p AND others, applying the same absorption rules as
// Composed. Exposed as a package-level helper since most Policy
// variants don't carry their own And/Or methods.
func And(p Policy, others ...Policy) Policy {
	return Composed("AND", append([]Policy{p}, others...)...)
}

// Or returns p OR others.
func Or(p Policy, others ...Policy) Policy {
	return Composed("OR", append([]Policy{p}, others...)...)
}
