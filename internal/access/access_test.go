package access

import (
	"testing"
	"time"

	"github.com/akz4ol/baselayer/internal/domain"
	"github.com/akz4ol/baselayer/internal/registry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixtureEntity struct {
	table    string
	policies Policies
}

func (f fixtureEntity) Table() string            { return f.table }
func (f fixtureEntity) AccessPolicies() Policies { return f.policies }

func newUser(admin bool) *domain.User {
	u := &domain.User{ID: uuid.New(), Username: "alice", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	if admin {
		return u.WithPermissions([]string{domain.SystemAdminACL})
	}
	return u.WithPermissions([]string{"Comment"})
}

func newBaseRegistry() *registry.Registry {
	r := registry.New()
	r.Register(registry.EntityMeta{
		Table: "notes",
		Relationships: map[string]registry.Relationship{
			"owner": {Name: "owner", TargetTable: "users", ForeignKeyColumn: "owner_id", TargetIDColumn: "id"},
		},
	})
	r.Register(registry.EntityMeta{Table: "users"})
	r.Register(registry.EntityMeta{Table: "groups"})
	r.Register(registry.EntityMeta{
		Table: "documents",
		Relationships: map[string]registry.Relationship{
			"group": {Name: "group", TargetTable: "groups", ForeignKeyColumn: "group_id", TargetIDColumn: "id"},
		},
	})
	return r
}

func TestPublicPolicy_Compile(t *testing.T) {
	reg := NewRegistry(newBaseRegistry())
	e := fixtureEntity{table: "notes", policies: Policies{Read: Public()}}
	b := newQueryBuilder()
	sqlText, err := e.AccessPolicies().Read.compile(b, reg, newUser(false), e, "a1")
	require.NoError(t, err)
	assert.Equal(t, "SELECT a1.id AS id FROM notes a1", sqlText)
	assert.Empty(t, b.args)
}

func TestRestrictedPolicy_Compile(t *testing.T) {
	reg := NewRegistry(newBaseRegistry())
	e := fixtureEntity{table: "notes", policies: Policies{Update: Restricted()}}

	b := newQueryBuilder()
	nonAdminSQL, err := e.AccessPolicies().Update.compile(b, reg, newUser(false), e, "a1")
	require.NoError(t, err)
	assert.Equal(t, "SELECT a1.id AS id FROM notes a1 WHERE FALSE", nonAdminSQL)

	b2 := newQueryBuilder()
	adminSQL, err := e.AccessPolicies().Update.compile(b2, reg, newUser(true), e, "a1")
	require.NoError(t, err)
	assert.Equal(t, "SELECT a1.id AS id FROM notes a1", adminSQL)
}

func TestUserMatchPolicy_Compile(t *testing.T) {
	reg := NewRegistry(newBaseRegistry())
	e := fixtureEntity{table: "notes", policies: Policies{Read: AccessibleByUser("owner")}}
	user := newUser(false)

	b := newQueryBuilder()
	sqlText, err := e.AccessPolicies().Read.compile(b, reg, user, e, "a1")
	require.NoError(t, err)
	assert.Equal(t, "SELECT a1.id AS id FROM notes a1 JOIN users t1 ON a1.owner_id = t1.id WHERE t1.id = $1", sqlText)
	require.Len(t, b.args, 1)
	assert.Equal(t, user.EffectiveUserID().String(), b.args[0])
}

func TestAccessibleByUser_PanicsOnEmptyChain(t *testing.T) {
	assert.Panics(t, func() { AccessibleByUser("") })
	assert.Panics(t, func() { AccessibleByUser("...") })
}

func TestRelatedPolicy_SkipsPublicTarget(t *testing.T) {
	reg := NewRegistry(newBaseRegistry())
	group := fixtureEntity{table: "groups", policies: Policies{Read: Public()}}
	reg.RegisterEntity(group)

	doc := fixtureEntity{
		table:    "documents",
		policies: Policies{Read: AccessibleIfRelatedRowsAreAccessible(RelatedClause{Prop: "group", Mode: Read})},
	}

	b := newQueryBuilder()
	sqlText, err := doc.AccessPolicies().Read.compile(b, reg, newUser(false), doc, "a1")
	require.NoError(t, err)
	assert.Equal(t, "SELECT a1.id AS id FROM documents a1", sqlText)
	assert.Empty(t, b.args)
}

func TestRelatedPolicy_JoinsNonPublicTarget(t *testing.T) {
	reg := NewRegistry(newBaseRegistry())
	group := fixtureEntity{table: "groups", policies: Policies{Read: Restricted()}}
	reg.RegisterEntity(group)

	doc := fixtureEntity{
		table:    "documents",
		policies: Policies{Read: AccessibleIfRelatedRowsAreAccessible(RelatedClause{Prop: "group", Mode: Read})},
	}

	b := newQueryBuilder()
	sqlText, err := doc.AccessPolicies().Read.compile(b, reg, newUser(false), doc, "a1")
	require.NoError(t, err)
	assert.Contains(t, sqlText, "JOIN (SELECT r1.id AS id FROM groups r1 WHERE FALSE) rj2 ON rj2.id = a1.group_id")
}

func TestComposed_AndDropsPublic(t *testing.T) {
	p := And(Public(), Restricted())
	assert.Equal(t, Restricted(), p)
}

func TestComposed_OrAbsorbsPublic(t *testing.T) {
	p := Or(Restricted(), Public())
	assert.True(t, p.isPublic())
}

func TestComposed_AndAllPublicCollapsesToPublic(t *testing.T) {
	p := And(Public(), Public())
	assert.True(t, p.isPublic())
}

func TestComposed_Compile_AND(t *testing.T) {
	reg := NewRegistry(newBaseRegistry())
	e := fixtureEntity{table: "notes"}
	policy := Composed("AND", AccessibleByUser("owner"), Restricted())

	b := newQueryBuilder()
	sqlText, err := policy.compile(b, reg, newUser(false), e, "a1")
	require.NoError(t, err)
	assert.Contains(t, sqlText, "JOIN (")
	assert.NotContains(t, sqlText, "LEFT JOIN")
}

func TestComposed_Compile_OR(t *testing.T) {
	reg := NewRegistry(newBaseRegistry())
	e := fixtureEntity{table: "notes"}
	policy := Composed("OR", AccessibleByUser("owner"), Restricted())

	b := newQueryBuilder()
	sqlText, err := policy.compile(b, reg, newUser(false), e, "a1")
	require.NoError(t, err)
	assert.Contains(t, sqlText, "LEFT JOIN")
	assert.Contains(t, sqlText, "IS NOT NULL OR")
}

func TestComposed_InvalidLogicPanics(t *testing.T) {
	assert.Panics(t, func() { Composed("XOR", Public()) })
}

func TestCompileListQuery_And_CompileIsAccessibleQuery(t *testing.T) {
	reg := NewRegistry(newBaseRegistry())
	e := fixtureEntity{table: "notes", policies: Policies{Read: AccessibleByUser("owner")}}
	user := newUser(false)

	listSQL, listArgs, err := CompileListQuery(reg, user, e, Read)
	require.NoError(t, err)
	assert.Contains(t, listSQL, "FROM notes")
	assert.Len(t, listArgs, 1)

	existsSQL, existsArgs, err := CompileIsAccessibleQuery(reg, user, e, Read, "some-id")
	require.NoError(t, err)
	assert.Contains(t, existsSQL, "SELECT EXISTS(")
	assert.Len(t, existsArgs, 2)
	assert.Equal(t, "some-id", existsArgs[1])
}

func TestCompileListQuery_UndeclaredPolicyErrors(t *testing.T) {
	reg := NewRegistry(newBaseRegistry())
	e := fixtureEntity{table: "notes", policies: Policies{Read: Public()}}
	_, _, err := CompileListQuery(reg, newUser(false), e, Create)
	assert.Error(t, err)
}
