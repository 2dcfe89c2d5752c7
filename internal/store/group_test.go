package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akz4ol/baselayer/internal/access"
	"github.com/akz4ol/baselayer/internal/domain"
	"github.com/akz4ol/baselayer/internal/registry"
)

func TestRegisterCoreEntities_GroupReadChainsThroughMembership(t *testing.T) {
	rel := registry.New()
	reg := access.NewRegistry(rel)
	RegisterCoreEntities(rel, reg)

	user := (&domain.User{ID: uuid.New()}).WithPermissions([]string{"Comment"})

	sqlText, args, err := access.CompileListQuery(reg, user, Group{}, access.Read)
	require.NoError(t, err)
	assert.Contains(t, sqlText, "FROM groups")
	assert.Contains(t, sqlText, "JOIN group_users")
	assert.Contains(t, sqlText, "JOIN users")
	require.Len(t, args, 1)
	assert.Equal(t, user.EffectiveUserID().String(), args[0])
}

func TestRegisterCoreEntities_GroupUserReadJoinsGroupAccessibility(t *testing.T) {
	rel := registry.New()
	reg := access.NewRegistry(rel)
	RegisterCoreEntities(rel, reg)

	user := (&domain.User{ID: uuid.New()}).WithPermissions([]string{"Comment"})

	sqlText, _, err := access.CompileListQuery(reg, user, GroupUser{}, access.Read)
	require.NoError(t, err)
	assert.Contains(t, sqlText, "FROM group_users")
	assert.Contains(t, sqlText, "JOIN (SELECT")
}

func TestGroup_AdminBypassesMembershipCheck(t *testing.T) {
	rel := registry.New()
	reg := access.NewRegistry(rel)
	RegisterCoreEntities(rel, reg)

	admin := (&domain.User{ID: uuid.New()}).WithPermissions([]string{domain.SystemAdminACL})

	sqlText, args, err := access.CompileListQuery(reg, admin, Group{}, access.Read)
	require.NoError(t, err)
	assert.Equal(t, "SELECT a1.id AS id FROM groups a1", sqlText)
	assert.Empty(t, args)
}

func TestGroup_RowIDAndTable(t *testing.T) {
	g := Group{ID: uuid.New()}
	assert.Equal(t, "groups", g.Table())
	assert.Equal(t, g.ID.String(), g.RowID())
}
