package middleware

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/akz4ol/baselayer/internal/domain"
)

func TestPrincipalFrom_AbsentReturnsNil(t *testing.T) {
	assert.Nil(t, PrincipalFrom(context.Background()))
}

func TestWithPrincipalAndPrincipalFrom(t *testing.T) {
	user := &domain.User{ID: uuid.New()}
	ctx := WithPrincipal(context.Background(), user)

	got := PrincipalFrom(ctx)
	require := assert.New(t)
	require.NotNil(got)
	require.Equal(user.ID, got.EffectiveUserID())
}
