package oauth

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogoutClearsBothCookies(t *testing.T) {
	rec := httptest.NewRecorder()

	Logout(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)

	byName := map[string]int{}
	for _, c := range cookies {
		byName[c.Name] = c.MaxAge
		assert.Equal(t, "", c.Value)
	}
	assert.Contains(t, byName, UserCookieName)
	assert.Contains(t, byName, OAuthUIDCookieName)
	assert.Negative(t, byName[UserCookieName])
}
