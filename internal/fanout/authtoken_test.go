package fanout

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuerIssueAndVerify(t *testing.T) {
	issuer := NewTokenIssuer("shared-secret")

	signed, err := issuer.Issue("user-42")
	require.NoError(t, err)

	userID, err := issuer.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-42", userID)
}

func TestTokenIssuerVerify_WrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("shared-secret")
	other := NewTokenIssuer("different-secret")

	signed, err := issuer.Issue("user-42")
	require.NoError(t, err)

	_, err = other.Verify(signed)
	assert.Error(t, err)
}

func TestTokenIssuerVerify_Expired(t *testing.T) {
	issuer := NewTokenIssuer("shared-secret")
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: "user-42",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now.Add(-2 * tokenTTL)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-tokenTTL)),
		},
	})
	signed, err := tok.SignedString([]byte("shared-secret"))
	require.NoError(t, err)

	_, err = issuer.Verify(signed)
	assert.Error(t, err)
}
