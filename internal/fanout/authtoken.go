package fanout

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenTTL matches original_source's websocket auth token lifetime:
// short enough that a leaked token is useless within minutes, long
// enough to survive the round trip from issuance to the browser's
// first AUTH REQUEST reply.
const tokenTTL = 15 * time.Minute

// TokenIssuer mints the short-lived JWTs a browser presents to a
// wsserver connection's AUTH REQUEST, replacing PyJWT with
// golang-jwt/jwt/v5 per SPEC_FULL.md §3.
type TokenIssuer struct {
	secret []byte
}

// NewTokenIssuer keys the issuer on secret (config.AppConfig.SecretKey,
// the same key used everywhere else a shared HMAC secret is needed).
func NewTokenIssuer(secret string) TokenIssuer {
	return TokenIssuer{secret: []byte(secret)}
}

type claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Issue mints a token binding userID, valid for 15 minutes.
func (i TokenIssuer) Issue(userID string) (string, error) {
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	})
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("fanout: sign auth token: %w", err)
	}
	return signed, nil
}

// Verify validates a presented token and extracts its user_id claim,
// mirroring authenticate()'s jwt.decode/DecodeError/ExpiredSignatureError
// handling in original_source's websocket_server.py.
func (i TokenIssuer) Verify(raw string) (userID string, err error) {
	parsed, err := jwt.ParseWithClaims(raw, &claims{}, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", fmt.Errorf("fanout: verify auth token: %w", err)
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid || c.UserID == "" {
		return "", fmt.Errorf("fanout: auth token missing user_id claim")
	}
	return c.UserID, nil
}
