// Package signedcookie implements the HMAC-signed cookie pair
// internal/oauth writes and internal/middleware's browser-auth path
// reads back (SPEC_FULL.md §5, "OAuth2 as external collaborator"),
// grounded on the teacher's app.secret_key pattern generalized from a
// single JWT signing key to a generic value-signing primitive.
package signedcookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"
)

// ErrInvalidSignature is returned when a cookie's signature does not
// match its value, or the cookie is malformed.
var ErrInvalidSignature = errors.New("signedcookie: invalid signature")

// Signer signs and verifies cookie values with a shared secret.
type Signer struct {
	secret []byte
}

// New returns a Signer keyed on secret (config.AppConfig.SecretKey).
func New(secret string) Signer {
	return Signer{secret: []byte(secret)}
}

func (s Signer) sign(value string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Encode returns "value.signature" ready to store as a cookie's Value.
func (s Signer) Encode(value string) string {
	return value + "." + s.sign(value)
}

// Decode verifies and extracts the value from an Encode-produced
// string, rejecting anything whose signature does not match.
func (s Signer) Decode(signed string) (string, error) {
	idx := strings.LastIndexByte(signed, '.')
	if idx < 0 {
		return "", ErrInvalidSignature
	}
	value, sig := signed[:idx], signed[idx+1:]
	want := s.sign(value)
	if !hmac.Equal([]byte(sig), []byte(want)) {
		return "", ErrInvalidSignature
	}
	return value, nil
}

// SetCookie writes a signed, HttpOnly cookie named name carrying value.
func (s Signer) SetCookie(w http.ResponseWriter, name, value string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    s.Encode(value),
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ReadCookie reads and verifies a signed cookie previously written by
// SetCookie, returning its plaintext value.
func (s Signer) ReadCookie(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		return "", err
	}
	return s.Decode(c.Value)
}

// ClearCookie overwrites a cookie with an immediately expired one,
// used by the logout handler.
func ClearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
