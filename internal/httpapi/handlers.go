package httpapi

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/akz4ol/baselayer/internal/apperr"
	"github.com/akz4ol/baselayer/internal/audit"
	"github.com/akz4ol/baselayer/internal/fanout"
	"github.com/akz4ol/baselayer/internal/jsonutil"
	"github.com/akz4ol/baselayer/internal/middleware"
	"github.com/akz4ol/baselayer/internal/oauth"
)

// socketAuthTokenHandler issues the short-lived JWT a browser presents
// to its websocket connection's AUTH REQUEST handshake
// (internal/fanout.TokenIssuer, spec.md §4.3).
func socketAuthTokenHandler(issuer fanout.TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := middleware.PrincipalFrom(r.Context())
		token, err := issuer.Issue(principal.EffectiveUserID().String())
		if err != nil {
			jsonutil.ErrorFrom(w, apperr.Internal("issue socket auth token", err))
			return
		}
		jsonutil.Success(w, http.StatusOK, map[string]string{"token": token}, nil)
	}
}

// profileHandler returns the current effective user's serialized
// profile (SPEC_FULL.md §6 item 2). For a Token principal this is the
// delegating creator, since a Token has no profile of its own —
// EffectiveUserID already resolves to the right row either way.
func profileHandler(users middleware.UserLoader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := middleware.PrincipalFrom(r.Context())
		user, err := users.GetByID(r.Context(), principal.EffectiveUserID())
		if err != nil {
			jsonutil.ErrorFrom(w, apperr.Internal("load profile", err))
			return
		}
		if user == nil {
			jsonutil.ErrorFrom(w, apperr.NotFound("user not found"))
			return
		}
		jsonutil.Success(w, http.StatusOK, user, nil)
	}
}

// auditDenialsHandler exposes the durable audit trail (internal/audit,
// SPEC_FULL.md §3) as a queryable admin endpoint: the "queryable
// append-only audit store" the ClickHouse sink backs has to be
// queryable from somewhere.
func auditDenialsHandler(reader audit.Reader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := middleware.PrincipalFrom(r.Context())
		if !principal.IsAdmin() {
			jsonutil.ErrorFrom(w, apperr.Access("admin permission required"))
			return
		}

		limit := 100
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				limit = n
			}
		}

		events, err := reader.Recent(r.Context(), limit)
		if err != nil {
			jsonutil.ErrorFrom(w, apperr.Internal("load audit denials", err))
			return
		}
		jsonutil.Success(w, http.StatusOK, events, nil)
	}
}

// logoutHandler clears both signed browser-session cookies.
func logoutHandler(w http.ResponseWriter, r *http.Request) {
	oauth.Logout(w)
	jsonutil.Success(w, http.StatusOK, nil, nil)
}

func oauthLoginHandler(provider *oauth.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := randomState()
		http.SetCookie(w, &http.Cookie{Name: "oauth_state", Value: state, Path: "/", HttpOnly: true})
		http.Redirect(w, r, provider.AuthCodeURL(state), http.StatusFound)
	}
}

func oauthCallbackHandler(provider *oauth.Provider, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stateCookie, err := r.Cookie("oauth_state")
		if err != nil || r.URL.Query().Get("state") != stateCookie.Value {
			jsonutil.ErrorFrom(w, apperr.Invalid("invalid oauth state"))
			return
		}

		if err := provider.Callback(w, r); err != nil {
			logger.Warn().Err(err).Msg("oauth callback failed")
			jsonutil.ErrorFrom(w, apperr.Unauthenticated("oauth login failed"))
			return
		}

		http.Redirect(w, r, "/", http.StatusFound)
	}
}

func randomState() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
