package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/akz4ol/baselayer/internal/apperr"
	"github.com/akz4ol/baselayer/internal/jsonutil"
	"github.com/akz4ol/baselayer/internal/oauth"
	"github.com/akz4ol/baselayer/internal/signedcookie"
)

// BrowserAuth authenticates a request from the signed "user_id" cookie
// internal/oauth.Callback writes, the second authentication path
// spec.md §1 names alongside bearer tokens. It falls through to next
// without resolving a principal when the cookie is absent, so it can
// sit in front of both browser and API routes in the same chain —
// RequirePrincipal (or a handler's own check) rejects requests that end
// up with no principal at all.
func BrowserAuth(signer signedcookie.Signer, users UserLoader, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := signer.ReadCookie(r, oauth.UserCookieName)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := uuid.Parse(raw)
			if err != nil {
				signedcookie.ClearCookie(w, oauth.UserCookieName)
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if err != nil {
				logger.Error().Err(err).Msg("load browser-session user")
				jsonutil.ErrorFrom(w, apperr.Internal("load user", err))
				return
			}
			if user == nil || !user.IsActive(time.Now()) {
				jsonutil.ErrorFrom(w, apperr.Forbidden("user is no longer active"))
				return
			}

			perms, err := users.Permissions(r.Context(), user.ID)
			if err != nil {
				logger.Error().Err(err).Msg("load user permissions")
				jsonutil.ErrorFrom(w, apperr.Internal("load user permissions", err))
				return
			}
			user.WithPermissions(perms)

			ctx := WithPrincipal(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePrincipal rejects requests for which neither Auth nor
// BrowserAuth resolved a principal. Mount it after both in the chain.
func RequirePrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if PrincipalFrom(r.Context()) == nil {
			jsonutil.ErrorFrom(w, apperr.Unauthenticated("authentication required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
