package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/akz4ol/baselayer/internal/apperr"
	"github.com/akz4ol/baselayer/internal/domain"
	"github.com/akz4ol/baselayer/internal/jsonutil"
)

// TokenLoader resolves a bearer token's row and its delegated ACLs,
// the surface store.TokenRepository implements.
type TokenLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Token, error)
	Permissions(ctx context.Context, tokenID uuid.UUID) ([]string, error)
}

// UserLoader resolves a user row and its derived ACLs, the surface
// store.UserRepository implements.
type UserLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Permissions(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// Auth validates the "Authorization: token <id>.<secret>" header
// against tokens, resolving the delegating creator through users so an
// expired creator cannot keep acting through a still-valid token
// (spec.md §3, "a Token's effective user is its creator"). It is a
// pass-through, like BrowserAuth, when no bearer credential is
// present or a principal was already resolved upstream in the chain —
// RequirePrincipal is what actually rejects an unauthenticated
// request.
func Auth(tokens TokenLoader, users UserLoader, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if PrincipalFrom(r.Context()) != nil {
				next.ServeHTTP(w, r)
				return
			}

			raw := bearerCredential(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, secret, err := domain.ParseBearer(raw)
			if err != nil {
				jsonutil.ErrorFrom(w, apperr.Unauthenticated("malformed bearer token"))
				return
			}

			token, err := tokens.GetByID(r.Context(), id)
			if err != nil {
				logger.Error().Err(err).Msg("load token")
				jsonutil.ErrorFrom(w, apperr.Internal("load token", err))
				return
			}
			if token == nil || !token.VerifySecret(secret) {
				jsonutil.ErrorFrom(w, apperr.Unauthenticated("invalid or unknown token"))
				return
			}

			creator, err := users.GetByID(r.Context(), token.CreatedByID)
			if err != nil {
				logger.Error().Err(err).Msg("load token creator")
				jsonutil.ErrorFrom(w, apperr.Internal("load token creator", err))
				return
			}
			if creator == nil || !creator.IsActive(time.Now()) {
				jsonutil.ErrorFrom(w, apperr.Forbidden("token creator is no longer active"))
				return
			}

			perms, err := tokens.Permissions(r.Context(), token.ID)
			if err != nil {
				logger.Error().Err(err).Msg("load token permissions")
				jsonutil.ErrorFrom(w, apperr.Internal("load token permissions", err))
				return
			}
			token.WithPermissions(perms)

			logger.Debug().Str("token_id", token.ID.String()).Str("created_by", creator.ID.String()).Msg("request authenticated")

			ctx := WithPrincipal(r.Context(), token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerCredential(r *http.Request) string {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "token") {
		return parts[1]
	}
	return r.URL.Query().Get("token")
}
