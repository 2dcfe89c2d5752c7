package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akz4ol/baselayer/internal/domain"
)

type fakeTokenLoader struct {
	token *domain.Token
	perms []string
}

func (f fakeTokenLoader) GetByID(ctx context.Context, id uuid.UUID) (*domain.Token, error) {
	if f.token == nil || f.token.ID != id {
		return nil, nil
	}
	return f.token, nil
}

func (f fakeTokenLoader) Permissions(ctx context.Context, tokenID uuid.UUID) ([]string, error) {
	return f.perms, nil
}

type fakeUserLoader struct {
	user *domain.User
}

func (f fakeUserLoader) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, nil
	}
	return f.user, nil
}

func (f fakeUserLoader) Permissions(ctx context.Context, userID uuid.UUID) ([]string, error) {
	return nil, nil
}

func terminal() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p := PrincipalFrom(r.Context()); p != nil {
			w.Header().Set("X-Principal", p.EffectiveUserID().String())
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuth_NoCredentialPassesThrough(t *testing.T) {
	handler := Auth(fakeTokenLoader{}, fakeUserLoader{}, zerolog.Nop())(terminal())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Principal"))
}

func TestAuth_ValidBearerResolvesPrincipal(t *testing.T) {
	secret, hash, err := domain.NewTokenSecret(4)
	require.NoError(t, err)

	creatorID := uuid.New()
	tok := &domain.Token{ID: uuid.New(), CreatedByID: creatorID, SecretHash: hash}
	creator := &domain.User{ID: creatorID}

	handler := Auth(
		fakeTokenLoader{token: tok, perms: []string{"Comment"}},
		fakeUserLoader{user: creator},
		zerolog.Nop(),
	)(terminal())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "token "+tok.Bearer(secret))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, creatorID.String(), rec.Header().Get("X-Principal"))
}

func TestAuth_InvalidSecretRejected(t *testing.T) {
	_, hash, err := domain.NewTokenSecret(4)
	require.NoError(t, err)
	tok := &domain.Token{ID: uuid.New(), CreatedByID: uuid.New(), SecretHash: hash}

	handler := Auth(fakeTokenLoader{token: tok}, fakeUserLoader{}, zerolog.Nop())(terminal())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "token "+tok.Bearer("wrong-secret"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_AlreadyResolvedPrincipalIsNotOverwritten(t *testing.T) {
	existing := &domain.User{ID: uuid.New()}
	handler := Auth(fakeTokenLoader{}, fakeUserLoader{}, zerolog.Nop())(terminal())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithPrincipal(req.Context(), existing))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, existing.ID.String(), rec.Header().Get("X-Principal"))
}
