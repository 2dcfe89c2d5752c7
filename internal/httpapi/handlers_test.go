package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akz4ol/baselayer/internal/audit"
	"github.com/akz4ol/baselayer/internal/domain"
	"github.com/akz4ol/baselayer/internal/fanout"
	"github.com/akz4ol/baselayer/internal/middleware"
)

type fakeUserLoader struct {
	users map[uuid.UUID]*domain.User
}

func (f fakeUserLoader) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return f.users[id], nil
}

func (f fakeUserLoader) Permissions(ctx context.Context, userID uuid.UUID) ([]string, error) {
	return nil, nil
}

type fakeAuditReader struct {
	events []audit.Event
}

func (f fakeAuditReader) Recent(ctx context.Context, limit int) ([]audit.Event, error) {
	return f.events, nil
}

func withPrincipal(req *http.Request, p domain.Principal) *http.Request {
	return req.WithContext(middleware.WithPrincipal(req.Context(), p))
}

func TestSocketAuthTokenHandler(t *testing.T) {
	issuer := fanout.NewTokenIssuer("shared-secret")
	handler := socketAuthTokenHandler(issuer)

	userID := uuid.New()
	req := withPrincipal(httptest.NewRequest(http.MethodGet, "/socket_auth_token", nil), &domain.User{ID: userID})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	issuedUserID, err := issuer.Verify(body.Data.Token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), issuedUserID)
}

func TestProfileHandler_ResolvesEffectiveUser(t *testing.T) {
	userID := uuid.New()
	user := &domain.User{ID: userID, Username: "alice"}
	users := fakeUserLoader{users: map[uuid.UUID]*domain.User{userID: user}}

	tok := &domain.Token{ID: uuid.New(), CreatedByID: userID}
	req := withPrincipal(httptest.NewRequest(http.MethodGet, "/baselayer/profile", nil), tok)
	rec := httptest.NewRecorder()

	profileHandler(users).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alice")
}

func TestProfileHandler_UnknownUserNotFound(t *testing.T) {
	users := fakeUserLoader{users: map[uuid.UUID]*domain.User{}}
	req := withPrincipal(httptest.NewRequest(http.MethodGet, "/baselayer/profile", nil), &domain.User{ID: uuid.New()})
	rec := httptest.NewRecorder()

	profileHandler(users).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuditDenialsHandler_RequiresAdmin(t *testing.T) {
	nonAdmin := (&domain.User{ID: uuid.New()}).WithPermissions([]string{"Comment"})
	req := withPrincipal(httptest.NewRequest(http.MethodGet, "/baselayer/audit/denials", nil), nonAdmin)
	rec := httptest.NewRecorder()

	auditDenialsHandler(fakeAuditReader{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuditDenialsHandler_AdminSeesEvents(t *testing.T) {
	admin := (&domain.User{ID: uuid.New()}).WithPermissions([]string{domain.SystemAdminACL})
	reader := fakeAuditReader{events: []audit.Event{{Table: "comments", Mode: "read"}}}

	req := withPrincipal(httptest.NewRequest(http.MethodGet, "/baselayer/audit/denials?limit=5", nil), admin)
	rec := httptest.NewRecorder()

	auditDenialsHandler(reader).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "comments")
}

func TestLogoutHandler_ClearsCookiesAndSucceeds(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/baselayer/logout", nil)
	rec := httptest.NewRecorder()

	logoutHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Result().Cookies())
}
