package supervisor

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusPlane_APIPathReturnsJSON(t *testing.T) {
	plane := NewStatusPlane("baselayer")
	req := httptest.NewRequest(http.MethodGet, "/api/baselayer/profile", nil)
	rec := httptest.NewRecorder()

	plane.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "error", body["status"])
}

func TestStatusPlane_OtherPathReturnsHTML(t *testing.T) {
	plane := NewStatusPlane("baselayer")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	plane.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "text/html", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "baselayer is being provisioned")
}
