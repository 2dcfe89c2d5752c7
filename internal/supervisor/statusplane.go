package supervisor

import (
	"encoding/json"
	"net/http"
	"strings"
)

// StatusPlane is the placeholder server every process binds to during
// provisioning, returned in place of the real application until the
// migration gate opens — grounded on
// original_source/services/status_server/status_server.py.
type StatusPlane struct {
	AppTitle string
}

// NewStatusPlane builds a status plane announcing appTitle in its HTML
// response.
func NewStatusPlane(appTitle string) *StatusPlane {
	return &StatusPlane{AppTitle: appTitle}
}

// ServeHTTP answers every request with 503: JSON under /api/*, HTML
// everywhere else, matching MainAPIHandler/MainHandler's routing split
// in the original.
func (s *StatusPlane) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":  "error",
			"message": "System provisioning",
		})
		return
	}

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusServiceUnavailable)
	w.Write([]byte("<h2>" + s.AppTitle + " is being provisioned</h2>"))
	w.Write([]byte("<p>Check the supervisor's own logs to see how that is progressing.</p>"))
}
