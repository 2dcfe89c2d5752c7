// Package jsonutil renders the success/error envelope every baselayer
// HTTP handler writes, and the explicit per-entity JSON marshaling the
// domain types implement, replacing the original implementation's
// isinstance-chain JSONEncoder.Default with named Go MarshalJSON
// methods (see internal/domain).
package jsonutil

import (
	"encoding/json"
	"net/http"

	"github.com/akz4ol/baselayer/internal/apperr"
)

// Success writes {"status":"success","data":<data>} plus any extra
// fields, at status (defaulting to 200 when zero).
func Success(w http.ResponseWriter, status int, data any, extra map[string]any) {
	if status == 0 {
		status = http.StatusOK
	}
	body := map[string]any{"status": "success", "data": data}
	for k, v := range extra {
		body[k] = v
	}
	writeJSON(w, status, body)
}

// Error writes {"status":"error","message":<msg>,"data":<data>} at
// status, plus any extra fields.
func Error(w http.ResponseWriter, status int, message string, data any, extra map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	body := map[string]any{"status": "error", "message": message, "data": data}
	for k, v := range extra {
		body[k] = v
	}
	writeJSON(w, status, body)
}

// ErrorFrom writes the envelope for err, picking the status from its
// apperr.Kind when it carries one.
func ErrorFrom(w http.ResponseWriter, err error) {
	Error(w, apperr.StatusFor(err), err.Error(), nil, nil)
}

func writeJSON(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
