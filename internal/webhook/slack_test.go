package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendLeakAlert(t *testing.T) {
	var received slackMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewSlackClient()
	err := client.SendLeakAlert(context.Background(), srv.URL, LeakAlert{
		Table:          "comments",
		Mode:           "read",
		PrincipalID:    "user-1",
		InaccessibleID: "row-1",
		Stack:          "trace",
		At:             time.Now(),
	})
	require.NoError(t, err)

	require.Len(t, received.Attachments, 1)
	assert.Contains(t, received.Attachments[0].Title, "comments/read")
	assert.Equal(t, "user-1", received.Attachments[0].Fields[0].Value)
}

func TestSendLeakAlert_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewSlackClient()
	err := client.SendLeakAlert(context.Background(), srv.URL, LeakAlert{At: time.Now()})
	assert.Error(t, err)
}
