package supervisor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"migrated":true}`))
	}))
	defer srv.Close()

	migrated, err := pollOnce(context.Background(), srv.Client(), srv.URL)
	require.NoError(t, err)
	assert.True(t, migrated)
}

func TestWaitForMigration_ReturnsImmediatelyWhenAlreadyMigrated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"migrated":true}`))
	}))
	defer srv.Close()

	done := make(chan error, 1)
	go func() { done <- WaitForMigration(context.Background(), srv.URL) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("WaitForMigration did not return once migrated")
	}
}

func TestWaitForMigration_StopsOnContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"migrated":false}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WaitForMigration(ctx, srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
}
