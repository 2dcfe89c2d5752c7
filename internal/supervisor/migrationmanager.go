// Package supervisor implements spec.md §4.4's process-topology
// scaffolding: the migration gate client and server, the provisioning
// status plane, and service-fragment aggregation, grounded on
// original_source/services/migration_manager/migration_manager.py and
// original_source/services/status/ (see _INDEX.md).
package supervisor

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/akz4ol/baselayer/internal/store"
)

// statusCacheTTL matches the Python original's @timeout_cache(timeout=10):
// migration_status() is expensive enough (an `alembic current` subprocess
// there; a schema_migrations table scan here) to not want to pay on
// every poll from every waiting process.
const statusCacheTTL = 10 * time.Second

// MigrationManager serves the cached "has the schema been fully
// migrated" status every MigrationGate client polls, mirroring
// MainHandler/migration_status/timeout_cache in the original.
type MigrationManager struct {
	runner     *store.MigrationRunner
	migrations map[string]string

	mu       sync.Mutex
	lastRun  time.Time
	cached   bool
	hasValue bool
}

// NewMigrationManager wraps a MigrationRunner and the full migration
// set it should report status against.
func NewMigrationManager(runner *store.MigrationRunner, migrations map[string]string) *MigrationManager {
	return &MigrationManager{runner: runner, migrations: migrations}
}

// Migrated reports whether every migration has been applied, caching
// the result for statusCacheTTL the same way the original's
// timeout_cache decorator does.
func (m *MigrationManager) Migrated(ctx context.Context) (bool, error) {
	m.mu.Lock()
	if m.hasValue && time.Since(m.lastRun) < statusCacheTTL {
		cached := m.cached
		m.mu.Unlock()
		return cached, nil
	}
	m.mu.Unlock()

	applied, err := m.runner.HeadApplied(ctx, m.migrations)
	if err != nil {
		return false, err
	}

	m.mu.Lock()
	m.cached = applied
	m.hasValue = true
	m.lastRun = time.Now()
	m.mu.Unlock()
	return applied, nil
}

// ServeHTTP answers GET / with exactly {"migrated": bool} — the wire
// shape MigrationGate polls for, unwrapped by baselayer's usual
// success/error envelope since this endpoint predates it and other
// processes depend on the literal shape.
func (m *MigrationManager) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	migrated, err := m.Migrated(r.Context())
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": err.Error()})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]bool{"migrated": migrated})
}
