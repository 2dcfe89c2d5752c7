package supervisor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// gateMaxBackoff caps the poll interval spec.md §4.4 specifies: 1s,
// 2s, 4s, ... doubling with no overall timeout, capped at 30s so a
// slow migration never stretches the poll past a once-every-30s check.
const gateMaxBackoff = 30 * time.Second

// WaitForMigration polls baseURL's migration manager until it reports
// {"migrated": true}, doubling its backoff from 1s up to
// gateMaxBackoff between attempts. It blocks indefinitely — by design,
// spec.md §4.4 gives this no overall timeout — until ctx is canceled
// or the gate opens.
func WaitForMigration(ctx context.Context, baseURL string) error {
	client := &http.Client{Timeout: 5 * time.Second}
	backoff := time.Second

	for {
		migrated, err := pollOnce(ctx, client, baseURL)
		if err == nil && migrated {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > gateMaxBackoff {
			backoff = gateMaxBackoff
		}
	}
}

func pollOnce(ctx context.Context, client *http.Client, baseURL string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return false, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("supervisor: migration manager returned %d", resp.StatusCode)
	}

	var body struct {
		Migrated bool `json:"migrated"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, err
	}
	return body.Migrated, nil
}
