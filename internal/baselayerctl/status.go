package baselayerctl

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/akz4ol/baselayer/internal/config"
)

// program is one process whose readiness `status` reports, mirroring
// the per-program lines original_source/tools/supervisor_status.py
// prints from `supervisorctl status`.
type program struct {
	name string
	url  string
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show readiness of each baselayer process",
	Long: `Queries the migration manager and the handler process's health
endpoint and prints a readiness line per program, the baselayerctl
equivalent of running "supervisorctl status" against the original's
supervisord-managed process tree.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		programs := []program{
			{name: "migrator", url: fmt.Sprintf("http://127.0.0.1:%d/", cfg.Ports.MigrationManager)},
			{name: "api", url: fmt.Sprintf("http://127.0.0.1:%d/healthz", cfg.Ports.AppInternal)},
			{name: "statusd", url: fmt.Sprintf("http://127.0.0.1:%d/", cfg.Ports.Status)},
		}

		for _, p := range programs {
			fmt.Println(formatStatusLine(p))
		}
		return nil
	},
}

func formatStatusLine(p program) string {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return fmt.Sprintf("%-10s FATAL  %v", p.name, err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Sprintf("%-10s STOPPED (%v)", p.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return fmt.Sprintf("%-10s RUNNING", p.name)
	}
	return fmt.Sprintf("%-10s STARTING (status %d)", p.name, resp.StatusCode)
}
