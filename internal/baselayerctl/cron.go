package baselayerctl

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akz4ol/baselayer/internal/cronlog"
)

var cronCmd = &cobra.Command{
	Use:   "cron",
	Short: "Inspect recorded cron-job runs",
}

var cronRecentCmd = &cobra.Command{
	Use:   "recent SCRIPT_NAME",
	Short: "List the most recent runs of a cron script",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		ctx := context.Background()
		db, _, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		runs, err := cronlog.NewRepository(db.DB).Recent(ctx, args[0], limit)
		if err != nil {
			return fmt.Errorf("load cron runs: %w", err)
		}

		if len(runs) == 0 {
			fmt.Println("No recorded runs")
			return nil
		}
		for _, run := range runs {
			fmt.Printf("%s\texit=%d\t%s\t%s\n", run.CreatedAt.Format("2006-01-02T15:04:05Z"), run.ExitStatus, run.Duration, run.ID)
		}
		return nil
	},
}

func init() {
	cronRecentCmd.Flags().Int("limit", 20, "maximum number of runs to show")
	cronCmd.AddCommand(cronRecentCmd)
}
