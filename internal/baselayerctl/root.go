// Package baselayerctl is the operator CLI: token issuance, role
// assignment, and the status command (SPEC_FULL.md §6 item 3),
// grounded on the teacher's cli/internal/cmd cobra+viper shape,
// adapted from an HTTP API client to a direct database client since
// baselayerctl is an operator tool run alongside the server processes
// rather than a customer-facing CLI.
package baselayerctl

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/akz4ol/baselayer/internal/config"
	"github.com/akz4ol/baselayer/internal/logging"
	"github.com/akz4ol/baselayer/internal/store"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "baselayerctl",
	Short: "baselayerctl manages users, tokens, and roles",
	Long: `baselayerctl is an operator tool for the baselayer core: issue and
revoke tokens, assign and list roles, and check process readiness.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.baselayerctl.yaml)")

	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(roleCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(cronCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".baselayerctl")
	}

	viper.SetEnvPrefix("BASELAYERCTL")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

// openStore connects directly to Postgres using the same environment
// configuration the server processes read, since baselayerctl runs
// alongside them rather than against a remote API.
func openStore(ctx context.Context) (*store.Postgres, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(cfg.Logging).With().Str("service", "baselayerctl").Logger()
	db, err := store.Open(cfg.Database, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return db, cfg, nil
}
