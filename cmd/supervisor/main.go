// Package main aggregates and validates the service-fragment topology
// (internal/supervisor.LoadFragments/Filter), logging the resolved set
// of services the rest of the process tree should run — the Go
// analogue of original_source/tools/setup_services.py's discovery
// pass, without that script's supervisor.conf concatenation (baselayer
// runs each process as its own binary rather than under supervisord).
package main

import (
	"github.com/akz4ol/baselayer/internal/config"
	"github.com/akz4ol/baselayer/internal/logging"
	"github.com/akz4ol/baselayer/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger := logging.New(cfg.Logging).With().Str("service", "supervisor").Logger()

	fragments, err := supervisor.LoadFragments(cfg.Services)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load service fragments")
	}
	logger.Info().Int("discovered", len(fragments)).Msg("discovered services")

	active, err := supervisor.Filter(fragments, cfg.Services.Enabled, cfg.Services.Disabled)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid service specification")
	}

	for _, f := range active {
		logger.Info().Str("service", f.Name).Str("path", f.Path).Msg("service enabled")
	}
	logger.Info().Int("enabled", len(active)).Msg("topology resolved")
}
