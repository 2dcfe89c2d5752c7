// Package logging builds the process-wide zerolog logger, the same
// way the gatewayops teacher's cmd/gateway main.go does it inline,
// factored out so every baselayer process (api, broker, wsserver,
// migrator, statusd) configures logging identically.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/akz4ol/baselayer/internal/config"
)

// New configures a zerolog.Logger from a LoggingConfig: console
// writer with caller info for anything other than the "json" format,
// plain JSON to stdout otherwise.
func New(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		return zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Caller().Logger()
}
