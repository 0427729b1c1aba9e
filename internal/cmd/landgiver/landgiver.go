// Package landgiver parses service flags and launches the leasing service.
package landgiver

import (
	"context"
	"flag"

	server "github.com/cazala/landgiver/internal/leasing/app"
	entrypoint "github.com/cazala/landgiver/internal/platform/cmd"
	"github.com/cazala/landgiver/internal/platform/logging"
)

// ParseConfig parses environment and flags into the service config.
func ParseConfig(fs *flag.FlagSet, args []string) (server.Config, error) {
	var cfg server.Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return server.Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "addr", cfg.HTTPAddr, "The HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "The sqlite database path")
	fs.StringVar(&cfg.RegistryURL, "registry-url", cfg.RegistryURL, "The parcel registry base URL")
	fs.DurationVar(&cfg.SweepInterval, "sweep-interval", cfg.SweepInterval, "Expired-lease sweep interval (0 disables)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return server.Config{}, err
	}
	return cfg, nil
}

// Run starts the leasing HTTP service.
func Run(ctx context.Context, cfg server.Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceLandgiver, func(ctx context.Context) error {
		logger := logging.Init(entrypoint.ServiceLandgiver)
		return server.Run(ctx, cfg, logger)
	})
}
