package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dyike/FinSage/config"
	"github.com/dyike/FinSage/internal/cli"
	"github.com/dyike/FinSage/internal/debug"
	"github.com/dyike/FinSage/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Environment and .env values seed the config file on first start.
	initial := config.DefaultConfig()
	log := logger.NewWithLevel(initial.Debug)

	mgr, err := config.NewManager(
		config.WithConfigDir(os.Getenv("FINSAGE_CONFIG_DIR")),
		config.WithInitialConfig(initial),
		config.WithLogger(log),
	)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg := mgr.Get()
	if cfg.Debug != initial.Debug {
		log = logger.NewWithLevel(cfg.Debug)
	}

	if err := debug.NewEinoDebugger(cfg, log).Initialize(ctx); err != nil {
		log.Warn().Err(err).Msg("eino debugger unavailable")
	}

	return cli.Run(logger.WithContext(ctx, log), cli.NewApp(mgr, cli.WithLogger(log)))
}
