package main

import (
	"context"
	"os"

	"github.com/sukalov/cifras/internal/config"
	"github.com/sukalov/cifras/internal/logger"
	"github.com/urfave/cli/v3"
)

func main() {
	log := logger.Get()

	cfg, err := config.LoadOrDefault("config.toml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := logger.SetLevel(cfg.Log.Level); err != nil {
		log.Warn("ignoring log level", "err", err)
	}

	runner := NewRunner(RunnerOpts{Config: cfg, Logger: log})

	app := &cli.Command{
		Name:     "cifra-parser",
		Usage:    "Extract, transpose and import Cifra Club chord sheets",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
