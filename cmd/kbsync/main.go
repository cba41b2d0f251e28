package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"KBSync/internal/app"
	"KBSync/internal/config"
	"KBSync/internal/logging"
)

func main() {
	ctx := context.Background()

	// Local runs keep credentials in a .env file; absence is fine.
	_ = godotenv.Load()

	stage := "all"
	if len(os.Args) > 1 {
		stage = os.Args[1]
	}

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	if err := cfg.Validate(stage); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	application, err := app.New(ctx, cfg, stage, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer func() { _ = application.Close() }()

	if err := application.Run(ctx, stage); err != nil {
		logger.Error("stage failed", "stage", stage, "error", err)
		os.Exit(1)
	}

	logger.Info("stage completed", "stage", stage)
}
