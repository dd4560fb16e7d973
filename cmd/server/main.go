// Package main implements the entry point for the annotation API server,
// which stores labeled texts and runs streaming LLM generation tasks that
// produce new ones.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/annotate-api/internal/config"
	"github.com/phrazzld/annotate-api/internal/platform/logger"
	"github.com/phrazzld/annotate-api/internal/redact"
)

func main() {
	migrateCmd := flag.String("migrate", "", "run a goose migration command (up, down, redo, reset, status, version) and exit")
	flag.Parse()

	cfg, appLogger, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *migrateCmd != "" {
		if err := runMigrations(ctx, cfg, appLogger, *migrateCmd, flag.Args()...); err != nil {
			appLogger.Error("migration failed", "error", redact.Error(err))
			os.Exit(1)
		}
		return
	}

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Error("server exited with error", "error", redact.Error(err))
		os.Exit(1)
	}
}

// initializeApp loads configuration and sets up structured logging.
func initializeApp() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"redis_archive", cfg.Redis.URL != "",
		"metrics_enabled", cfg.Metrics.Enabled)
	return cfg, appLogger, nil
}

// run connects to the database, wires the application and serves HTTP until
// ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, appLogger *slog.Logger) error {
	db, err := setupAppDatabase(ctx, cfg, appLogger)
	if err != nil {
		return err
	}

	app, err := newApplication(ctx, cfg, appLogger, db)
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			appLogger.Error("error closing database connection", "error", closeErr)
		}
		return err
	}
	return app.Run(ctx)
}
