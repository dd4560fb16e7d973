package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/annotate-api/internal/config"
	"github.com/phrazzld/annotate-api/internal/platform/postgres"
)

// runMigrations executes one goose command against the configured database
// using the migrations embedded in the binary.
func runMigrations(ctx context.Context, cfg *config.Config, logger *slog.Logger, command string, args ...string) error {
	if !isMigrationCommand(command) {
		return fmt.Errorf("unsupported migration command %q", command)
	}

	db, err := setupAppDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close migration connection", "error", err)
		}
	}()

	start := time.Now()
	logger.Info("running migrations", "command", command)

	if err := postgres.Migrate(ctx, db, logger, command, args...); err != nil {
		return err
	}

	logger.Info("migrations finished", "command", command, "duration", time.Since(start))
	return nil
}

// isMigrationCommand reports whether command is a goose command that makes
// sense against embedded migrations.
func isMigrationCommand(command string) bool {
	switch command {
	case "up", "up-by-one", "up-to", "down", "down-to", "redo", "reset", "status", "version":
		return true
	default:
		return false
	}
}
