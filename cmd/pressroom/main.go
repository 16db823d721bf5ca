// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command pressroom runs the publishing API server and its maintenance tasks.
package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/olegiv/pressroom/internal/config"
	"github.com/olegiv/pressroom/internal/logging"
	"github.com/olegiv/pressroom/internal/store"
)

const serviceName = "pressroom"

const envHelp = `Environment Variables:
  PRESSROOM_DB_PATH           SQLite database path (default: ./data/pressroom.db)
  PRESSROOM_SERVER_HOST       Listen host (default: localhost)
  PRESSROOM_SERVER_PORT       Listen port (default: 8080)
  PRESSROOM_DIAG_ADDR         Metrics listener, "off" disables (default: :9090)
  PRESSROOM_ENV               development|production (default: development)
  PRESSROOM_LOG_LEVEL         debug|info|warn|error (default: info)
  PRESSROOM_REQUEST_TIMEOUT   Per-request timeout (default: 30s)
  PRESSROOM_EVENT_RETENTION   How long event log entries are kept, 0 keeps all (default: 720h)
  PRESSROOM_REDIS_URL         Redis URL for the credential cache (optional)
  PRESSROOM_AUTH_CACHE_TTL    How long a verified credential is remembered (default: 5m)
  PRESSROOM_RATE_LIMIT        Requests per second per client IP (default: 100)
  PRESSROOM_RATE_BURST        Request burst per client IP (default: 200)
  PRESSROOM_MAX_FAILED_LOGINS Failed checks before an account locks (default: 5)
  PRESSROOM_LOCKOUT           Base lockout duration (default: 15m)
  PRESSROOM_ADMIN_EMAIL       Administrator ensured at startup (optional)
  PRESSROOM_ADMIN_PASSWORD    Password for a newly created administrator`

func main() {
	if err := newRootCommand().Execute(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           serviceName,
		Short:         "Pressroom publishing API",
		Long:          "Pressroom serves a REST API for authors, subscribers and their articles.\n\n" + envHelp,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serveCommand,
	}

	root.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newCreateAdminCommand(),
		newRoutesCommand(),
		newVersionCommand(),
	)
	return root
}

// app holds what every database-backed command needs.
type app struct {
	cfg    *config.Config
	db     *sql.DB
	logger *slog.Logger
}

// bootstrap loads configuration, sets up logging and opens the migrated
// database. Logs at WARN and above are also written to the event log.
func bootstrap() (*app, error) {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})
	slog.SetDefault(slog.New(textHandler))

	if dir := filepath.Dir(cfg.DBPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}

	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	logger := slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("database ready", "event_log_min_level", "warn")

	return &app{cfg: cfg, db: db, logger: logger}, nil
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		slog.Error("error closing database connection", "error", err)
	}
}
