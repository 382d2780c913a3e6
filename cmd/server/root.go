package main

import (
	"context"
	"database/sql"
	"elsofra/internal/config"
	"elsofra/internal/logging"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "sofra",
		Short:         "El Sofra restaurant reservation service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file (defaults to $CONFIG_FILE)")

	root.AddCommand(newServeCmd(&configFile))
	root.AddCommand(newMigrateCmd(&configFile))
	root.AddCommand(newSeedScheduleCmd(&configFile))
	root.AddCommand(newImportLedgerCmd(&configFile))
	root.AddCommand(newCreateAdminCmd(&configFile))
	return root
}

// app bundles what every command needs.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *sql.DB
}

func (r *app) Close() {
	if r.db != nil {
		_ = r.db.Close()
	}
	_ = r.logger.Sync()
}

func setup(ctx context.Context, configFile string) (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open DB: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}
	return &app{cfg: cfg, logger: logger, db: db}, nil
}
