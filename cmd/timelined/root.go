package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/heimdex/heimdex-timeline/internal/config"
	"github.com/heimdex/heimdex-timeline/internal/db"
	"github.com/heimdex/heimdex-timeline/internal/logging"
	"github.com/heimdex/heimdex-timeline/internal/project"
)

var rootCmd = &cobra.Command{
	Use:   "timelined",
	Short: "Heimdex timeline editing service",
	Long: `timelined hosts multi-track timeline projects behind a local HTTP API
and converts them to and from YAML documents and CMX3600 EDLs.`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// store bundles what every subcommand needs to reach the project database.
type store struct {
	cfg      *config.EnvConfig
	logger   *slog.Logger
	database *db.DB
	repo     *project.SQLiteRepository
}

func openStore() (*store, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())
	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return &store{
		cfg:      cfg,
		logger:   logger,
		database: database,
		repo:     project.NewRepository(database.Conn()),
	}, nil
}

func (s *store) Close() error {
	return s.database.Close()
}

// service builds a project service for one-shot commands. Long-running
// options such as probing and metrics are wired by serve.
func (s *store) service() *project.Service {
	return project.NewService(s.repo, project.Options{
		ResolveOverlaps: s.cfg.ResolveOverlaps(),
		DefaultZoom:     s.cfg.DefaultZoom(),
		Logger:          logging.WithComponent(s.logger, "project"),
	})
}
