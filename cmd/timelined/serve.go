package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/heimdex/heimdex-timeline/internal/api"
	"github.com/heimdex/heimdex-timeline/internal/config"
	"github.com/heimdex/heimdex-timeline/internal/logging"
	"github.com/heimdex/heimdex-timeline/internal/media"
	"github.com/heimdex/heimdex-timeline/internal/metrics"
	"github.com/heimdex/heimdex-timeline/internal/playback"
	"github.com/heimdex/heimdex-timeline/internal/project"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the timeline HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "HTTP port (overrides "+config.EnvPort+")")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	startTime := time.Now()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	cfg, logger := st.cfg, st.logger

	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		if err := cfg.SetPort(port); err != nil {
			return err
		}
	}
	logger.Info("starting timelined", "version", config.Version, "data_dir", logging.SanitizePath(cfg.DataDir()))

	ctx := cmd.Context()
	deviceID, err := ensureDeviceID(ctx, st.repo)
	if err != nil {
		return fmt.Errorf("failed to ensure device ID: %w", err)
	}
	authToken, err := ensureAuthToken(ctx, st.repo)
	if err != nil {
		return fmt.Errorf("failed to ensure auth token: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, "╔═══════════════════════════════════════════════════════════╗")
	fmt.Fprintf(out, "║                 HEIMDEX TIMELINE v%-23s ║\n", config.Version)
	fmt.Fprintln(out, "╠═══════════════════════════════════════════════════════════╣")
	fmt.Fprintf(out, "║  API URL:    http://127.0.0.1:%-27d ║\n", cfg.Port())
	fmt.Fprintf(out, "║  Auth Token: %-45s ║\n", authToken)
	fmt.Fprintf(out, "║  Device ID:  %-45s ║\n", deviceID[:16]+"...")
	fmt.Fprintln(out, "╚═══════════════════════════════════════════════════════════╝")
	fmt.Fprintln(out)

	prober, err := newProber(cfg.Prober(), logger)
	if err != nil {
		return err
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled() {
		m = metrics.New()
	}

	svc := project.NewService(st.repo, project.Options{
		Prober:          prober,
		Metrics:         m,
		ResolveOverlaps: cfg.ResolveOverlaps(),
		DefaultZoom:     cfg.DefaultZoom(),
		Logger:          logging.WithComponent(logger, "project"),
	})

	apiServer := api.NewServer(api.ServerConfig{
		Port:       cfg.Port(),
		Service:    svc,
		Repository: st.repo,
		Media:      playback.NewMediaServer(logging.WithComponent(logger, "media")),
		Metrics:    m,
		Logger:     logger,
		StartTime:  startTime,
		DeviceID:   deviceID,
		FrameRate:  cfg.EDLFrameRate(),
	})

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- apiServer.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("HTTP server error: %w", err)
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig)
	}

	logger.Info("initiating graceful shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// newProber picks the media prober named by kind. A missing ffprobe binary
// downgrades to no probing rather than failing startup.
func newProber(kind string, logger *slog.Logger) (media.Prober, error) {
	if kind != config.ProberFFprobe {
		return nil, nil
	}
	ff := media.NewFFprobe(logging.WithComponent(logger, "ffprobe"))
	if !ff.Available() {
		logger.Warn("ffprobe not found on PATH, trims will not be bounded by source length")
		return nil, nil
	}
	cached, err := media.NewCachedProber(ff, media.DefaultCacheSize)
	if err != nil {
		return nil, err
	}
	return cached, nil
}
