package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cognify/config"
	"cognify/utils/logger"
)

// Run is the main application entry point. It loads configuration, builds
// all dependencies, starts the server, then waits for a shutdown signal.
func Run(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(cfg.Logging.ServiceName, cfg.Logging.Level)

	log.Info("starting service",
		"log_level", cfg.Logging.Level,
		"canvas_base_url", cfg.Canvas.BaseURL,
		"groq_model", cfg.Groq.Model)

	deps, cleanup, err := BuildDependencies(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to build dependencies: %w", err)
	}
	defer cleanup()

	e := NewHTTPServer(deps, cfg)
	StartHTTPServer(e, cfg, log)

	log.Info("service started")
	waitForShutdown(ctx, cfg, deps, e)

	return nil
}

func waitForShutdown(ctx context.Context, cfg *config.Config, deps *Dependencies, e interface{ Shutdown(context.Context) error }) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case <-ctx.Done():
	}

	deps.Logger.Info("shutting down service")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		deps.Logger.Error("error shutting down HTTP server", "error", err)
	}

	deps.Logger.Info("service stopped")
}
