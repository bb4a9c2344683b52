package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"cache-service/internal/config"
	"cache-service/internal/logging"
	"cache-service/internal/server"
)

// Run is the main entry point for the application.
func Run() error {
	// Load environment variables from .env when present
	_ = godotenv.Load()

	cfg := config.Load()

	logging.Init(cfg.LogLevel)
	defer logging.Sync()

	if err := cfg.Validate(); err != nil {
		logging.L().Error("configuration validation failed", zap.Error(err))
		return err
	}

	logging.L().Info("starting cache service", zap.String("port", cfg.Port))

	app, err := New(cfg)
	if err != nil {
		logging.L().Error("failed to initialize application", zap.Error(err))
		return err
	}
	defer app.Cleanup()

	srv := server.New(app.Routes(), cfg.Port)
	if err := srv.Start(); err != nil {
		logging.L().Error("server failed to start", zap.Error(err))
		return err
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logging.L().Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.L().Error("server forced to shutdown", zap.Error(err))
		return err
	}

	logging.L().Info("server exited")
	return nil
}
