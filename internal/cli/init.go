// Package cli provides the startup steps shared by cmd/maplebudget and
// cmd/maplebudget-worker.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"maplebudget/internal/backend"
	"maplebudget/internal/config"
	"maplebudget/internal/log"
)

// LoadConfig loads the configuration and builds the logger it describes.
// The process exits when the configuration cannot be loaded or is invalid.
func LoadConfig(component string) (*config.Config, *log.Logger) {
	cfg, err := config.Load()
	if err != nil {
		Fatal(log.New(log.DefaultConfig()), "Failed to load configuration", err)
	}

	logger := SetupLogger(cfg, component)
	if err := cfg.Validate(); err != nil {
		Fatal(logger, "Configuration validation failed", err, "error_type", log.ErrorTypeConfiguration)
	}
	return cfg, logger
}

// SetupLogger builds the logger selected by LOG_LEVEL and LOG_FORMAT and
// makes it the slog default.
func SetupLogger(cfg *config.Config, component string) *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: component,
		Output:    os.Stdout,
	})
	log.SetDefault(logger)
	return logger
}

// BackendConfig derives the backend settings or exits.
func BackendConfig(logger *log.Logger, cfg *config.Config) backend.Config {
	bc, err := backend.FromAppConfig(cfg)
	if err != nil {
		Fatal(logger, "Invalid backend configuration", err)
	}
	return bc
}

// Fatal logs msg with err and exits with status 1.
func Fatal(logger *log.Logger, msg string, err error, args ...any) {
	logger.Error(msg, append([]any{log.FieldError, err}, args...)...)
	os.Exit(1)
}

// ShutdownOnSignal calls shutdown with a timeout context on SIGINT or
// SIGTERM, or when ctx is done first. The returned channel closes once
// shutdown has returned.
func ShutdownOnSignal(ctx context.Context, logger *log.Logger, timeout time.Duration, shutdown func(context.Context) error) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
		case <-ctx.Done():
			logger.Info("Context cancelled")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Error("Shutdown error", log.FieldError, err)
		}
	}()
	return done
}
