// Package cli holds the startup steps shared by cmd/expensek and
// cmd/expensek-worker.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"expensek/internal/amqp"
	"expensek/internal/backend"
	"expensek/internal/cache"
	"expensek/internal/config"
	"expensek/internal/core"
	applog "expensek/internal/log"
)

// SetupLogger builds the process logger from a level and format and installs
// it as the slog default. An unknown level falls back to info.
func SetupLogger(level, format string) *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Format = format
	lvl, err := applog.ParseLevel(level)
	cfg.Level = lvl
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	if err != nil {
		logger.Warn("Invalid log level, using info", applog.FieldError, err)
	}
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration, sets up logging from it and
// validates it. The process exits on validation failure.
func LoadAndValidateConfig() (*config.Config, *applog.Logger) {
	cfg := config.Load()
	logger := SetupLogger(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg, logger
}

// InitBackend creates the configured data backend. The process exits when
// the backend cannot be created.
func InitBackend(ctx context.Context, logger *applog.Logger, cfg *config.Config, caches *cache.Manager, shared bool) *backend.Result {
	bcfg, err := BackendConfig(cfg, shared)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	factory := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger, caches)
	res, err := factory.CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, "backend", bcfg.Type)
		os.Exit(1)
	}
	logger.Info("Initialized data backend", "backend", bcfg.Type)
	return res
}

// BackendConfig resolves the backend settings. With shared set, backends
// that cannot be seen by another process are rejected.
func BackendConfig(cfg *config.Config, shared bool) (backend.Config, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return backend.Config{}, err
	}
	if shared {
		if err := bcfg.RequireShared(); err != nil {
			return backend.Config{}, err
		}
	}
	return bcfg, nil
}

// InitAMQP connects to the broker when AMQP_URL is set. It returns nil when
// messaging is disabled or the broker is unreachable and required is false.
func InitAMQP(logger *applog.Logger, cfg *config.Config, required bool) *amqp.Client {
	if cfg.AMQPURL == "" {
		if required {
			logger.Error("AMQP_URL is required")
			os.Exit(1)
		}
		logger.Info("AMQP disabled - no AMQP_URL provided")
		return nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		if required {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		logger.Warn("AMQP unavailable, transactions will not be published", applog.FieldError, err)
		return nil
	}
	logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client
}

// CurrencyFormatter builds the formatter for the configured locale.
func CurrencyFormatter(cfg *config.Config) (*core.CurrencyFormatter, error) {
	f, err := core.NewCurrencyFormatter(cfg.CurrencyLocale, cfg.CurrencySymbol)
	if err != nil {
		return nil, fmt.Errorf("currency formatter: %w", err)
	}
	return f, nil
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that is cancelled on SIGINT/SIGTERM or when parent is
// done, and a channel that is closed once cleanup has run or timed out.
func GracefulShutdown(parent context.Context, logger *applog.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(parent)
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
		}
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		finished := make(chan struct{})
		go func() {
			if cleanup != nil {
				cleanup(shutdownCtx)
			}
			close(finished)
		}()

		select {
		case <-finished:
			logger.Info("Shutdown complete")
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached")
		}
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup has run.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
