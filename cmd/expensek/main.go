package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"expensek/internal/cache"
	"expensek/internal/cli"
	"expensek/internal/dashboard"
	apphttp "expensek/internal/http"
	applog "expensek/internal/log"
	"expensek/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig()

	formatter, err := cli.CurrencyFormatter(cfg)
	if err != nil {
		logger.Error("Invalid currency settings", applog.FieldError, err)
		os.Exit(1)
	}

	caches := cache.NewManager()
	caches.StartCleanup(10 * time.Minute)

	res := cli.InitBackend(context.Background(), logger, cfg, caches, false)

	// A nil *amqp.Client must not end up inside the Publisher interface.
	var publisher services.Publisher
	if client := cli.InitAMQP(logger, cfg, false); client != nil {
		publisher = client
	}
	recorder := services.NewTransactionService(res.Backend, publisher)
	dash := dashboard.NewService(res.Backend, dashboard.WithFormatter(formatter))

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Dashboard:          dash,
		Categories:         res.Backend,
		Recorder:           recorder,
		Ready:              res.Ping,
		Formatter:          formatter,
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	ctx, done := cli.GracefulShutdown(context.Background(), logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		if err := recorder.Close(); err != nil {
			logger.Error("Failed to close publisher", applog.FieldError, err)
		}
		caches.Stop()
		if err := res.Cleanup(); err != nil {
			logger.Error("Failed to close backend", applog.FieldError, err)
		}
	})

	go func() {
		logger.Info("Starting expensek server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
			os.Exit(1)
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
