package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"expensek/internal/cli"
	"expensek/internal/dashboard"
	applog "expensek/internal/log"
	"expensek/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig()
	logger = logger.WithComponent(applog.ComponentWorker)
	logger.Info("Starting expensek-worker", "digest_interval", cfg.DigestInterval)

	formatter, err := cli.CurrencyFormatter(cfg)
	if err != nil {
		logger.Error("Invalid currency settings", applog.FieldError, err)
		os.Exit(1)
	}

	res := cli.InitBackend(context.Background(), logger, cfg, nil, true)
	client := cli.InitAMQP(logger, cfg, true)

	dash := dashboard.NewService(res.Backend, dashboard.WithFormatter(formatter))
	digest := worker.NewDigestWorker(dash, logger, cfg.DigestInterval)

	base, stop := context.WithCancel(context.Background())
	defer stop()
	ctx, done := cli.GracefulShutdown(base, logger, 30*time.Second, func(context.Context) {
		if err := client.Close(); err != nil {
			logger.Error("Failed to close AMQP client", applog.FieldError, err)
		}
		if err := res.Cleanup(); err != nil {
			logger.Error("Failed to close backend", applog.FieldError, err)
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.ConsumeTransactionRecorded(gctx, digest.HandleTransactionRecorded)
	})
	g.Go(func() error {
		return digest.Run(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", applog.FieldError, err)
	}
	stop()
	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
