package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"maplebudget/internal/amqp"
	"maplebudget/internal/backend"
	"maplebudget/internal/cli"
	"maplebudget/internal/log"
	"maplebudget/internal/worker"
)

func main() {
	cfg, logger := cli.LoadConfig(log.ComponentWorker)
	logger.Info("Starting maplebudget-worker")

	if cfg.AMQPURL == "" {
		cli.Fatal(logger, "AMQP is not configured", errors.New("AMQP_URL is required for the worker"),
			"error_type", log.ErrorTypeConfiguration)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := backend.NewFactory(logger).OpenStore(ctx, cli.BackendConfig(logger, cfg))
	if err != nil {
		cli.Fatal(logger, "Failed to open store", err, "backend", cfg.DataBackend)
	}
	defer store.Close()

	client, err := amqp.NewClient(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize AMQP client", err)
	}
	defer client.Close()

	recorder := worker.NewActivityRecorder(store, logger)
	purger := worker.NewSessionPurger(store, cfg.SessionPurgeInterval, logger)

	// Both loops stop when a signal cancels ctx; a consumer failure stops
	// the purger too.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.Consume(gctx, recorder.HandleEvent)
	})
	g.Go(func() error {
		return purger.Run(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped", log.FieldError, err)
		return
	}
	logger.Info("Worker stopped gracefully")
}
