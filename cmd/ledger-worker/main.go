package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"finledger/internal/cli"
	"finledger/internal/config"
	"finledger/internal/log"
	"finledger/internal/worker"
)

func main() {
	os.Exit(run())
}

func run() int {
	cli.LoadEnvFile()

	cfg := cli.LoadConfig()
	logger := cli.SetupLogger(os.Stdout, cfg.LogLevel, log.ComponentWorker)
	cli.ValidateConfig(logger, cfg)

	logger.Info("Starting ledger-worker",
		log.FieldBackend, cfg.DataBackend,
		"reconcile_interval", cfg.ReconcileInterval.String(),
		"amqp_enabled", cfg.AMQPEnabled())
	if cfg.DataBackend == config.BackendMemory {
		logger.Warn("Memory backend is private to this process, the worker only sees its own data")
	}

	ctx, cancel := cli.ShutdownContext(logger)
	defer cancel()

	ledger, err := cli.OpenLedger(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open ledger", log.FieldError, err)
		return 1
	}
	defer func() {
		if err := ledger.Close(); err != nil {
			logger.Warn("Failed to close ledger", log.FieldError, err)
		}
	}()

	// Other processes write to the store, so the worker reads it uncached.
	balances := worker.NewBalanceWorker(ledger.Store.Accounts)

	logger.Info("Performing startup reconciliation...")
	if _, err := balances.ReconcileAll(ctx); err != nil {
		logger.Error("Startup reconciliation failed", log.FieldError, err)
		// Don't exit - the periodic pass retries
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return balances.RunReconciler(gctx, cfg.ReconcileInterval)
	})

	if client := cli.ConnectAMQP(logger, cfg); client != nil {
		defer client.Close()
		g.Go(func() error {
			return client.ConsumeBalanceChecks(gctx, balances.HandleBalanceCheck)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped", log.FieldError, err)
		return 1
	}
	logger.Info("Worker shutdown complete")
	return 0
}
