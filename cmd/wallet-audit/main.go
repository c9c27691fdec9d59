package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"demowallet/internal/amqp"
	"demowallet/internal/cache"
	"demowallet/internal/cli"
	"demowallet/internal/log"
	"demowallet/internal/worker"
)

const (
	dedupSize       = 10000
	dedupTTL        = time.Hour
	summaryInterval = 5 * time.Minute
	dialAttempts    = 10
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentAudit)
	logger.Info("Starting wallet-audit", log.FieldOperation, log.OpStartup)

	cfg := cli.LoadAndValidateConfig(logger)
	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required for wallet-audit")
		os.Exit(1)
	}

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	amqpClient, err := amqp.DialWithRetry(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, dialAttempts, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
		os.Exit(1)
	}
	defer amqpClient.Close()

	auditWorker := worker.NewAuditWorker(dedupSize, dedupTTL, logger)
	caches := cache.NewManager(logger)
	caches.Register(auditWorker.Cleaner())
	caches.StartCleanup(dedupTTL / 4)
	defer caches.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeTransactions(gctx, auditWorker.HandleTransaction)
	})
	g.Go(func() error {
		ticker := time.NewTicker(summaryInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				auditWorker.LogSummary(context.WithoutCancel(gctx))
				return nil
			case <-ticker.C:
				auditWorker.LogSummary(gctx)
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("wallet-audit stopped")
}
