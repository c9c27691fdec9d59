package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"demowallet/internal/amqp"
	"demowallet/internal/cache"
	"demowallet/internal/cli"
	apphttp "demowallet/internal/http"
	"demowallet/internal/insight"
	"demowallet/internal/log"
	"demowallet/internal/wallet"
)

const (
	shutdownTimeout      = 30 * time.Second
	sessionSweepInterval = time.Minute
	amqpDialAttempts     = 5
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	insightClient := insight.NewClient(insight.Config{
		Endpoint:         cfg.InsightEndpoint,
		Model:            cfg.InsightModel,
		APIKey:           cfg.InsightAPIKey,
		Timeout:          cfg.InsightTimeout,
		BreakerThreshold: uint32(cfg.InsightBreakerThreshold),
		BreakerTimeout:   cfg.InsightBreakerTimeout,
	}, nil, logger)
	if !cfg.InsightConfigured() {
		logger.Warn("INSIGHT_API_KEY not set; insight requests will fail with a fallback message")
	}

	var events wallet.EventPublisher
	if cfg.AMQPEnabled() {
		amqpClient, err := amqp.DialWithRetry(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, amqpDialAttempts, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
			os.Exit(1)
		}
		defer amqpClient.Close()
		events = amqpClient
		logger.Info("Publishing transaction events", log.FieldQueue, cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	sessions := wallet.NewStore(cfg.SessionMax, cfg.SessionTTL, logger)
	caches := cache.NewManager(logger)
	caches.Register(sessions.Cleaner())
	caches.StartCleanup(sessionSweepInterval)

	svc := wallet.NewService(wallet.Options{
		Credentials:    wallet.Credentials{Username: cfg.WalletUsername, PIN: cfg.WalletPIN},
		Insights:       insightClient,
		Events:         events,
		InsightTimeout: cfg.InsightTimeout,
		Logger:         logger,
	})

	srv, err := apphttp.NewServer(apphttp.Config{
		Addr:               ":" + cfg.Port,
		TrustedProxies:     cfg.TrustedProxies,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		InsightConfigured:  cfg.InsightConfigured(),
	}, apphttp.Deps{
		Wallet:   svc,
		Sessions: sessions,
		Caches:   caches,
		Insights: insightClient,
		Logger:   logger,
	})
	if err != nil {
		logger.Error("Failed to build HTTP server", log.FieldError, err.Error())
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting demowallet server", "port", cfg.Port, log.FieldOperation, log.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return cli.GracefulShutdown(gctx, logger, shutdownTimeout, srv.Shutdown)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Server error", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
