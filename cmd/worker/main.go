package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/troncosounlar-bit/legasync-flow/internal/app"
	"github.com/troncosounlar-bit/legasync-flow/internal/shared/infrastructure/eventbus"
	"github.com/troncosounlar-bit/legasync-flow/pkg/config"
	"github.com/troncosounlar-bit/legasync-flow/pkg/observability"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		logger := observability.NewLoggerFor("development", "info", "text", "legasync-worker")
		logger.Error("failed to load config", observability.ErrorKey, err)
		os.Exit(1)
	}
	logger := observability.NewLoggerFor(cfg.AppEnv, cfg.LogLevel, cfg.LogFormat, "legasync-worker")
	logger.Info("starting legasync worker")

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", observability.ErrorKey, err)
		os.Exit(1)
	}
	defer container.Close()

	logger.Info("starting outbox processor",
		"poll_interval", cfg.OutboxPollInterval,
		"batch_size", cfg.OutboxBatchSize,
		"max_retries", cfg.OutboxMaxRetries,
		"local_events", container.LocalEvents(),
	)
	if err := container.OutboxProcessor.Start(ctx); err != nil {
		logger.Error("failed to start outbox processor", observability.ErrorKey, err)
		os.Exit(1)
	}

	// Events published to RabbitMQ come back here to feed the dashboard.
	if !container.LocalEvents() {
		consumer, err := eventbus.NewRabbitMQConsumer(eventbus.RabbitMQConsumerConfig{
			URL:    cfg.RabbitMQURL,
			Logger: logger,
		}, container.EventBus.Registry())
		if err != nil {
			logger.Error("failed to start event consumer", observability.ErrorKey, err)
			os.Exit(1)
		}
		defer consumer.Close()
		go func() {
			if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("event consumer stopped", observability.ErrorKey, err)
			}
		}()
	}

	go container.RunScheduledBilling(ctx, cfg.BillingRunInterval)
	go container.CleanupOutbox(ctx, cfg.OutboxCleanupInterval)
	go container.LogOutboxStats(ctx, cfg.OutboxStatsInterval)

	if cfg.WorkerHealthAddr != "" {
		healthSrv := &http.Server{
			Addr:              cfg.WorkerHealthAddr,
			Handler:           container.HealthHandler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("health server starting", "addr", cfg.WorkerHealthAddr)
			if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("health server error", observability.ErrorKey, err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := healthSrv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("health server shutdown error", observability.ErrorKey, err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down worker")
	container.OutboxProcessor.Stop()
	logger.Info("worker stopped")
}
