package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/troncosounlar-bit/legasync-flow/adapter/cli"
	"github.com/troncosounlar-bit/legasync-flow/internal/app"
	mcpinternal "github.com/troncosounlar-bit/legasync-flow/internal/mcp"
	"github.com/troncosounlar-bit/legasync-flow/pkg/config"
	"github.com/troncosounlar-bit/legasync-flow/pkg/observability"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		logger := observability.NewLoggerFor("development", "info", "text", mcpinternal.ServerName)
		logger.Error("failed to load config", observability.ErrorKey, err)
		os.Exit(1)
	}
	logger := observability.NewLoggerFor(cfg.AppEnv, cfg.LogLevel, cfg.LogFormat, mcpinternal.ServerName)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", observability.ErrorKey, err)
		os.Exit(1)
	}
	defer container.Close()

	if !container.LocalEvents() && cfg.OutboxProcessorEnabled {
		if err := container.OutboxProcessor.Start(ctx); err == nil {
			defer container.OutboxProcessor.Stop()
		}
	}

	if err := mcpinternal.Serve(ctx, cfg, cli.NewApp(container), logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("mcp server error", observability.ErrorKey, err)
		os.Exit(1)
	}
}
