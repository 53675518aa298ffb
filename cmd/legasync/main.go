package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/troncosounlar-bit/legasync-flow/adapter/cli"
	cliBilling "github.com/troncosounlar-bit/legasync-flow/adapter/cli/billing"
	"github.com/troncosounlar-bit/legasync-flow/adapter/cli/customer"
	"github.com/troncosounlar-bit/legasync-flow/adapter/cli/exchange"
	"github.com/troncosounlar-bit/legasync-flow/adapter/cli/invoice"
	"github.com/troncosounlar-bit/legasync-flow/adapter/cli/logs"
	"github.com/troncosounlar-bit/legasync-flow/adapter/cli/mcp"
	"github.com/troncosounlar-bit/legasync-flow/adapter/cli/subscription"
	"github.com/troncosounlar-bit/legasync-flow/internal/app"
	"github.com/troncosounlar-bit/legasync-flow/pkg/config"
	"github.com/troncosounlar-bit/legasync-flow/pkg/observability"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		logger := observability.NewLoggerFor("development", "info", "text", "legasync")
		logger.Error("failed to load config", observability.ErrorKey, err)
		os.Exit(1)
	}

	logger := observability.NewLoggerFor(cfg.AppEnv, cfg.LogLevel, cfg.LogFormat, "legasync")
	cli.SetLogger(logger)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", observability.ErrorKey, err)
		os.Exit(1)
	}
	defer container.Close()

	// With RabbitMQ the worker owns delivery; the CLI only relays when asked.
	if cfg.OutboxProcessorEnabled && !container.LocalEvents() {
		if err := container.OutboxProcessor.Start(ctx); err != nil {
			logger.Warn("outbox processor not started", observability.ErrorKey, err)
		} else {
			defer container.OutboxProcessor.Stop()
		}
	}

	cli.SetApp(cli.NewApp(container))

	cli.AddCommand(cliBilling.Cmd)
	cli.AddCommand(subscription.Cmd)
	cli.AddCommand(invoice.Cmd)
	cli.AddCommand(customer.Cmd)
	cli.AddCommand(exchange.Cmd)
	cli.AddCommand(logs.Cmd)
	cli.AddCommand(mcp.Cmd)

	cli.Execute(ctx)
}
