package mcp

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/troncosounlar-bit/legasync-flow/adapter/cli"
	mcpinternal "github.com/troncosounlar-bit/legasync-flow/internal/mcp"
	"github.com/troncosounlar-bit/legasync-flow/pkg/config"
	"github.com/troncosounlar-bit/legasync-flow/pkg/observability"
)

var addr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Serve the billing, customer and dashboard tools over MCP (streamable HTTP).
Set MCP_AUTH_TOKEN to require a bearer token.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil {
			return cli.ErrNotInitialized
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if addr != "" {
			cfg.MCPAddr = addr
		}

		logger := observability.NewLoggerFor(cfg.AppEnv, cfg.LogLevel, cfg.LogFormat, "legasync-mcp")
		err = mcpinternal.Serve(cmd.Context(), cfg, app, logger)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (default MCP_ADDR)")
}
