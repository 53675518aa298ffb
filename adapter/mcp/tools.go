// Package mcp exposes the back office to MCP clients as tools, resources
// and prompts.
package mcp

import (
	"errors"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/troncosounlar-bit/legasync-flow/adapter/cli"
)

var errNotInitialized = cli.ErrNotInitialized

// ToolDependencies provides handlers and context for MCP tools.
type ToolDependencies struct {
	App *cli.App
}

// RegisterCLITools registers MCP tools that mirror CLI functionality.
func RegisterCLITools(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	if deps.App == nil {
		return errors.New("app is required")
	}

	registrations := []func(*mcp.Server, ToolDependencies) error{
		registerCoreTools,
		registerBillingTools,
		registerSubscriptionTools,
		registerInvoiceTools,
		registerCustomerTools,
		registerExchangeTools,
		registerDashboardTools,
	}
	for _, register := range registrations {
		if err := register(srv, deps); err != nil {
			return err
		}
	}
	return nil
}
