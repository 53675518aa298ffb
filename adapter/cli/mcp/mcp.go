// Package mcp holds the command that serves the back office over MCP.
package mcp

import "github.com/spf13/cobra"

// Cmd is the MCP command group.
var Cmd = &cobra.Command{
	Use:   "mcp",
	Short: "Manage the LegaSync MCP interface",
}

func init() {
	Cmd.AddCommand(serveCmd)
}
