// Package customer manages CRM customers and their expenses from the CLI.
package customer

import (
	"github.com/spf13/cobra"
)

// Cmd is the customer command group.
var Cmd = &cobra.Command{
	Use:     "customer",
	Short:   "Manage customers, their pipeline status and expenses",
	Aliases: []string{"cust", "client"},
}

func init() {
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(updateCmd)
	Cmd.AddCommand(deleteCmd)
	Cmd.AddCommand(expenseCmd)
}
