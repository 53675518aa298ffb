// Package invoice lists and edits invoices from the CLI.
package invoice

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/troncosounlar-bit/legasync-flow/internal/billing/domain"
)

// Cmd is the invoice command group.
var Cmd = &cobra.Command{
	Use:     "invoice",
	Short:   "List, create and settle invoices",
	Aliases: []string{"inv"},
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(payCmd)
	Cmd.AddCommand(deleteCmd)
}

func printInvoice(out io.Writer, inv domain.Invoice) {
	source := "manual"
	if inv.IsAutomated {
		source = "auto " + inv.BillingPeriod
	}
	fmt.Fprintf(out, "%s  %s  %-24s %12s %s  %-7s fiscal:%-9s %s\n",
		inv.ID,
		inv.CreatedAt.Format("2006-01-02"),
		inv.CustomerName,
		inv.BaseAmount.StringFixed(2),
		inv.CurrencyCode,
		inv.Status,
		inv.FiscalStatus,
		source,
	)
}
