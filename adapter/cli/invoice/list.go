package invoice

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/troncosounlar-bit/legasync-flow/adapter/cli"
	"github.com/troncosounlar-bit/legasync-flow/internal/billing/application/queries"
)

var (
	search string
	limit  int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices newest first",
	Long: `List invoices newest first, optionally filtered by customer name.

Examples:
  legasync invoice list
  legasync invoice list --search gómez
  legasync invoice list --limit 10`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListInvoices == nil {
			return cli.ErrNotInitialized
		}

		invoices, err := app.ListInvoices.Handle(cmd.Context(), queries.ListInvoicesQuery{Search: search})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(invoices) == 0 {
			fmt.Fprintln(out, "No invoices found.")
			return nil
		}
		if limit > 0 && len(invoices) > limit {
			invoices = invoices[:limit]
		}
		for _, inv := range invoices {
			printInvoice(out, inv)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&search, "search", "", "filter by customer name")
	listCmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of invoices to show")
}
