package invoice

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/troncosounlar-bit/legasync-flow/adapter/cli"
)

var payCmd = &cobra.Command{
	Use:   "pay <invoice-id>",
	Short: "Mark a pending invoice as paid",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Invoices == nil {
			return cli.ErrNotInitialized
		}

		id, err := cli.ParseID("invoice", args[0])
		if err != nil {
			return err
		}
		inv, err := app.Invoices.MarkPaid(cmd.Context(), id)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Invoice %s paid\n", inv.ID)
		return nil
	},
}
