package invoice

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/troncosounlar-bit/legasync-flow/adapter/cli"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <invoice-id>",
	Short:   "Delete an invoice",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Invoices == nil {
			return cli.ErrNotInitialized
		}

		id, err := cli.ParseID("invoice", args[0])
		if err != nil {
			return err
		}
		if err := app.Invoices.Delete(cmd.Context(), id); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Deleted invoice %s\n", id)
		return nil
	},
}
