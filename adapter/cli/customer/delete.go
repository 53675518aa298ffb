package customer

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/troncosounlar-bit/legasync-flow/adapter/cli"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <customer-id>",
	Short:   "Delete a customer and its expenses",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.DeleteCustomer == nil {
			return cli.ErrNotInitialized
		}

		id, err := cli.ParseID("customer", args[0])
		if err != nil {
			return err
		}
		if err := app.DeleteCustomer.Handle(cmd.Context(), id); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Deleted customer %s\n", id)
		return nil
	},
}
