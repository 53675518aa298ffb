package subscription

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/troncosounlar-bit/legasync-flow/adapter/cli"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <subscription-id>",
	Short:   "Delete a subscription",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.DeleteSubscription == nil {
			return cli.ErrNotInitialized
		}

		id, err := cli.ParseID("subscription", args[0])
		if err != nil {
			return err
		}
		if err := app.DeleteSubscription.Handle(cmd.Context(), id); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Deleted subscription %s\n", id)
		return nil
	},
}
