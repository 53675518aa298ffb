package subscription

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/troncosounlar-bit/legasync-flow/adapter/cli"
	"github.com/troncosounlar-bit/legasync-flow/internal/billing/domain"
)

var listCustomer string

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List active subscriptions, or every subscription of a customer",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Subscriptions == nil {
			return cli.ErrNotInitialized
		}

		var (
			subs []domain.Subscription
			err  error
		)
		if listCustomer != "" {
			id, parseErr := cli.ParseID("customer", listCustomer)
			if parseErr != nil {
				return parseErr
			}
			subs, err = app.Subscriptions.ByCustomer(cmd.Context(), id)
		} else {
			subs, err = app.Subscriptions.Active(cmd.Context())
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(subs) == 0 {
			fmt.Fprintln(out, "No subscriptions found.")
			return nil
		}
		for _, sub := range subs {
			printSubscription(out, sub)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listCustomer, "customer", "", "list every subscription of this customer ID")
}
