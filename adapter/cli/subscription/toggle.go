package subscription

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/troncosounlar-bit/legasync-flow/adapter/cli"
	"github.com/troncosounlar-bit/legasync-flow/internal/billing/application/commands"
)

var toggleActive bool

var toggleCmd = &cobra.Command{
	Use:   "toggle <subscription-id>",
	Short: "Pause or resume a subscription",
	Long: `Pause or resume a subscription. Paused subscriptions are skipped by the
billing run.

Examples:
  legasync subscription toggle <id> --active=false
  legasync subscription toggle <id> --active`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ToggleSubscription == nil {
			return cli.ErrNotInitialized
		}

		id, err := cli.ParseID("subscription", args[0])
		if err != nil {
			return err
		}
		err = app.ToggleSubscription.Handle(cmd.Context(), commands.ToggleSubscriptionCommand{
			OperatorID:     app.OperatorID,
			SubscriptionID: id,
			Active:         toggleActive,
		})
		if err != nil {
			return err
		}

		state := "paused"
		if toggleActive {
			state = "resumed"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Subscription %s %s\n", id, state)
		return nil
	},
}

func init() {
	toggleCmd.Flags().BoolVar(&toggleActive, "active", true, "whether the subscription is billed")
}
