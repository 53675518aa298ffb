package billing

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/troncosounlar-bit/legasync-flow/adapter/cli"
	"github.com/troncosounlar-bit/legasync-flow/internal/billing/domain"
)

var monthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Create one pending invoice per active subscription",
	Long: `Run the legacy monthly automation. Every active subscription gets a
pending invoice in its own currency, whatever its billing date. Nothing is
validated or rescheduled; prefer "legasync billing run".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.RunMonthly == nil {
			return cli.ErrNotInitialized
		}

		count, err := app.RunMonthly.Handle(cmd.Context())
		if errors.Is(err, domain.ErrNoActiveSubscriptions) {
			fmt.Fprintln(cmd.OutOrStdout(), "No active subscriptions.")
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created %d invoices.\n", count)
		return nil
	},
}
