package subscription

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/troncosounlar-bit/legasync-flow/adapter/cli"
	"github.com/troncosounlar-bit/legasync-flow/internal/billing/application/commands"
)

var (
	customerID  string
	serviceName string
	description string
	amount      string
	interval    string
	currency    string
	nextDate    string
	billingDay  int
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a subscription for a customer",
	Long: `Add an active recurring subscription. Without --next the subscription is
due immediately.

Examples:
  legasync subscription add --customer <id> --service "Asesoría" --amount 250
  legasync subscription add --customer <id> --service Hosting --amount 90000 --currency ARS --next 2026-11-01 --day 1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.AddSubscription == nil {
			return cli.ErrNotInitialized
		}

		custID, err := cli.ParseID("customer", customerID)
		if err != nil {
			return err
		}
		customer, err := app.CustomerQueries.Get(cmd.Context(), custID)
		if err != nil {
			return err
		}
		next, err := cli.ParseDate(nextDate)
		if err != nil {
			return err
		}

		command := commands.AddSubscriptionCommand{
			OperatorID:   app.OperatorID,
			CustomerID:   custID,
			CustomerName: customer.Name(),
			ServiceName:  serviceName,
			Description:  description,
			Amount:       amount,
			Interval:     interval,
			CurrencyCode: currency,
			BillingDay:   billingDay,
		}
		if next != nil {
			command.NextBillingDate = *next
		} else {
			command.NextBillingDate = time.Now().UTC()
		}

		sub, err := app.AddSubscription.Handle(cmd.Context(), command)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Added subscription %s\n", sub.ID)
		printSubscription(cmd.OutOrStdout(), *sub)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&customerID, "customer", "", "customer ID (required)")
	addCmd.Flags().StringVarP(&serviceName, "service", "s", "", "service name (required)")
	addCmd.Flags().StringVarP(&description, "description", "d", "", "description")
	addCmd.Flags().StringVarP(&amount, "amount", "a", "", "amount per period (required)")
	addCmd.Flags().StringVar(&interval, "interval", "monthly", "billing interval (monthly, yearly)")
	addCmd.Flags().StringVar(&currency, "currency", "", "ISO currency code (default USD)")
	addCmd.Flags().StringVar(&nextDate, "next", "", "next billing date (YYYY-MM-DD)")
	addCmd.Flags().IntVar(&billingDay, "day", 0, "day of month to bill on (0 keeps the next date's day)")
	_ = addCmd.MarkFlagRequired("customer")
	_ = addCmd.MarkFlagRequired("service")
	_ = addCmd.MarkFlagRequired("amount")
}
