// Package subscription manages recurring subscriptions from the CLI.
package subscription

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/troncosounlar-bit/legasync-flow/internal/billing/domain"
)

// Cmd is the subscription command group.
var Cmd = &cobra.Command{
	Use:     "subscription",
	Short:   "Manage recurring subscriptions",
	Aliases: []string{"sub", "subs"},
}

func init() {
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(toggleCmd)
	Cmd.AddCommand(deleteCmd)
}

func printSubscription(out io.Writer, sub domain.Subscription) {
	state := "active"
	if !sub.IsActive {
		state = "paused"
	}
	fmt.Fprintf(out, "%s  %-24s %-24s %10s %s  %-7s next %s  [%s]\n",
		sub.ID,
		sub.CustomerName,
		sub.ServiceName,
		sub.Amount.StringFixed(2),
		sub.CurrencyCode,
		sub.Interval,
		sub.NextBillingDate.Format("2006-01-02"),
		state,
	)
}
