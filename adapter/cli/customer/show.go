package customer

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/troncosounlar-bit/legasync-flow/adapter/cli"
)

var showCmd = &cobra.Command{
	Use:   "show <customer-id>",
	Short: "Show a customer with balance, expenses and activity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CustomerQueries == nil {
			return cli.ErrNotInitialized
		}

		id, err := cli.ParseID("customer", args[0])
		if err != nil {
			return err
		}
		c, err := app.CustomerQueries.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		balance, err := app.CustomerQueries.Balance(cmd.Context(), id)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n", c.Name())
		fmt.Fprintf(out, "  ID:        %s\n", c.ID())
		if c.Company() != "" {
			fmt.Fprintf(out, "  Company:   %s\n", c.Company())
		}
		if c.Email() != "" {
			fmt.Fprintf(out, "  Email:     %s\n", c.Email())
		}
		if c.Phone() != "" {
			fmt.Fprintf(out, "  Phone:     %s\n", c.Phone())
		}
		fmt.Fprintf(out, "  Status:    %s\n", c.Status())
		fmt.Fprintf(out, "  Priority:  %s\n", c.Priority())
		if lc := c.LastContact(); lc != nil {
			fmt.Fprintf(out, "  Contacted: %s\n", lc.Format(cli.DateLayout))
		}
		if c.Notes() != "" {
			fmt.Fprintf(out, "  Notes:     %s\n", c.Notes())
		}

		fmt.Fprintln(out, "\n  Balance")
		fmt.Fprintf(out, "    Deal value:  %12s\n", balance.DealValue.StringFixed(2))
		fmt.Fprintf(out, "    Expenses:    %12s (%d)\n", balance.TotalExpenses.StringFixed(2), balance.ExpenseCount)
		fmt.Fprintf(out, "    Net:         %12s\n", balance.NetBalance.StringFixed(2))

		if len(c.Expenses()) > 0 {
			fmt.Fprintln(out, "\n  Expenses")
			for _, e := range c.Expenses() {
				fmt.Fprintf(out, "    %s  %s  %-12s %10s  %s\n",
					e.ID, e.Date.Format(cli.DateLayout), e.Category, e.Amount.StringFixed(2), e.Description)
			}
		}

		fmt.Fprintln(out, "\n  Activity")
		for _, a := range c.Activity() {
			fmt.Fprintf(out, "    %s  %s\n", a.Date.Format(cli.DateLayout), a.Action)
		}
		return nil
	},
}
