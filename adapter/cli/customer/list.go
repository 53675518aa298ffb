package customer

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/troncosounlar-bit/legasync-flow/adapter/cli"
	"github.com/troncosounlar-bit/legasync-flow/internal/customers/domain"
)

var listStatus string

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List customers by name",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CustomerQueries == nil {
			return cli.ErrNotInitialized
		}

		customers, err := app.CustomerQueries.List(cmd.Context())
		if err != nil {
			return err
		}
		if listStatus != "" {
			customers = lo.Filter(customers, func(c *domain.Customer, _ int) bool {
				return string(c.Status()) == listStatus
			})
		}

		out := cmd.OutOrStdout()
		if len(customers) == 0 {
			fmt.Fprintln(out, "No customers found.")
			return nil
		}
		for _, c := range customers {
			fmt.Fprintf(out, "%s  %-28s %-12s %-6s deal %12s  expenses %d\n",
				c.ID(), c.Name(), c.Status(), c.Priority(), c.DealValue().StringFixed(2), len(c.Expenses()))
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listStatus, "status", "", "only customers in this pipeline status")
}
