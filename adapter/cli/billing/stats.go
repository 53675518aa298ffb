package billing

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/troncosounlar-bit/legasync-flow/adapter/cli"
)

var statsTop int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show paid revenue in USD by customer",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.RevenueStatistics == nil {
			return cli.ErrNotInitialized
		}

		stats, err := app.RevenueStatistics.Handle(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Paid revenue: USD %s\n", stats.TotalRevenueUSD.StringFixed(2))
		for i, c := range stats.RevenueByCustomer {
			if statsTop > 0 && i >= statsTop {
				break
			}
			fmt.Fprintf(out, "  %-30s %12s\n", c.Customer, c.Amount.StringFixed(2))
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().IntVar(&statsTop, "top", 0, "only show the first N customers")
}
