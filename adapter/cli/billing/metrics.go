package billing

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/troncosounlar-bit/legasync-flow/adapter/cli"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show revenue, capital at risk and automation figures",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.InvoiceMetrics == nil {
			return cli.ErrNotInitialized
		}

		m, err := app.InvoiceMetrics.Handle(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Invoices:         %d\n", m.InvoiceCount)
		fmt.Fprintf(out, "Total revenue:    %s\n", m.TotalRevenue.StringFixed(2))
		fmt.Fprintf(out, "Capital at risk:  %s\n", m.RiskCapital.StringFixed(2))
		fmt.Fprintf(out, "Automation:       %d%%\n", m.AutomationRatio)
		fmt.Fprintf(out, "Health score:     %d%%\n", m.HealthScore)
		return nil
	},
}
