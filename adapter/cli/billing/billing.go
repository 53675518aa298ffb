// Package billing holds the billing run and reporting commands.
package billing

import "github.com/spf13/cobra"

// Cmd is the billing command group.
var Cmd = &cobra.Command{
	Use:   "billing",
	Short: "Run recurring billing and inspect revenue",
	Long: `Run the recurring-billing batch, the legacy monthly automation and the
revenue reports.`,
}

func init() {
	Cmd.AddCommand(runCmd)
	Cmd.AddCommand(monthlyCmd)
	Cmd.AddCommand(metricsCmd)
	Cmd.AddCommand(statsCmd)
	Cmd.AddCommand(taxCmd)
}
