package billing

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/troncosounlar-bit/legasync-flow/adapter/cli"
	"github.com/troncosounlar-bit/legasync-flow/internal/billing/application/commands"
	"github.com/troncosounlar-bit/legasync-flow/internal/billing/domain"
)

var runJSON bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Invoice every subscription that is due",
	Long: `Run the recurring-billing batch: every active subscription whose next
billing date has passed is validated with the fiscal service, invoiced once
for its period and moved to its next billing date.

Examples:
  legasync billing run
  legasync billing run --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.RunBilling == nil {
			return cli.ErrNotInitialized
		}

		result, err := app.RunBilling.Handle(cmd.Context(), commands.RunBillingCommand{OperatorID: app.OperatorID})
		if errors.Is(err, domain.ErrRunInProgress) {
			fmt.Fprintln(cmd.OutOrStdout(), "Another billing run is in progress. Try again later.")
			return nil
		}
		if runJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if encErr := enc.Encode(runReport(result)); encErr != nil {
				return encErr
			}
			return err
		}
		if err != nil {
			return fmt.Errorf("billing run failed: %w", err)
		}

		printRun(cmd, result)
		return nil
	},
}

type report struct {
	domain.RunResult
	Status     domain.RunStatus `json:"status"`
	DurationMS int64            `json:"duration_ms"`
	Error      string           `json:"error,omitempty"`
}

func runReport(result domain.RunResult) report {
	r := report{
		RunResult:  result,
		Status:     result.Status(),
		DurationMS: result.Duration().Milliseconds(),
	}
	if result.Err != nil {
		r.Error = result.Err.Error()
	}
	return r
}

func printRun(cmd *cobra.Command, result domain.RunResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Billing run %s: %s\n", result.RunID, result.Status())
	fmt.Fprintf(out, "  considered: %d  due: %d  invoices: %d  resumed: %d\n",
		result.Considered, result.Due, result.InvoiceCount(), result.Resumed)

	for _, inv := range result.Invoices {
		fmt.Fprintf(out, "  + %s  %s %s  period %s\n",
			inv.InvoiceID, inv.Amount.StringFixed(2), inv.Currency, inv.BillingPeriod)
	}
	for _, f := range result.Failures {
		fmt.Fprintf(out, "  ! %s  %s: %s\n", f.SubscriptionID, f.Stage, f.Error)
	}
	fmt.Fprintf(out, "  took %s\n", result.Duration().Round(time.Millisecond))
}

func init() {
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print the run result as JSON")
}
