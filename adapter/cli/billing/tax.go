package billing

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/troncosounlar-bit/legasync-flow/internal/billing/application/queries"
)

var taxCmd = &cobra.Command{
	Use:   "tax <amount>",
	Short: "Compute the 21% tax for an amount",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := decimal.NewFromString(args[0])
		if err != nil {
			return fmt.Errorf("invalid amount %q", args[0])
		}

		result, err := queries.CalculateTax(amount)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Amount: %s\n", result.Amount.StringFixed(2))
		fmt.Fprintf(out, "Tax:    %s\n", result.Tax.StringFixed(2))
		fmt.Fprintf(out, "Total:  %s\n", result.Total.StringFixed(2))
		return nil
	},
}
