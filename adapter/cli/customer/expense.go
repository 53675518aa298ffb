package customer

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/troncosounlar-bit/legasync-flow/adapter/cli"
	"github.com/troncosounlar-bit/legasync-flow/internal/customers/application/commands"
)

var (
	expDescription string
	expAmount      string
	expVendor      string
	expCategory    string
	expDate        string
)

var expenseCmd = &cobra.Command{
	Use:   "expense",
	Short: "Record or remove customer expenses",
}

var expenseAddCmd = &cobra.Command{
	Use:   "add <customer-id>",
	Short: "Record an expense against a customer",
	Long: `Record an expense. Category defaults to the vendor, or "General" without
one, and date to today.

Examples:
  legasync customer expense add <id> --amount 1200 --vendor AWS --category Infra`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Expenses == nil {
			return cli.ErrNotInitialized
		}

		id, err := cli.ParseID("customer", args[0])
		if err != nil {
			return err
		}
		date, err := cli.ParseDate(expDate)
		if err != nil {
			return err
		}

		expense, err := app.Expenses.Add(cmd.Context(), commands.AddExpenseCommand{
			CustomerID:  id,
			Description: expDescription,
			Amount:      expAmount,
			Vendor:      expVendor,
			Category:    expCategory,
			Date:        date,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Recorded expense %s: %s %s\n", expense.ID, expense.Category, expense.Amount.StringFixed(2))
		return nil
	},
}

var expenseDeleteCmd = &cobra.Command{
	Use:     "delete <expense-id>",
	Short:   "Remove an expense",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Expenses == nil {
			return cli.ErrNotInitialized
		}

		id, err := cli.ParseID("expense", args[0])
		if err != nil {
			return err
		}
		if err := app.Expenses.Delete(cmd.Context(), id); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Deleted expense %s\n", id)
		return nil
	},
}

func init() {
	expenseAddCmd.Flags().StringVarP(&expDescription, "description", "d", "", "description")
	expenseAddCmd.Flags().StringVarP(&expAmount, "amount", "a", "", "amount")
	expenseAddCmd.Flags().StringVar(&expVendor, "vendor", "", "vendor")
	expenseAddCmd.Flags().StringVar(&expCategory, "category", "", "category")
	expenseAddCmd.Flags().StringVar(&expDate, "date", "", "expense date (YYYY-MM-DD)")

	expenseCmd.AddCommand(expenseAddCmd)
	expenseCmd.AddCommand(expenseDeleteCmd)
}
