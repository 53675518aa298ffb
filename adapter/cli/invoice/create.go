package invoice

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/troncosounlar-bit/legasync-flow/adapter/cli"
	"github.com/troncosounlar-bit/legasync-flow/internal/billing/application/commands"
)

var (
	customerID   string
	customerName string
	description  string
	amount       string
	currency     string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a manual invoice",
	Long: `Create a pending manual invoice. With --customer the name is taken from
the customer record.

Examples:
  legasync invoice create --name "Estudio Gómez" --amount 1200
  legasync invoice create --customer <id> --amount 50000 --currency ARS -d "Honorarios"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Invoices == nil {
			return cli.ErrNotInitialized
		}

		command := commands.CreateInvoiceCommand{
			CustomerName: customerName,
			Description:  description,
			Amount:       amount,
			CurrencyCode: currency,
		}
		if customerID != "" {
			id, err := cli.ParseID("customer", customerID)
			if err != nil {
				return err
			}
			customer, err := app.CustomerQueries.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			command.CustomerID = uuidPtr(id)
			if command.CustomerName == "" {
				command.CustomerName = customer.Name()
			}
		}

		inv, err := app.Invoices.Create(cmd.Context(), command)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created invoice %s\n", inv.ID)
		printInvoice(cmd.OutOrStdout(), *inv)
		return nil
	},
}

func uuidPtr(id uuid.UUID) *uuid.UUID { return &id }

func init() {
	createCmd.Flags().StringVar(&customerID, "customer", "", "customer ID")
	createCmd.Flags().StringVar(&customerName, "name", "", "customer name (defaults to the customer's)")
	createCmd.Flags().StringVarP(&description, "description", "d", "", "description")
	createCmd.Flags().StringVarP(&amount, "amount", "a", "", "amount (required)")
	createCmd.Flags().StringVar(&currency, "currency", "", "ISO currency code (default USD)")
	_ = createCmd.MarkFlagRequired("amount")
}
