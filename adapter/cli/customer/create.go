package customer

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/troncosounlar-bit/legasync-flow/adapter/cli"
	"github.com/troncosounlar-bit/legasync-flow/internal/customers/application/commands"
)

var (
	email       string
	company     string
	phone       string
	status      string
	dealValue   string
	priority    string
	lastContact string
	notes       string
)

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Register a customer",
	Long: `Register a customer. Status defaults to prospect and priority to medium.

Examples:
  legasync customer create "Estudio Gómez"
  legasync customer create "Consultora Ruiz" --email ana@ruiz.com --deal 15000 --priority high`,
	Aliases: []string{"add", "new"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CreateCustomer == nil {
			return cli.ErrNotInitialized
		}

		contact, err := cli.ParseDate(lastContact)
		if err != nil {
			return err
		}

		customer, err := app.CreateCustomer.Handle(cmd.Context(), commands.CreateCustomerCommand{
			OperatorID:  app.OperatorID,
			Name:        args[0],
			Email:       email,
			Company:     company,
			Phone:       phone,
			Status:      status,
			DealValue:   dealValue,
			Priority:    priority,
			LastContact: contact,
			Notes:       notes,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Registered customer %s (%s)\n", customer.Name(), customer.ID())
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&email, "email", "", "contact email")
	createCmd.Flags().StringVar(&company, "company", "", "company name")
	createCmd.Flags().StringVar(&phone, "phone", "", "phone number")
	createCmd.Flags().StringVar(&status, "status", "", "pipeline status (prospect, negotiation, closed, lost)")
	createCmd.Flags().StringVar(&dealValue, "deal", "", "deal value")
	createCmd.Flags().StringVarP(&priority, "priority", "p", "", "priority (low, medium, high)")
	createCmd.Flags().StringVar(&lastContact, "last-contact", "", "last contact date (YYYY-MM-DD)")
	createCmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
}
