package customer

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/troncosounlar-bit/legasync-flow/adapter/cli"
	"github.com/troncosounlar-bit/legasync-flow/internal/customers/application/commands"
)

var (
	updName        string
	updEmail       string
	updCompany     string
	updPhone       string
	updStatus      string
	updDeal        string
	updPriority    string
	updLastContact string
	updNotes       string
)

var updateCmd = &cobra.Command{
	Use:   "update <customer-id>",
	Short: "Change a customer's details or pipeline status",
	Long: `Change the fields given as flags and leave the rest alone. A status
change is added to the customer's activity.

Examples:
  legasync customer update <id> --status negotiation
  legasync customer update <id> --deal 20000 --last-contact 2026-10-01`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.UpdateCustomer == nil {
			return cli.ErrNotInitialized
		}

		id, err := cli.ParseID("customer", args[0])
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		changed := func(name, value string) *string {
			if !flags.Changed(name) {
				return nil
			}
			return &value
		}

		command := commands.UpdateCustomerCommand{
			OperatorID: app.OperatorID,
			CustomerID: id,
			Name:       changed("name", updName),
			Email:      changed("email", updEmail),
			Company:    changed("company", updCompany),
			Phone:      changed("phone", updPhone),
			Status:     changed("status", updStatus),
			DealValue:  changed("deal", updDeal),
			Priority:   changed("priority", updPriority),
			Notes:      changed("notes", updNotes),
		}
		if flags.Changed("last-contact") {
			if command.LastContact, err = cli.ParseDate(updLastContact); err != nil {
				return err
			}
		}

		customer, err := app.UpdateCustomer.Handle(cmd.Context(), command)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Updated customer %s [%s]\n", customer.Name(), customer.Status())
		return nil
	},
}

func init() {
	updateCmd.Flags().StringVar(&updName, "name", "", "customer name")
	updateCmd.Flags().StringVar(&updEmail, "email", "", "contact email")
	updateCmd.Flags().StringVar(&updCompany, "company", "", "company name")
	updateCmd.Flags().StringVar(&updPhone, "phone", "", "phone number")
	updateCmd.Flags().StringVar(&updStatus, "status", "", "pipeline status (prospect, negotiation, closed, lost)")
	updateCmd.Flags().StringVar(&updDeal, "deal", "", "deal value")
	updateCmd.Flags().StringVarP(&updPriority, "priority", "p", "", "priority (low, medium, high)")
	updateCmd.Flags().StringVar(&updLastContact, "last-contact", "", "last contact date (YYYY-MM-DD)")
	updateCmd.Flags().StringVar(&updNotes, "notes", "", "free-form notes")
}
