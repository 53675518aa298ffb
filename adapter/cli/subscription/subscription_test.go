package subscription

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/troncosounlar-bit/legasync-flow/adapter/cli"
	"github.com/troncosounlar-bit/legasync-flow/adapter/cli/clitest"
	"github.com/troncosounlar-bit/legasync-flow/internal/billing/domain"
	customerCommands "github.com/troncosounlar-bit/legasync-flow/internal/customers/application/commands"
)

func resetFlags() {
	customerID = ""
	serviceName = ""
	description = ""
	amount = ""
	interval = "monthly"
	currency = ""
	nextDate = ""
	billingDay = 0
	listCustomer = ""
	toggleActive = true
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var output strings.Builder
	cmd.SetContext(context.Background())
	cmd.SetOut(&output)
	err := cmd.RunE(cmd, args)
	return output.String(), err
}

func seedCustomer(t *testing.T, app *cli.App) uuid.UUID {
	t.Helper()
	customer, err := app.CreateCustomer.Handle(context.Background(), customerCommands.CreateCustomerCommand{
		OperatorID: app.OperatorID,
		Name:       "Estudio Pérez",
	})
	require.NoError(t, err)
	return customer.ID()
}

func TestAddCmd_NoApp(t *testing.T) {
	resetFlags()
	cli.SetApp(nil)

	_, err := execute(t, addCmd)
	assert.ErrorIs(t, err, cli.ErrNotInitialized)
}

func TestAddCmd_CreatesSubscription(t *testing.T) {
	resetFlags()
	app := clitest.NewApp(t, nil)
	customerID = seedCustomer(t, app).String()
	serviceName = "Hosting"
	amount = "90000"
	currency = "ars"
	nextDate = "2026-11-30"
	billingDay = 31

	out, err := execute(t, addCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Added subscription")
	assert.Contains(t, out, "Estudio Pérez")
	assert.Contains(t, out, "90000.00 ARS")
	assert.Contains(t, out, "next 2026-11-30")

	subs, err := app.Subscriptions.Active(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "ARS", subs[0].CurrencyCode)
	assert.Equal(t, 31, subs[0].BillingDay)
}

func TestAddCmd_Validation(t *testing.T) {
	tests := []struct {
		name  string
		setup func(customer string)
	}{
		{name: "bad customer id", setup: func(string) { customerID = "nope"; serviceName = "x"; amount = "1" }},
		{name: "unknown customer", setup: func(string) { customerID = uuid.NewString(); serviceName = "x"; amount = "1" }},
		{name: "bad date", setup: func(c string) { customerID = c; serviceName = "x"; amount = "1"; nextDate = "30/11/2026" }},
		{name: "bad interval", setup: func(c string) { customerID = c; serviceName = "x"; amount = "1"; interval = "weekly" }},
		{name: "bad amount", setup: func(c string) { customerID = c; serviceName = "x"; amount = "diez" }},
	}

	app := clitest.NewApp(t, nil)
	customer := seedCustomer(t, app).String()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			tt.setup(customer)
			_, err := execute(t, addCmd)
			assert.Error(t, err)
		})
	}
}

func TestListToggleDelete(t *testing.T) {
	resetFlags()
	app := clitest.NewApp(t, nil)
	customer := seedCustomer(t, app)
	customerID = customer.String()
	serviceName = "Asesoría"
	amount = "250"
	_, err := execute(t, addCmd)
	require.NoError(t, err)

	subs, err := app.Subscriptions.Active(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 1)
	id := subs[0].ID.String()

	out, err := execute(t, listCmd)
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "[active]")

	toggleActive = false
	out, err = execute(t, toggleCmd, id)
	require.NoError(t, err)
	assert.Contains(t, out, "paused")

	out, err = execute(t, listCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "No subscriptions found.")

	listCustomer = customer.String()
	out, err = execute(t, listCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "[paused]")

	out, err = execute(t, deleteCmd, id)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted subscription")

	_, err = execute(t, toggleCmd, id)
	assert.ErrorIs(t, err, domain.ErrSubscriptionNotFound)
}
