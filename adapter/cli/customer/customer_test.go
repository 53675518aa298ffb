package customer

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/troncosounlar-bit/legasync-flow/adapter/cli"
	"github.com/troncosounlar-bit/legasync-flow/adapter/cli/clitest"
	"github.com/troncosounlar-bit/legasync-flow/internal/customers/domain"
)

func resetFlags() {
	email, company, phone, status = "", "", "", ""
	dealValue, priority, lastContact, notes = "", "", "", ""
	listStatus = ""
	expDescription, expAmount, expVendor, expCategory, expDate = "", "", "", "", ""
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var output strings.Builder
	cmd.SetContext(context.Background())
	cmd.SetOut(&output)
	err := cmd.RunE(cmd, args)
	return output.String(), err
}

func onlyCustomer(t *testing.T, app *cli.App) *domain.Customer {
	t.Helper()
	customers, err := app.CustomerQueries.List(context.Background())
	require.NoError(t, err)
	require.Len(t, customers, 1)
	return customers[0]
}

func TestCreateCmd_NoApp(t *testing.T) {
	resetFlags()
	cli.SetApp(nil)

	_, err := execute(t, createCmd, "Estudio Gómez")
	assert.ErrorIs(t, err, cli.ErrNotInitialized)
}

func TestCreateCmd(t *testing.T) {
	resetFlags()
	app := clitest.NewApp(t, nil)
	email = "ana@ruiz.com"
	dealValue = "15000"
	priority = "high"
	lastContact = "2026-10-01"

	out, err := execute(t, createCmd, "Consultora Ruiz")
	require.NoError(t, err)
	assert.Contains(t, out, "Registered customer Consultora Ruiz")

	c := onlyCustomer(t, app)
	assert.Equal(t, domain.StatusProspect, c.Status())
	assert.Equal(t, domain.PriorityHigh, c.Priority())
	assert.Equal(t, "15000", c.DealValue().String())
	require.NotNil(t, c.LastContact())
	assert.Equal(t, "2026-10-01", c.LastContact().Format(cli.DateLayout))
}

func TestCreateCmd_Validation(t *testing.T) {
	tests := []struct {
		name  string
		setup func()
	}{
		{name: "bad email", setup: func() { email = "not-an-email" }},
		{name: "bad status", setup: func() { status = "won" }},
		{name: "bad deal", setup: func() { dealValue = "mucho" }},
		{name: "bad date", setup: func() { lastContact = "ayer" }},
	}

	clitest.NewApp(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			tt.setup()
			_, err := execute(t, createCmd, "Estudio Gómez")
			assert.Error(t, err)
		})
	}
}

func TestCustomerLifecycle(t *testing.T) {
	resetFlags()
	app := clitest.NewApp(t, nil)
	dealValue = "10000"
	_, err := execute(t, createCmd, "Estudio Gómez")
	require.NoError(t, err)
	id := onlyCustomer(t, app).ID().String()

	require.NoError(t, updateCmd.Flags().Set("status", "negotiation"))
	out, err := execute(t, updateCmd, id)
	require.NoError(t, err)
	assert.Contains(t, out, "[negotiation]")

	expAmount = "1200"
	expVendor = "AWS"
	out, err = execute(t, expenseAddCmd, id)
	require.NoError(t, err)
	assert.Contains(t, out, "AWS 1200.00")

	out, err = execute(t, showCmd, id)
	require.NoError(t, err)
	assert.Contains(t, out, "Status:    negotiation")
	assert.Regexp(t, `Net:\s+8800\.00`, out)
	assert.Contains(t, out, "Pipeline: de PROSPECT a NEGOTIATION")
	assert.Contains(t, out, domain.RegisteredAction)

	listStatus = "negotiation"
	out, err = execute(t, listCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Estudio Gómez")
	assert.Contains(t, out, "expenses 1")

	listStatus = "closed"
	out, err = execute(t, listCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "No customers found.")

	expenses, err := app.CustomerQueries.Expenses(context.Background(), onlyCustomer(t, app).ID())
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	_, err = execute(t, expenseDeleteCmd, expenses[0].ID.String())
	require.NoError(t, err)

	_, err = execute(t, deleteCmd, id)
	require.NoError(t, err)

	_, err = execute(t, showCmd, id)
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
}
