package invoice

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/troncosounlar-bit/legasync-flow/adapter/cli"
	"github.com/troncosounlar-bit/legasync-flow/adapter/cli/clitest"
	"github.com/troncosounlar-bit/legasync-flow/internal/billing/application/queries"
	"github.com/troncosounlar-bit/legasync-flow/internal/billing/domain"
	customerCommands "github.com/troncosounlar-bit/legasync-flow/internal/customers/application/commands"
)

func resetFlags() {
	search = ""
	limit = 0
	customerID = ""
	customerName = ""
	description = ""
	amount = ""
	currency = ""
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var output strings.Builder
	cmd.SetContext(context.Background())
	cmd.SetOut(&output)
	err := cmd.RunE(cmd, args)
	return output.String(), err
}

func TestListCmd_NoApp(t *testing.T) {
	resetFlags()
	cli.SetApp(nil)

	_, err := execute(t, listCmd)
	assert.ErrorIs(t, err, cli.ErrNotInitialized)
}

func TestCreateCmd_FromCustomer(t *testing.T) {
	resetFlags()
	app := clitest.NewApp(t, nil)
	customer, err := app.CreateCustomer.Handle(context.Background(), customerCommands.CreateCustomerCommand{
		OperatorID: app.OperatorID,
		Name:       "Estudio Gómez",
	})
	require.NoError(t, err)

	customerID = customer.ID().String()
	amount = "50000"
	currency = "ARS"
	out, err := execute(t, createCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Created invoice")
	assert.Contains(t, out, "Estudio Gómez")
	assert.Contains(t, out, "50000.00 ARS")
	assert.Contains(t, out, "manual")

	invoices, err := app.ListInvoices.Handle(context.Background(), queries.ListInvoicesQuery{})
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	require.NotNil(t, invoices[0].CustomerID)
	assert.Equal(t, customer.ID(), *invoices[0].CustomerID)
}

func TestCreateCmd_RequiresName(t *testing.T) {
	resetFlags()
	clitest.NewApp(t, nil)
	amount = "10"

	_, err := execute(t, createCmd)
	assert.Error(t, err)
}

func TestInvoiceLifecycle(t *testing.T) {
	resetFlags()
	app := clitest.NewApp(t, nil)

	for _, name := range []string{"Estudio Gómez", "Consultora Ruiz"} {
		resetFlags()
		customerName = name
		amount = "100"
		_, err := execute(t, createCmd)
		require.NoError(t, err)
	}

	resetFlags()
	search = "ruiz"
	out, err := execute(t, listCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Consultora Ruiz")
	assert.NotContains(t, out, "Estudio Gómez")

	invoices, err := app.ListInvoices.Handle(context.Background(), queries.ListInvoicesQuery{Search: "Ruiz"})
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	id := invoices[0].ID.String()

	out, err = execute(t, payCmd, id)
	require.NoError(t, err)
	assert.Contains(t, out, "paid")

	_, err = execute(t, payCmd, id)
	assert.ErrorIs(t, err, domain.ErrInvoiceAlreadyPaid)

	resetFlags()
	limit = 1
	out, err = execute(t, listCmd)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "\n"))

	_, err = execute(t, deleteCmd, id)
	require.NoError(t, err)

	_, err = execute(t, payCmd, id)
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)
}
