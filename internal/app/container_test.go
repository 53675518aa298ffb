package app

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	billingCommands "github.com/troncosounlar-bit/legasync-flow/internal/billing/application/commands"
	customerCommands "github.com/troncosounlar-bit/legasync-flow/internal/customers/application/commands"
	dashboardDomain "github.com/troncosounlar-bit/legasync-flow/internal/dashboard/domain"
	"github.com/troncosounlar-bit/legasync-flow/internal/shared/infrastructure/database"
	"github.com/troncosounlar-bit/legasync-flow/pkg/config"
	"github.com/troncosounlar-bit/legasync-flow/pkg/observability"
)

func localConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		AppEnv:               "test",
		OperatorID:           "00000000-0000-0000-0000-000000000001",
		SQLitePath:           filepath.Join(t.TempDir(), "legasync.db"),
		ViewCacheTTL:         time.Minute,
		OutboxPollInterval:   10 * time.Millisecond,
		OutboxBatchSize:      50,
		OutboxMaxRetries:     3,
		BillingRunLockTTL:    time.Minute,
		DefaultCurrency:      "USD",
		CurrencyPolicy:       config.CurrencyPolicyDefault,
		IntervalPolicy:       config.IntervalPolicyMonthly,
		MonthEndPolicy:       config.MonthEndPolicyClamp,
		InvoiceRiskAfter:     360 * time.Hour,
		FiscalMode:           config.FiscalModeSimulated,
		FiscalSimulatedDelay: time.Millisecond,
		ExchangeCacheTTL:     time.Minute,
	}
}

func newLocalContainer(t *testing.T) *Container {
	t.Helper()
	var logs bytes.Buffer
	logger := observability.NewLogger(observability.LogConfig{
		Level:  observability.LogLevelDebug,
		Format: observability.LogFormatText,
		Output: &logs,
	})

	c, err := NewContainer(context.Background(), localConfig(t), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestNewContainer_LocalMode(t *testing.T) {
	c := newLocalContainer(t)

	assert.Equal(t, database.DriverSQLite, c.DBConn.Driver())
	assert.Nil(t, c.RedisClient)
	assert.Nil(t, c.Supabase)
	assert.False(t, c.Factory.Remote())
	assert.True(t, c.LocalEvents())
	assert.Equal(t, "closed", c.Fiscal.State())

	health := c.Health.Check(context.Background())
	assert.Equal(t, observability.HealthStatusHealthy, health.Status)
	assert.ElementsMatch(t, []string{"database", "fiscal"}, c.Health.Names())
}

func TestNewContainer_RejectsBadOperator(t *testing.T) {
	cfg := localConfig(t)
	cfg.OperatorID = "not-a-uuid"

	_, err := NewContainer(context.Background(), cfg, slog.Default())
	assert.Error(t, err)
}

func TestContainer_BillingRunFeedsDashboard(t *testing.T) {
	c := newLocalContainer(t)
	ctx := context.Background()

	customer, err := c.CreateCustomer.Handle(ctx, customerCommands.CreateCustomerCommand{
		OperatorID: c.OperatorID(),
		Name:       "Estudio Gómez",
		DealValue:  "1500",
	})
	require.NoError(t, err)

	_, err = c.AddSubscription.Handle(ctx, billingCommands.AddSubscriptionCommand{
		OperatorID:      c.OperatorID(),
		CustomerID:      customer.ID(),
		CustomerName:    customer.Name(),
		ServiceName:     "Asesoría mensual",
		Amount:          "250.00",
		NextBillingDate: time.Now().UTC().AddDate(0, 0, -1),
	})
	require.NoError(t, err)

	result, err := c.RunBilling.Handle(ctx, billingCommands.RunBillingCommand{OperatorID: c.OperatorID()})
	require.NoError(t, err)
	assert.Equal(t, 1, result.InvoiceCount())
	assert.Empty(t, result.Failures)

	invoices, err := c.Views.Invoices(ctx)
	require.NoError(t, err)
	require.Len(t, invoices, 1)

	c.FlushEvents(ctx)

	feed, err := c.ActivityLog.RecentLogs(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, dashboardDomain.LogSuccess, feed[0].Type)
	assert.Equal(t, "Facturación automática: 1 facturas generadas, 0 errores", feed[0].Message)
	assert.Equal(t, "Nuevo cliente registrado: Estudio Gómez", feed[1].Message)
	require.NotNil(t, feed[0].UserID)
	assert.Equal(t, c.OperatorID(), *feed[0].UserID)

	assert.Equal(t, int64(1), c.Metrics.GetCounter(observability.MetricFiscalValidations, observability.T("outcome", "validated")))
}
