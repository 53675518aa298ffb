package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/troncosounlar-bit/legasync-flow/internal/billing/domain"
)

func TestNewAutomatedInvoice(t *testing.T) {
	now := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	sub := domain.Subscription{
		ID:              uuid.New(),
		CustomerID:      uuid.New(),
		ServiceName:     "Asesoría",
		Amount:          decimal.NewFromInt(45),
		CurrencyCode:    "ARS",
		NextBillingDate: date(2024, 1, 1),
		IsActive:        true,
	}

	inv := domain.NewAutomatedInvoice(sub, domain.FiscalToken("CAE-ABC123XYZ"), "USD", now)

	assert.Equal(t, domain.FallbackCustomerName, inv.CustomerName)
	assert.True(t, inv.BaseAmount.Equal(sub.Amount))
	assert.Equal(t, "USD", inv.CurrencyCode)
	assert.Equal(t, domain.InvoicePending, inv.Status)
	assert.Equal(t, domain.FiscalValidated, inv.FiscalStatus)
	assert.Equal(t, "CAE-ABC123XYZ", inv.FiscalID)
	assert.Equal(t, "2024-01-01", inv.BillingPeriod)
	assert.True(t, inv.IsAutomated)
	require.NotNil(t, inv.ValidationDate)
	assert.Equal(t, now, *inv.ValidationDate)
	assert.Equal(t, sub.ID, *inv.SubscriptionID)
	assert.Equal(t, sub.CustomerID, *inv.CustomerID)
}

func TestNewLegacyAutomationInvoice(t *testing.T) {
	sub := domain.Subscription{
		CustomerID:   uuid.New(),
		CustomerName: "Acme",
		Description:  "Soporte",
		Amount:       decimal.NewFromInt(30),
		CurrencyCode: "EUR",
	}

	inv := domain.NewLegacyAutomationInvoice(sub, time.Now())

	assert.Equal(t, "Mensualidad Automática: Soporte", inv.Description)
	assert.Equal(t, "EUR", inv.CurrencyCode)
	assert.Empty(t, inv.BillingPeriod)
	assert.Nil(t, inv.SubscriptionID)
	assert.True(t, inv.IsAutomated)
	assert.Equal(t, domain.InvoicePending, inv.Status)
}

func TestNewManualInvoice(t *testing.T) {
	inv, err := domain.NewManualInvoice(nil, "", "Consulta", decimal.NewFromInt(80), "eur", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "EUR", inv.CurrencyCode)
	assert.Equal(t, domain.FallbackCustomerName, inv.CustomerName)
	assert.False(t, inv.IsAutomated)

	require.NoError(t, inv.MarkPaid())
	assert.True(t, inv.IsPaid())
	assert.ErrorIs(t, inv.MarkPaid(), domain.ErrInvoiceAlreadyPaid)

	_, err = domain.NewManualInvoice(nil, "x", "", decimal.NewFromInt(-1), "USD", time.Now())
	assert.ErrorIs(t, err, domain.ErrNegativeAmount)
}
