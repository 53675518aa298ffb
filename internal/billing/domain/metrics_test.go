package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/troncosounlar-bit/legasync-flow/internal/billing/domain"
)

func invoice(amount string, status domain.InvoiceStatus, automated bool, created time.Time) domain.Invoice {
	return domain.Invoice{
		BaseAmount:  decimal.RequireFromString(amount),
		Status:      status,
		IsAutomated: automated,
		CreatedAt:   created,
	}
}

func TestComputeInvoiceMetrics(t *testing.T) {
	now := date(2024, 3, 1)

	t.Run("empty list", func(t *testing.T) {
		m := domain.ComputeInvoiceMetrics(nil, now, 0)
		assert.True(t, m.TotalRevenue.IsZero())
		assert.True(t, m.RiskCapital.IsZero())
		assert.Equal(t, 0, m.AutomationRatio)
		assert.Equal(t, 100, m.HealthScore)
	})

	t.Run("mixed invoices", func(t *testing.T) {
		invoices := []domain.Invoice{
			invoice("100", domain.InvoicePending, true, now.AddDate(0, 0, -20)),
			invoice("50", domain.InvoicePending, false, now.AddDate(0, 0, -3)),
			invoice("50", domain.InvoicePaid, false, now.AddDate(0, 0, -40)),
		}

		m := domain.ComputeInvoiceMetrics(invoices, now, 0)

		assert.Equal(t, "200", m.TotalRevenue.String())
		assert.Equal(t, "100", m.RiskCapital.String())
		assert.Equal(t, 50, m.AutomationRatio)
		assert.Equal(t, 33, m.HealthScore)
		assert.Equal(t, 3, m.InvoiceCount)
	})

	t.Run("risk window is configurable", func(t *testing.T) {
		invoices := []domain.Invoice{invoice("10", domain.InvoicePending, false, now.AddDate(0, 0, -3))}
		m := domain.ComputeInvoiceMetrics(invoices, now, 48*time.Hour)
		assert.Equal(t, "10", m.RiskCapital.String())
	})

	t.Run("ratios round half up", func(t *testing.T) {
		invoices := []domain.Invoice{
			invoice("1", domain.InvoicePaid, true, now),
			invoice("1", domain.InvoicePending, false, now),
		}
		m := domain.ComputeInvoiceMetrics(invoices, now, 0)
		assert.Equal(t, 50, m.AutomationRatio)
		assert.Equal(t, 50, m.HealthScore)
	})
}
