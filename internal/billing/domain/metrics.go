package domain

import (
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// DefaultRiskAfter is how old a pending invoice must be to count as risk.
const DefaultRiskAfter = 15 * 24 * time.Hour

// InvoiceMetrics are the dashboard figures derived from the invoice list.
type InvoiceMetrics struct {
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	RiskCapital     decimal.Decimal `json:"risk_capital"`
	AutomationRatio int             `json:"automation_ratio"`
	HealthScore     int             `json:"health_score"`
	InvoiceCount    int             `json:"invoice_count"`
}

// ComputeInvoiceMetrics derives the dashboard figures. A non-positive
// riskAfter falls back to DefaultRiskAfter.
func ComputeInvoiceMetrics(invoices []Invoice, now time.Time, riskAfter time.Duration) InvoiceMetrics {
	if riskAfter <= 0 {
		riskAfter = DefaultRiskAfter
	}

	sumAmounts := func(list []Invoice) decimal.Decimal {
		return lo.Reduce(list, func(acc decimal.Decimal, inv Invoice, _ int) decimal.Decimal {
			return acc.Add(inv.BaseAmount)
		}, decimal.Zero)
	}

	total := sumAmounts(invoices)
	atRisk := lo.Filter(invoices, func(inv Invoice, _ int) bool {
		return inv.Status == InvoicePending && !inv.CreatedAt.IsZero() && inv.Age(now) > riskAfter
	})
	automated := lo.Filter(invoices, func(inv Invoice, _ int) bool { return inv.IsAutomated })
	paid := lo.CountBy(invoices, func(inv Invoice) bool { return inv.IsPaid() })

	m := InvoiceMetrics{
		TotalRevenue: total,
		RiskCapital:  sumAmounts(atRisk),
		HealthScore:  100,
		InvoiceCount: len(invoices),
	}
	if !total.IsZero() {
		m.AutomationRatio = roundPercent(sumAmounts(automated), total)
	}
	if len(invoices) > 0 {
		m.HealthScore = roundPercent(decimal.NewFromInt(int64(paid)), decimal.NewFromInt(int64(len(invoices))))
	}
	return m
}
