package domain

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// ExchangeTable maps a currency code to its value in USD.
type ExchangeTable map[string]decimal.Decimal

// DefaultExchangeTable holds the static rates the statistics panel uses.
func DefaultExchangeTable() ExchangeTable {
	return ExchangeTable{
		"USD": decimal.NewFromInt(1),
		"ARS": decimal.RequireFromString("0.0012"),
		"EUR": decimal.RequireFromString("1.08"),
		"MXN": decimal.RequireFromString("0.058"),
		"BRL": decimal.RequireFromString("0.20"),
	}
}

// ToUSD converts amount. Empty currency means USD and unknown or zero
// rates count as 1.
func (t ExchangeTable) ToUSD(amount decimal.Decimal, currency string) decimal.Decimal {
	if currency == "" {
		currency = "USD"
	}
	rate, ok := t[currency]
	if !ok || rate.IsZero() {
		return amount
	}
	return amount.Mul(rate)
}

// CustomerRevenue is paid USD revenue attributed to one customer name.
type CustomerRevenue struct {
	Customer string          `json:"customer"`
	Amount   decimal.Decimal `json:"amount_usd"`
}

// Statistics summarises paid revenue.
type Statistics struct {
	TotalRevenueUSD   decimal.Decimal   `json:"total_revenue_usd"`
	RevenueByCustomer []CustomerRevenue `json:"revenue_by_customer"`
}

// Labels returns customer names in first-seen order.
func (s Statistics) Labels() []string {
	return lo.Map(s.RevenueByCustomer, func(c CustomerRevenue, _ int) string { return c.Customer })
}

// Values returns the amounts aligned with Labels.
func (s Statistics) Values() []decimal.Decimal {
	return lo.Map(s.RevenueByCustomer, func(c CustomerRevenue, _ int) decimal.Decimal { return c.Amount })
}

// RevenueStatistics normalises paid invoices to USD. Customers keep the
// order in which they first appear in invoices.
func RevenueStatistics(invoices []Invoice, table ExchangeTable) Statistics {
	if table == nil {
		table = DefaultExchangeTable()
	}
	paid := lo.Filter(invoices, func(inv Invoice, _ int) bool { return inv.IsPaid() })

	stats := Statistics{TotalRevenueUSD: decimal.Zero, RevenueByCustomer: []CustomerRevenue{}}
	index := make(map[string]int)
	for _, inv := range paid {
		usd := table.ToUSD(inv.BaseAmount, inv.CurrencyCode)
		stats.TotalRevenueUSD = stats.TotalRevenueUSD.Add(usd)

		i, seen := index[inv.CustomerName]
		if !seen {
			i = len(stats.RevenueByCustomer)
			index[inv.CustomerName] = i
			stats.RevenueByCustomer = append(stats.RevenueByCustomer, CustomerRevenue{Customer: inv.CustomerName, Amount: decimal.Zero})
		}
		stats.RevenueByCustomer[i].Amount = stats.RevenueByCustomer[i].Amount.Add(usd)
	}
	return stats
}
