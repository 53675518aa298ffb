package domain

import (
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Balance is the profitability summary printed on a customer's report.
type Balance struct {
	CustomerID    uuid.UUID       `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	DealValue     decimal.Decimal `json:"deal_value"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	NetBalance    decimal.Decimal `json:"net_balance"`
	ExpenseCount  int             `json:"expense_count"`
}

// ComputeBalance subtracts expenses from the customer's deal value.
func ComputeBalance(c *Customer, expenses []Expense) Balance {
	total := lo.Reduce(expenses, func(sum decimal.Decimal, e Expense, _ int) decimal.Decimal {
		return sum.Add(e.Amount)
	}, decimal.Zero)

	return Balance{
		CustomerID:    c.ID(),
		CustomerName:  c.Name(),
		DealValue:     c.DealValue(),
		TotalExpenses: total,
		NetBalance:    c.DealValue().Sub(total),
		ExpenseCount:  len(expenses),
	}
}
