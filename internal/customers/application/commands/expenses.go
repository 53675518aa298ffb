package commands

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/troncosounlar-bit/legasync-flow/internal/customers/domain"
	sharedApplication "github.com/troncosounlar-bit/legasync-flow/internal/shared/application"
)

// AddExpenseCommand records an expense against a customer.
type AddExpenseCommand struct {
	CustomerID  uuid.UUID `validate:"required"`
	Description string    `validate:"max=500"`
	Amount      string    `validate:"omitempty,numeric"`
	Vendor      string    `validate:"max=200"`
	Category    string    `validate:"max=100"`
	Date        *time.Time
}

// ExpenseHandler adds and removes expenses.
type ExpenseHandler struct {
	customers domain.CustomerRepository
	expenses  domain.ExpenseRepository
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(customers domain.CustomerRepository, expenses domain.ExpenseRepository) *ExpenseHandler {
	return &ExpenseHandler{customers: customers, expenses: expenses}
}

// Add records the expense. A missing amount counts as zero.
func (h *ExpenseHandler) Add(ctx context.Context, cmd AddExpenseCommand) (*domain.Expense, error) {
	if err := sharedApplication.ValidateCommand(cmd); err != nil {
		return nil, err
	}
	amount, err := parseAmount("amount", cmd.Amount)
	if err != nil {
		return nil, err
	}
	if _, err := h.customers.FindByID(ctx, cmd.CustomerID); err != nil {
		return nil, err
	}

	expense, err := domain.NewExpense(domain.NewExpenseParams{
		CustomerID:  cmd.CustomerID,
		Description: cmd.Description,
		Amount:      amount,
		Vendor:      cmd.Vendor,
		Category:    cmd.Category,
		Date:        cmd.Date,
	}, time.Now())
	if err != nil {
		return nil, err
	}
	if err := h.expenses.Create(ctx, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

// Delete removes the expense with id.
func (h *ExpenseHandler) Delete(ctx context.Context, id uuid.UUID) error {
	return h.expenses.Delete(ctx, id)
}
