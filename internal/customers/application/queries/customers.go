// Package queries reads customers, expenses and balances.
package queries

import (
	"context"

	"github.com/google/uuid"

	"github.com/troncosounlar-bit/legasync-flow/internal/customers/domain"
)

// CustomerQueries serves the customer screens.
type CustomerQueries struct {
	customers domain.CustomerRepository
	expenses  domain.ExpenseRepository
}

// NewCustomerQueries creates the query handler.
func NewCustomerQueries(customers domain.CustomerRepository, expenses domain.ExpenseRepository) *CustomerQueries {
	return &CustomerQueries{customers: customers, expenses: expenses}
}

// List returns customers by name with their expenses.
func (q *CustomerQueries) List(ctx context.Context) ([]*domain.Customer, error) {
	return q.customers.List(ctx)
}

// Get returns one customer with its expenses.
func (q *CustomerQueries) Get(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	return q.customers.FindByID(ctx, id)
}

// Expenses returns a customer's expenses newest first.
func (q *CustomerQueries) Expenses(ctx context.Context, customerID uuid.UUID) ([]domain.Expense, error) {
	return q.expenses.ListByCustomer(ctx, customerID)
}

// Balance returns deal value, expenses and net balance for a customer.
func (q *CustomerQueries) Balance(ctx context.Context, customerID uuid.UUID) (domain.Balance, error) {
	customer, err := q.customers.FindByID(ctx, customerID)
	if err != nil {
		return domain.Balance{}, err
	}
	expenses, err := q.expenses.ListByCustomer(ctx, customerID)
	if err != nil {
		return domain.Balance{}, err
	}
	return domain.ComputeBalance(customer, expenses), nil
}
