package domain

import (
	"context"

	"github.com/google/uuid"
)

// CustomerRepository defines persistence for customers.
type CustomerRepository interface {
	Save(ctx context.Context, c *Customer) error
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	// List returns customers by name, each with its expenses.
	List(ctx context.Context) ([]*Customer, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ExpenseRepository defines persistence for expenses.
type ExpenseRepository interface {
	Create(ctx context.Context, e *Expense) error
	// ListByCustomer returns the customer's expenses newest first.
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]Expense, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
