package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrExpenseNotFound       = errors.New("expense not found")
	ErrExpenseNoCustomer     = errors.New("expense requires a customer")
	ErrExpenseNegativeAmount = errors.New("expense amount cannot be negative")
)

const (
	DefaultExpenseDescription = "Gasto sin descripción"
	DefaultExpenseCategory    = "General"
)

// Expense is a cost incurred on behalf of a customer.
type Expense struct {
	ID          uuid.UUID       `json:"id"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Vendor      string          `json:"vendor,omitempty"`
	Category    string          `json:"category"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewExpenseParams describes an expense to record.
type NewExpenseParams struct {
	CustomerID  uuid.UUID
	Description string
	Amount      decimal.Decimal
	Vendor      string
	Category    string
	Date        *time.Time
}

// NewExpense fills the defaults: a generic description, the vendor (or
// "General") as category and now as date.
func NewExpense(p NewExpenseParams, now time.Time) (*Expense, error) {
	if p.CustomerID == uuid.Nil {
		return nil, ErrExpenseNoCustomer
	}
	if p.Amount.IsNegative() {
		return nil, ErrExpenseNegativeAmount
	}

	description := strings.TrimSpace(p.Description)
	if description == "" {
		description = DefaultExpenseDescription
	}
	vendor := strings.TrimSpace(p.Vendor)
	category := strings.TrimSpace(p.Category)
	if category == "" {
		category = vendor
	}
	if category == "" {
		category = DefaultExpenseCategory
	}
	date := now.UTC()
	if p.Date != nil {
		date = p.Date.UTC()
	}

	return &Expense{
		ID:          uuid.New(),
		CustomerID:  p.CustomerID,
		Description: description,
		Amount:      p.Amount,
		Vendor:      vendor,
		Category:    category,
		Date:        date,
		CreatedAt:   now.UTC(),
	}, nil
}
