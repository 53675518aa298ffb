package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrFiscalRejected    = errors.New("fiscal authority rejected the invoice")
	ErrFiscalUnavailable = errors.New("fiscal authority unavailable")
)

// FiscalToken is the opaque authorisation code returned by the authority.
type FiscalToken string

// FiscalRequest carries what the authority needs to authorise an invoice.
type FiscalRequest struct {
	SubscriptionID uuid.UUID       `json:"subscription_id"`
	CustomerID     uuid.UUID       `json:"customer_id"`
	CustomerName   string          `json:"customer_name"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	BillingPeriod  string          `json:"billing_period"`
}

// FiscalValidator authorises invoices with the tax authority.
type FiscalValidator interface {
	Validate(ctx context.Context, req FiscalRequest) (FiscalToken, error)
}

// FiscalValidatorFunc adapts a function to FiscalValidator.
type FiscalValidatorFunc func(ctx context.Context, req FiscalRequest) (FiscalToken, error)

func (f FiscalValidatorFunc) Validate(ctx context.Context, req FiscalRequest) (FiscalToken, error) {
	return f(ctx, req)
}

// NewFiscalRequest describes sub's current period billed in currency.
func NewFiscalRequest(sub Subscription, currency string) FiscalRequest {
	return FiscalRequest{
		SubscriptionID: sub.ID,
		CustomerID:     sub.CustomerID,
		CustomerName:   sub.CustomerName,
		Amount:         sub.Amount,
		Currency:       currency,
		BillingPeriod:  sub.BillingPeriod(),
	}
}
