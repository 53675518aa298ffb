package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	sharedDomain "github.com/troncosounlar-bit/legasync-flow/internal/shared/domain"
)

var (
	ErrInvoiceNotFound    = errors.New("invoice not found")
	ErrDuplicateInvoice   = errors.New("invoice already exists for this billing period")
	ErrInvoiceAlreadyPaid = errors.New("invoice already paid")
)

// FallbackCustomerName is used when a subscription carries no customer name.
const FallbackCustomerName = "Cliente LegaSync"

// LegacyAutomationPrefix prefixes descriptions written by the bulk automation.
const LegacyAutomationPrefix = "Mensualidad Automática: "

// InvoiceStatus is the payment state of an invoice.
type InvoiceStatus string

const (
	InvoicePending InvoiceStatus = "pending"
	InvoicePaid    InvoiceStatus = "paid"
)

// FiscalStatus is the tax-authority state of an invoice.
type FiscalStatus string

const (
	FiscalPending   FiscalStatus = "pending"
	FiscalValidated FiscalStatus = "validated"
	FiscalRejected  FiscalStatus = "rejected"
)

// Invoice is a billing document. BillingPeriod is only set on invoices
// produced by the billing run and is unique per subscription.
type Invoice struct {
	ID             uuid.UUID       `json:"id"`
	CustomerID     *uuid.UUID      `json:"customer_id,omitempty"`
	CustomerName   string          `json:"customer_name"`
	SubscriptionID *uuid.UUID      `json:"subscription_id,omitempty"`
	BillingPeriod  string          `json:"billing_period,omitempty"`
	Description    string          `json:"description,omitempty"`
	BaseAmount     decimal.Decimal `json:"base_amount"`
	CurrencyCode   string          `json:"currency_code"`
	Status         InvoiceStatus   `json:"status"`
	FiscalStatus   FiscalStatus    `json:"fiscal_status"`
	FiscalID       string          `json:"fiscal_id,omitempty"`
	ValidationDate *time.Time      `json:"validation_date,omitempty"`
	IsAutomated    bool            `json:"is_automated"`
	CreatedAt      time.Time       `json:"created_at"`
}

// NewAutomatedInvoice builds the invoice the billing run writes for a due
// subscription after fiscal validation.
func NewAutomatedInvoice(sub Subscription, token FiscalToken, currency string, now time.Time) *Invoice {
	now = now.UTC()
	customerID := sub.CustomerID
	subscriptionID := sub.ID

	name := sub.CustomerName
	if name == "" {
		name = FallbackCustomerName
	}

	return &Invoice{
		ID:             uuid.New(),
		CustomerID:     &customerID,
		CustomerName:   name,
		SubscriptionID: &subscriptionID,
		BillingPeriod:  sub.BillingPeriod(),
		Description:    sub.Label(),
		BaseAmount:     sub.Amount,
		CurrencyCode:   currency,
		Status:         InvoicePending,
		FiscalStatus:   FiscalValidated,
		FiscalID:       string(token),
		ValidationDate: &now,
		IsAutomated:    true,
		CreatedAt:      now,
	}
}

// NewLegacyAutomationInvoice builds the invoice of the bulk monthly
// automation: subscription currency, no fiscal validation, no period.
func NewLegacyAutomationInvoice(sub Subscription, now time.Time) *Invoice {
	customerID := sub.CustomerID
	return &Invoice{
		ID:           uuid.New(),
		CustomerID:   &customerID,
		CustomerName: sub.CustomerName,
		Description:  LegacyAutomationPrefix + sub.Label(),
		BaseAmount:   sub.Amount,
		CurrencyCode: sub.CurrencyCode,
		Status:       InvoicePending,
		FiscalStatus: FiscalPending,
		IsAutomated:  true,
		CreatedAt:    now.UTC(),
	}
}

// IsPaid reports whether the invoice has been paid.
func (i Invoice) IsPaid() bool { return i.Status == InvoicePaid }

// Age is how long the invoice has existed at now.
func (i Invoice) Age(now time.Time) time.Duration { return now.Sub(i.CreatedAt) }

// NewManualInvoice creates an operator-entered invoice.
func NewManualInvoice(customerID *uuid.UUID, customerName, description string, amount decimal.Decimal, currency string, now time.Time) (*Invoice, error) {
	if amount.IsNegative() {
		return nil, ErrNegativeAmount
	}
	if currency == "" {
		currency = "USD"
	}
	code, err := sharedDomain.NormalizeCurrency(currency)
	if err != nil {
		return nil, err
	}
	if customerName == "" {
		customerName = FallbackCustomerName
	}
	return &Invoice{
		ID:           uuid.New(),
		CustomerID:   customerID,
		CustomerName: customerName,
		Description:  description,
		BaseAmount:   amount,
		CurrencyCode: code,
		Status:       InvoicePending,
		FiscalStatus: FiscalPending,
		CreatedAt:    now.UTC(),
	}, nil
}

// MarkPaid moves a pending invoice to paid.
func (i *Invoice) MarkPaid() error {
	if i.IsPaid() {
		return ErrInvoiceAlreadyPaid
	}
	i.Status = InvoicePaid
	return nil
}
