package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	sharedDomain "github.com/troncosounlar-bit/legasync-flow/internal/shared/domain"
)

var (
	ErrSubscriptionNotFound   = errors.New("subscription not found")
	ErrInvalidInterval        = errors.New("interval must be monthly or yearly")
	ErrNoActiveSubscriptions  = errors.New("no hay suscripciones activas para procesar")
	ErrSubscriptionNoCustomer = errors.New("subscription requires a customer")
	ErrSubscriptionNoService  = errors.New("subscription requires a service name")
	ErrNegativeAmount         = errors.New("amount cannot be negative")
	ErrInvalidBillingDay      = errors.New("billing day must be between 0 and 31")
)

// Interval is the billing cadence declared on a subscription.
type Interval string

const (
	IntervalMonthly Interval = "monthly"
	IntervalYearly  Interval = "yearly"
)

// IsValid checks if the interval is known.
func (i Interval) IsValid() bool {
	return i == IntervalMonthly || i == IntervalYearly
}

// Subscription is a recurring charge for a customer. PendingInvoiceID is set
// between invoice creation and rescheduling of a billing run; while it is
// set the next run only reschedules.
type Subscription struct {
	ID               uuid.UUID       `json:"id"`
	CustomerID       uuid.UUID       `json:"customer_id"`
	CustomerName     string          `json:"customer_name,omitempty"`
	ServiceName      string          `json:"service_name"`
	Description      string          `json:"description,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	Interval         Interval        `json:"interval"`
	CurrencyCode     string          `json:"currency_code"`
	NextBillingDate  time.Time       `json:"next_billing_date"`
	BillingDay       int             `json:"billing_day,omitempty"`
	IsActive         bool            `json:"is_active"`
	PendingInvoiceID *uuid.UUID      `json:"pending_invoice_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// NewSubscriptionParams describes a subscription to add.
type NewSubscriptionParams struct {
	CustomerID      uuid.UUID
	CustomerName    string
	ServiceName     string
	Description     string
	Amount          decimal.Decimal
	Interval        Interval
	CurrencyCode    string
	NextBillingDate time.Time
	BillingDay      int
}

// NewSubscription creates an active subscription. Interval defaults to
// monthly, currency to USD and the billing day to the first billing date's day.
func NewSubscription(p NewSubscriptionParams, now time.Time) (*Subscription, error) {
	if p.CustomerID == uuid.Nil {
		return nil, ErrSubscriptionNoCustomer
	}
	serviceName := strings.TrimSpace(p.ServiceName)
	if serviceName == "" {
		return nil, ErrSubscriptionNoService
	}
	if p.Amount.IsNegative() {
		return nil, ErrNegativeAmount
	}
	interval := p.Interval
	if interval == "" {
		interval = IntervalMonthly
	}
	if !interval.IsValid() {
		return nil, ErrInvalidInterval
	}
	if p.BillingDay < 0 || p.BillingDay > 31 {
		return nil, ErrInvalidBillingDay
	}
	currency := "USD"
	if p.CurrencyCode != "" {
		c, err := sharedDomain.NormalizeCurrency(p.CurrencyCode)
		if err != nil {
			return nil, err
		}
		currency = c
	}
	next := p.NextBillingDate
	if next.IsZero() {
		next = now
	}
	next = DateOf(next)
	billingDay := p.BillingDay
	if billingDay == 0 {
		billingDay = next.Day()
	}

	now = now.UTC()
	return &Subscription{
		ID:              uuid.New(),
		CustomerID:      p.CustomerID,
		CustomerName:    p.CustomerName,
		ServiceName:     serviceName,
		Description:     strings.TrimSpace(p.Description),
		Amount:          p.Amount,
		Interval:        interval,
		CurrencyCode:    currency,
		NextBillingDate: next,
		BillingDay:      billingDay,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// IsDue reports whether an active subscription should be billed at now.
// Only the calendar date matters, both sides read in UTC.
func (s Subscription) IsDue(now time.Time) bool {
	return s.IsActive && !DateOf(s.NextBillingDate).After(DateOf(now))
}

// HasPendingInvoice reports whether a previous run created the invoice
// but did not finish rescheduling.
func (s Subscription) HasPendingInvoice() bool {
	return s.PendingInvoiceID != nil && *s.PendingInvoiceID != uuid.Nil
}

// Label is the text legacy automation puts on invoices.
func (s Subscription) Label() string {
	if name := strings.TrimSpace(s.ServiceName); name != "" {
		return name
	}
	return s.Description
}

// BillingPeriod identifies the due date being billed, YYYY-MM-DD.
func (s Subscription) BillingPeriod() string {
	return DateOf(s.NextBillingDate).Format("2006-01-02")
}
