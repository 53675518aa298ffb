// Package supabase stores subscriptions and invoices through the Supabase
// PostgREST API, the backend the hosted deployment writes to.
package supabase

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/troncosounlar-bit/legasync-flow/internal/billing/domain"
)

const (
	subscriptionsTable = "subscriptions"
	invoicesTable      = "invoices"

	// embedCustomer pulls the customer name through the customer_id foreign key.
	embedCustomer = "*,customers(name)"

	dateLayout = "2006-01-02"
)

type customerEmbed struct {
	Name string `json:"name"`
}

type subscriptionRow struct {
	ID               uuid.UUID       `json:"id"`
	CustomerID       uuid.UUID       `json:"customer_id"`
	ServiceName      string          `json:"service_name"`
	Description      string          `json:"description"`
	Amount           decimal.Decimal `json:"amount"`
	Interval         string          `json:"interval"`
	CurrencyCode     string          `json:"currency_code"`
	NextBillingDate  string          `json:"next_billing_date"`
	BillingDay       int             `json:"billing_day"`
	IsActive         bool            `json:"is_active"`
	PendingInvoiceID *uuid.UUID      `json:"pending_invoice_id"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Customer         *customerEmbed  `json:"customers,omitempty"`
}

func subscriptionToRow(s *domain.Subscription) subscriptionRow {
	return subscriptionRow{
		ID:               s.ID,
		CustomerID:       s.CustomerID,
		ServiceName:      s.ServiceName,
		Description:      s.Description,
		Amount:           s.Amount,
		Interval:         string(s.Interval),
		CurrencyCode:     s.CurrencyCode,
		NextBillingDate:  s.NextBillingDate.Format(dateLayout),
		BillingDay:       s.BillingDay,
		IsActive:         s.IsActive,
		PendingInvoiceID: s.PendingInvoiceID,
		CreatedAt:        s.CreatedAt.UTC(),
		UpdatedAt:        s.UpdatedAt.UTC(),
	}
}

func (r subscriptionRow) toDomain() (domain.Subscription, error) {
	next, err := parseDate(r.NextBillingDate)
	if err != nil {
		return domain.Subscription{}, fmt.Errorf("subscription %s next_billing_date: %w", r.ID, err)
	}
	sub := domain.Subscription{
		ID:               r.ID,
		CustomerID:       r.CustomerID,
		ServiceName:      r.ServiceName,
		Description:      r.Description,
		Amount:           r.Amount,
		Interval:         domain.Interval(r.Interval),
		CurrencyCode:     r.CurrencyCode,
		NextBillingDate:  next,
		BillingDay:       r.BillingDay,
		IsActive:         r.IsActive,
		PendingInvoiceID: r.PendingInvoiceID,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	if r.Customer != nil {
		sub.CustomerName = r.Customer.Name
	}
	return sub, nil
}

// parseDate accepts plain dates and full timestamps; the hosted schema
// stored next_billing_date as timestamptz before it became a date.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return domain.DateOf(t), nil
}

type invoiceRow struct {
	ID             uuid.UUID       `json:"id"`
	CustomerID     *uuid.UUID      `json:"customer_id"`
	CustomerName   string          `json:"customer_name"`
	SubscriptionID *uuid.UUID      `json:"subscription_id"`
	BillingPeriod  *string         `json:"billing_period"`
	Description    string          `json:"description"`
	BaseAmount     decimal.Decimal `json:"base_amount"`
	CurrencyCode   string          `json:"currency_code"`
	Status         string          `json:"status"`
	FiscalStatus   string          `json:"fiscal_status"`
	FiscalID       string          `json:"fiscal_id"`
	ValidationDate *time.Time      `json:"validation_date"`
	IsAutomated    bool            `json:"is_automated"`
	CreatedAt      time.Time       `json:"created_at"`
}

func invoiceToRow(inv *domain.Invoice) invoiceRow {
	row := invoiceRow{
		ID:             inv.ID,
		CustomerID:     inv.CustomerID,
		CustomerName:   inv.CustomerName,
		SubscriptionID: inv.SubscriptionID,
		Description:    inv.Description,
		BaseAmount:     inv.BaseAmount,
		CurrencyCode:   inv.CurrencyCode,
		Status:         string(inv.Status),
		FiscalStatus:   string(inv.FiscalStatus),
		FiscalID:       inv.FiscalID,
		ValidationDate: inv.ValidationDate,
		IsAutomated:    inv.IsAutomated,
		CreatedAt:      inv.CreatedAt.UTC(),
	}
	if inv.BillingPeriod != "" {
		period := inv.BillingPeriod
		row.BillingPeriod = &period
	}
	return row
}

func (r invoiceRow) toDomain() domain.Invoice {
	inv := domain.Invoice{
		ID:             r.ID,
		CustomerID:     r.CustomerID,
		CustomerName:   r.CustomerName,
		SubscriptionID: r.SubscriptionID,
		Description:    r.Description,
		BaseAmount:     r.BaseAmount,
		CurrencyCode:   r.CurrencyCode,
		Status:         domain.InvoiceStatus(r.Status),
		FiscalStatus:   domain.FiscalStatus(r.FiscalStatus),
		FiscalID:       r.FiscalID,
		ValidationDate: r.ValidationDate,
		IsAutomated:    r.IsAutomated,
		CreatedAt:      r.CreatedAt,
	}
	if r.BillingPeriod != nil {
		inv.BillingPeriod = *r.BillingPeriod
	}
	if inv.Status == "" {
		inv.Status = domain.InvoicePending
	}
	return inv
}

// isUniqueViolation recognises PostgREST's answer to a unique index hit.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") || strings.Contains(msg, "duplicate key")
}
