package domain

import (
	"time"

	"github.com/google/uuid"
	sharedDomain "github.com/troncosounlar-bit/legasync-flow/internal/shared/domain"
)

const (
	subscriptionAggregate = "Subscription"
	invoiceAggregate      = "Invoice"
	runAggregate          = "BillingRun"
)

// Routing keys published by the billing context.
const (
	RoutingInvoiceGenerated        = "billing.invoice.generated"
	RoutingSubscriptionRescheduled = "billing.subscription.rescheduled"
	RoutingRunCompleted            = "billing.run.completed"
	RoutingRunFailed               = "billing.run.failed"
	RoutingSubscriptionCreated     = "billing.subscription.created"
	RoutingSubscriptionToggled     = "billing.subscription.toggled"
)

// InvoiceGenerated is emitted when the billing run writes an invoice.
type InvoiceGenerated struct {
	sharedDomain.BaseEvent
	RunID          uuid.UUID `json:"run_id"`
	InvoiceID      uuid.UUID `json:"invoice_id"`
	SubscriptionID uuid.UUID `json:"subscription_id"`
	CustomerID     uuid.UUID `json:"customer_id"`
	CustomerName   string    `json:"customer_name"`
	Amount         string    `json:"amount"`
	Currency       string    `json:"currency"`
	BillingPeriod  string    `json:"billing_period"`
	FiscalID       string    `json:"fiscal_id"`
}

// NewInvoiceGenerated creates an InvoiceGenerated event.
func NewInvoiceGenerated(runID uuid.UUID, inv *Invoice, sub Subscription, at time.Time) *InvoiceGenerated {
	return &InvoiceGenerated{
		BaseEvent:      sharedDomain.NewBaseEventAt(inv.ID, invoiceAggregate, RoutingInvoiceGenerated, at),
		RunID:          runID,
		InvoiceID:      inv.ID,
		SubscriptionID: sub.ID,
		CustomerID:     sub.CustomerID,
		CustomerName:   inv.CustomerName,
		Amount:         inv.BaseAmount.StringFixed(2),
		Currency:       inv.CurrencyCode,
		BillingPeriod:  inv.BillingPeriod,
		FiscalID:       inv.FiscalID,
	}
}

// SubscriptionRescheduled is emitted when a subscription moves to its
// next billing date.
type SubscriptionRescheduled struct {
	sharedDomain.BaseEvent
	RunID           uuid.UUID `json:"run_id"`
	SubscriptionID  uuid.UUID `json:"subscription_id"`
	InvoiceID       uuid.UUID `json:"invoice_id"`
	PreviousDate    string    `json:"previous_date"`
	NextBillingDate string    `json:"next_billing_date"`
	Resumed         bool      `json:"resumed"`
}

// NewSubscriptionRescheduled creates a SubscriptionRescheduled event.
func NewSubscriptionRescheduled(runID uuid.UUID, sub Subscription, invoiceID uuid.UUID, next time.Time, resumed bool, at time.Time) *SubscriptionRescheduled {
	return &SubscriptionRescheduled{
		BaseEvent:       sharedDomain.NewBaseEventAt(sub.ID, subscriptionAggregate, RoutingSubscriptionRescheduled, at),
		RunID:           runID,
		SubscriptionID:  sub.ID,
		InvoiceID:       invoiceID,
		PreviousDate:    sub.BillingPeriod(),
		NextBillingDate: DateOf(next).Format("2006-01-02"),
		Resumed:         resumed,
	}
}

// BillingRunCompleted is emitted once per finished run.
type BillingRunCompleted struct {
	sharedDomain.BaseEvent
	RunID      uuid.UUID `json:"run_id"`
	Status     RunStatus `json:"status"`
	Considered int       `json:"considered"`
	Due        int       `json:"due"`
	Invoices   int       `json:"invoices"`
	Resumed    int       `json:"resumed"`
	Failures   int       `json:"failures"`
	DurationMS int64     `json:"duration_ms"`
}

// NewBillingRunCompleted creates a BillingRunCompleted event.
func NewBillingRunCompleted(r RunResult) *BillingRunCompleted {
	return &BillingRunCompleted{
		BaseEvent:  sharedDomain.NewBaseEventAt(r.RunID, runAggregate, RoutingRunCompleted, r.FinishedAt),
		RunID:      r.RunID,
		Status:     r.Status(),
		Considered: r.Considered,
		Due:        r.Due,
		Invoices:   r.InvoiceCount(),
		Resumed:    r.Resumed,
		Failures:   len(r.Failures),
		DurationMS: r.Duration().Milliseconds(),
	}
}

// BillingRunFailed is emitted when a run aborts before processing.
type BillingRunFailed struct {
	sharedDomain.BaseEvent
	RunID uuid.UUID `json:"run_id"`
	Error string    `json:"error"`
}

// NewBillingRunFailed creates a BillingRunFailed event.
func NewBillingRunFailed(r RunResult) *BillingRunFailed {
	msg := ""
	if r.Err != nil {
		msg = r.Err.Error()
	}
	return &BillingRunFailed{
		BaseEvent: sharedDomain.NewBaseEventAt(r.RunID, runAggregate, RoutingRunFailed, r.FinishedAt),
		RunID:     r.RunID,
		Error:     msg,
	}
}

// SubscriptionCreated is emitted when a subscription is added.
type SubscriptionCreated struct {
	sharedDomain.BaseEvent
	SubscriptionID  uuid.UUID `json:"subscription_id"`
	CustomerID      uuid.UUID `json:"customer_id"`
	ServiceName     string    `json:"service_name"`
	Amount          string    `json:"amount"`
	Currency        string    `json:"currency"`
	Interval        Interval  `json:"interval"`
	NextBillingDate string    `json:"next_billing_date"`
}

// NewSubscriptionCreated creates a SubscriptionCreated event.
func NewSubscriptionCreated(sub *Subscription) *SubscriptionCreated {
	return &SubscriptionCreated{
		BaseEvent:       sharedDomain.NewBaseEventAt(sub.ID, subscriptionAggregate, RoutingSubscriptionCreated, sub.CreatedAt),
		SubscriptionID:  sub.ID,
		CustomerID:      sub.CustomerID,
		ServiceName:     sub.ServiceName,
		Amount:          sub.Amount.StringFixed(2),
		Currency:        sub.CurrencyCode,
		Interval:        sub.Interval,
		NextBillingDate: sub.BillingPeriod(),
	}
}

// SubscriptionToggled is emitted when a subscription is paused or resumed.
type SubscriptionToggled struct {
	sharedDomain.BaseEvent
	SubscriptionID uuid.UUID `json:"subscription_id"`
	Active         bool      `json:"active"`
}

// NewSubscriptionToggled creates a SubscriptionToggled event.
func NewSubscriptionToggled(id uuid.UUID, active bool, at time.Time) *SubscriptionToggled {
	return &SubscriptionToggled{
		BaseEvent:      sharedDomain.NewBaseEventAt(id, subscriptionAggregate, RoutingSubscriptionToggled, at),
		SubscriptionID: id,
		Active:         active,
	}
}
