package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SubscriptionRepository defines access for subscription persistence.
type SubscriptionRepository interface {
	// ListActive returns active subscriptions oldest first.
	ListActive(ctx context.Context) ([]Subscription, error)
	// ListByCustomer returns a customer's subscriptions newest first.
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]Subscription, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Subscription, error)
	Create(ctx context.Context, sub *Subscription) error
	SetActive(ctx context.Context, id uuid.UUID, active bool, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	// MarkInvoicePending records that invoiceID was written for the current
	// period and the date has not moved yet.
	MarkInvoicePending(ctx context.Context, id, invoiceID uuid.UUID, at time.Time) error
	// Reschedule sets the next billing date and clears the pending marker.
	Reschedule(ctx context.Context, id uuid.UUID, next time.Time, at time.Time) error
}

// InvoiceRepository defines access for invoice persistence.
type InvoiceRepository interface {
	// Create returns ErrDuplicateInvoice when the subscription already has
	// an invoice for the same billing period.
	Create(ctx context.Context, inv *Invoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	// List returns invoices newest first, optionally filtered by a
	// case-insensitive substring of the customer name.
	List(ctx context.Context, search string) ([]Invoice, error)
	Delete(ctx context.Context, id uuid.UUID) error
	MarkPaid(ctx context.Context, id uuid.UUID, at time.Time) error
}

// ViewCache holds the invoice and subscription lists screens read from.
// Reads load on first use; afterwards only Refresh reloads.
type ViewCache interface {
	Invoices(ctx context.Context) ([]Invoice, error)
	ActiveSubscriptions(ctx context.Context) ([]Subscription, error)
	Refresh(ctx context.Context) error
	Invalidate(ctx context.Context) error
}

// RunLock prevents two billing runs from overlapping.
type RunLock interface {
	// Acquire returns ErrRunInProgress when another run holds the lock.
	// The lock is kept until release even when the run outlives ttl.
	Acquire(ctx context.Context, ttl time.Duration) (release func(), err error)
}
