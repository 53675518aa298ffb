package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/troncosounlar-bit/legasync-flow/internal/billing/domain"
	"github.com/troncosounlar-bit/legasync-flow/internal/shared/infrastructure/database"
)

// SubscriptionRepository stores subscriptions on either SQL driver.
type SubscriptionRepository struct {
	conn database.Connection
}

var _ domain.SubscriptionRepository = (*SubscriptionRepository)(nil)

// NewSubscriptionRepository creates a new repository.
func NewSubscriptionRepository(conn database.Connection) *SubscriptionRepository {
	return &SubscriptionRepository{conn: conn}
}

const subscriptionSelect = `
	SELECT s.id, s.customer_id, COALESCE(c.name, ''), s.service_name, s.description, s.amount,
	       s.interval, s.currency_code, s.next_billing_date, s.billing_day, s.is_active,
	       s.pending_invoice_id, s.created_at, s.updated_at
	FROM subscriptions s
	LEFT JOIN customers c ON c.id = s.customer_id`

func (r *SubscriptionRepository) ListActive(ctx context.Context) ([]domain.Subscription, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, subscriptionSelect+`
		WHERE s.is_active = ?
		ORDER BY s.created_at, s.id`, true)
	if err != nil {
		return nil, fmt.Errorf("list active subscriptions: %w", err)
	}
	return database.CollectRows(rows, scanSubscription)
}

func (r *SubscriptionRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Subscription, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, subscriptionSelect+`
		WHERE s.customer_id = ?
		ORDER BY s.created_at DESC, s.id`, customerID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions for customer %s: %w", customerID, err)
	}
	return database.CollectRows(rows, scanSubscription)
}

func (r *SubscriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Subscription, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	sub, err := scanSubscription(exec.QueryRow(ctx, subscriptionSelect+` WHERE s.id = ?`, id))
	if database.IsNoRows(err) {
		return nil, domain.ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find subscription %s: %w", id, err)
	}
	return &sub, nil
}

func (r *SubscriptionRepository) Create(ctx context.Context, sub *domain.Subscription) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, `
		INSERT INTO subscriptions (
			id, customer_id, service_name, description, amount, interval, currency_code,
			next_billing_date, billing_day, is_active, pending_invoice_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID,
		sub.CustomerID,
		sub.ServiceName,
		sub.Description,
		sub.Amount,
		string(sub.Interval),
		sub.CurrencyCode,
		database.FormatDate(sub.NextBillingDate),
		sub.BillingDay,
		sub.IsActive,
		nullUUID(sub.PendingInvoiceID),
		database.FormatTimestamp(sub.CreatedAt),
		database.FormatTimestamp(sub.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create subscription: %w", err)
	}
	return nil
}

func (r *SubscriptionRepository) SetActive(ctx context.Context, id uuid.UUID, active bool, at time.Time) error {
	return r.update(ctx, id, `UPDATE subscriptions SET is_active = ?, updated_at = ? WHERE id = ?`,
		active, database.FormatTimestamp(at), id)
}

func (r *SubscriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.update(ctx, id, `DELETE FROM subscriptions WHERE id = ?`, id)
}

func (r *SubscriptionRepository) MarkInvoicePending(ctx context.Context, id, invoiceID uuid.UUID, at time.Time) error {
	return r.update(ctx, id, `UPDATE subscriptions SET pending_invoice_id = ?, updated_at = ? WHERE id = ?`,
		invoiceID, database.FormatTimestamp(at), id)
}

func (r *SubscriptionRepository) Reschedule(ctx context.Context, id uuid.UUID, next time.Time, at time.Time) error {
	return r.update(ctx, id, `
		UPDATE subscriptions
		SET next_billing_date = ?, pending_invoice_id = NULL, updated_at = ?
		WHERE id = ?`,
		database.FormatDate(next), database.FormatTimestamp(at), id)
}

func (r *SubscriptionRepository) update(ctx context.Context, id uuid.UUID, query string, args ...any) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	res, err := exec.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update subscription %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrSubscriptionNotFound
	}
	return nil
}

func scanSubscription(row database.Row) (domain.Subscription, error) {
	var (
		sub       domain.Subscription
		interval  string
		next      database.Time
		pending   uuid.NullUUID
		createdAt database.Time
		updatedAt database.Time
	)
	err := row.Scan(
		&sub.ID,
		&sub.CustomerID,
		&sub.CustomerName,
		&sub.ServiceName,
		&sub.Description,
		&sub.Amount,
		&interval,
		&sub.CurrencyCode,
		&next,
		&sub.BillingDay,
		&sub.IsActive,
		&pending,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return domain.Subscription{}, err
	}

	sub.Interval = domain.Interval(interval)
	sub.NextBillingDate = domain.DateOf(next.Time)
	sub.CreatedAt = createdAt.Time
	sub.UpdatedAt = updatedAt.Time
	if pending.Valid {
		id := pending.UUID
		sub.PendingInvoiceID = &id
	}
	return sub, nil
}

func nullUUID(id *uuid.UUID) any {
	if id == nil || *id == uuid.Nil {
		return nil
	}
	return *id
}
