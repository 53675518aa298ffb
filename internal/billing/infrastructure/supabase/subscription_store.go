package supabase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	supa "github.com/nedpals/supabase-go"

	"github.com/troncosounlar-bit/legasync-flow/internal/billing/domain"
)

// SubscriptionStore implements domain.SubscriptionRepository over PostgREST.
// Supabase offers no client-side transactions; writes are single requests.
type SubscriptionStore struct {
	client *supa.Client
}

var _ domain.SubscriptionRepository = (*SubscriptionStore)(nil)

// NewSubscriptionStore creates a store using client.
func NewSubscriptionStore(client *supa.Client) *SubscriptionStore {
	return &SubscriptionStore{client: client}
}

func (s *SubscriptionStore) ListActive(ctx context.Context) ([]domain.Subscription, error) {
	var rows []subscriptionRow
	if err := s.client.DB.From(subscriptionsTable).
		Select(embedCustomer).
		Eq("is_active", "true").
		Execute(&rows); err != nil {
		return nil, fmt.Errorf("list active subscriptions: %w", err)
	}
	subs, err := toSubscriptions(rows)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].CreatedAt.Before(subs[j].CreatedAt)
	})
	return subs, nil
}

func (s *SubscriptionStore) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Subscription, error) {
	var rows []subscriptionRow
	if err := s.client.DB.From(subscriptionsTable).
		Select(embedCustomer).
		Eq("customer_id", customerID.String()).
		Execute(&rows); err != nil {
		return nil, fmt.Errorf("list subscriptions for customer %s: %w", customerID, err)
	}
	subs, err := toSubscriptions(rows)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].CreatedAt.After(subs[j].CreatedAt)
	})
	return subs, nil
}

func (s *SubscriptionStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.Subscription, error) {
	var rows []subscriptionRow
	if err := s.client.DB.From(subscriptionsTable).
		Select(embedCustomer).
		Eq("id", id.String()).
		Execute(&rows); err != nil {
		return nil, fmt.Errorf("find subscription %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrSubscriptionNotFound
	}
	sub, err := rows[0].toDomain()
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *SubscriptionStore) Create(ctx context.Context, sub *domain.Subscription) error {
	var created []subscriptionRow
	if err := s.client.DB.From(subscriptionsTable).
		Insert(subscriptionToRow(sub)).
		Execute(&created); err != nil {
		return fmt.Errorf("create subscription: %w", err)
	}
	return nil
}

func (s *SubscriptionStore) SetActive(ctx context.Context, id uuid.UUID, active bool, at time.Time) error {
	return s.update(id, map[string]any{
		"is_active":  active,
		"updated_at": at.UTC(),
	})
}

func (s *SubscriptionStore) Delete(ctx context.Context, id uuid.UUID) error {
	var deleted []subscriptionRow
	if err := s.client.DB.From(subscriptionsTable).
		Delete().
		Eq("id", id.String()).
		Execute(&deleted); err != nil {
		return fmt.Errorf("delete subscription %s: %w", id, err)
	}
	if len(deleted) == 0 {
		return domain.ErrSubscriptionNotFound
	}
	return nil
}

func (s *SubscriptionStore) MarkInvoicePending(ctx context.Context, id, invoiceID uuid.UUID, at time.Time) error {
	return s.update(id, map[string]any{
		"pending_invoice_id": invoiceID,
		"updated_at":         at.UTC(),
	})
}

func (s *SubscriptionStore) Reschedule(ctx context.Context, id uuid.UUID, next time.Time, at time.Time) error {
	return s.update(id, map[string]any{
		"next_billing_date":  next.Format(dateLayout),
		"pending_invoice_id": nil,
		"updated_at":         at.UTC(),
	})
}

func (s *SubscriptionStore) update(id uuid.UUID, patch map[string]any) error {
	var updated []subscriptionRow
	if err := s.client.DB.From(subscriptionsTable).
		Update(patch).
		Eq("id", id.String()).
		Execute(&updated); err != nil {
		return fmt.Errorf("update subscription %s: %w", id, err)
	}
	if len(updated) == 0 {
		return domain.ErrSubscriptionNotFound
	}
	return nil
}

func toSubscriptions(rows []subscriptionRow) ([]domain.Subscription, error) {
	subs := make([]domain.Subscription, 0, len(rows))
	for _, row := range rows {
		sub, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}
