package queries

import (
	"context"

	"github.com/google/uuid"

	"github.com/troncosounlar-bit/legasync-flow/internal/billing/domain"
)

// SubscriptionsHandler answers subscription list queries.
type SubscriptionsHandler struct {
	subscriptions domain.SubscriptionRepository
	views         domain.ViewCache
}

// NewSubscriptionsHandler creates a new SubscriptionsHandler.
func NewSubscriptionsHandler(subscriptions domain.SubscriptionRepository, views domain.ViewCache) *SubscriptionsHandler {
	return &SubscriptionsHandler{subscriptions: subscriptions, views: views}
}

// Active returns active subscriptions in listing order.
func (h *SubscriptionsHandler) Active(ctx context.Context) ([]domain.Subscription, error) {
	if h.views != nil {
		return h.views.ActiveSubscriptions(ctx)
	}
	return h.subscriptions.ListActive(ctx)
}

// ByCustomer returns a customer's subscriptions newest first.
func (h *SubscriptionsHandler) ByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Subscription, error) {
	return h.subscriptions.ListByCustomer(ctx, customerID)
}
