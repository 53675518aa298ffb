package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/troncosounlar-bit/legasync-flow/internal/billing/domain"
	sharedApplication "github.com/troncosounlar-bit/legasync-flow/internal/shared/application"
)

// RunMonthlyAutomationHandler writes one pending invoice per active
// subscription, regardless of due date, in the subscription's currency.
// It predates the billing run and neither validates nor reschedules.
type RunMonthlyAutomationHandler struct {
	subscriptions domain.SubscriptionRepository
	invoices      domain.InvoiceRepository
	uow           sharedApplication.UnitOfWork
	views         viewRefresher
}

// NewRunMonthlyAutomationHandler creates a new RunMonthlyAutomationHandler.
func NewRunMonthlyAutomationHandler(subscriptions domain.SubscriptionRepository, invoices domain.InvoiceRepository, uow sharedApplication.UnitOfWork, views domain.ViewCache, logger *slog.Logger) *RunMonthlyAutomationHandler {
	return &RunMonthlyAutomationHandler{
		subscriptions: subscriptions,
		invoices:      invoices,
		uow:           uow,
		views:         newViewRefresher(views, logger),
	}
}

// Handle returns the number of invoices created.
func (h *RunMonthlyAutomationHandler) Handle(ctx context.Context) (int, error) {
	subs, err := h.subscriptions.ListActive(ctx)
	if err != nil {
		return 0, err
	}
	if len(subs) == 0 {
		return 0, domain.ErrNoActiveSubscriptions
	}

	now := time.Now()
	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		for _, sub := range subs {
			if err := h.invoices.Create(txCtx, domain.NewLegacyAutomationInvoice(sub, now)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	h.views.refresh(ctx)
	return len(subs), nil
}
