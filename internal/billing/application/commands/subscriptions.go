package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/troncosounlar-bit/legasync-flow/internal/billing/domain"
	sharedApplication "github.com/troncosounlar-bit/legasync-flow/internal/shared/application"
	sharedDomain "github.com/troncosounlar-bit/legasync-flow/internal/shared/domain"
	"github.com/troncosounlar-bit/legasync-flow/internal/shared/infrastructure/outbox"
)

// AddSubscriptionCommand contains the data needed to add a subscription.
type AddSubscriptionCommand struct {
	OperatorID      uuid.UUID
	CustomerID      uuid.UUID
	CustomerName    string
	ServiceName     string `validate:"required,max=200"`
	Description     string `validate:"max=500"`
	Amount          string `validate:"required,numeric"`
	Interval        string `validate:"omitempty,oneof=monthly yearly"`
	CurrencyCode    string `validate:"omitempty,len=3,alpha"`
	NextBillingDate time.Time
	BillingDay      int `validate:"gte=0,lte=31"`
}

// AddSubscriptionHandler handles the AddSubscriptionCommand.
type AddSubscriptionHandler struct {
	subscriptions domain.SubscriptionRepository
	outboxRepo    outbox.Repository
	uow           sharedApplication.UnitOfWork
	views         viewRefresher
}

// NewAddSubscriptionHandler creates a new AddSubscriptionHandler.
func NewAddSubscriptionHandler(subscriptions domain.SubscriptionRepository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork, views domain.ViewCache, logger *slog.Logger) *AddSubscriptionHandler {
	return &AddSubscriptionHandler{
		subscriptions: subscriptions,
		outboxRepo:    outboxRepo,
		uow:           uow,
		views:         newViewRefresher(views, logger),
	}
}

// Handle executes the AddSubscriptionCommand. New subscriptions are
// always active.
func (h *AddSubscriptionHandler) Handle(ctx context.Context, cmd AddSubscriptionCommand) (*domain.Subscription, error) {
	if err := sharedApplication.ValidateCommand(cmd); err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(cmd.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: amount: %v", sharedApplication.ErrInvalidCommand, err)
	}

	sub, err := domain.NewSubscription(domain.NewSubscriptionParams{
		CustomerID:      cmd.CustomerID,
		CustomerName:    cmd.CustomerName,
		ServiceName:     cmd.ServiceName,
		Description:     cmd.Description,
		Amount:          amount,
		Interval:        domain.Interval(cmd.Interval),
		CurrencyCode:    cmd.CurrencyCode,
		NextBillingDate: cmd.NextBillingDate,
		BillingDay:      cmd.BillingDay,
	}, time.Now())
	if err != nil {
		return nil, err
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.subscriptions.Create(txCtx, sub); err != nil {
			return err
		}
		return saveEvents(txCtx, h.outboxRepo, cmd.OperatorID, domain.NewSubscriptionCreated(sub))
	})
	if err != nil {
		return nil, err
	}

	h.views.refresh(ctx)
	return sub, nil
}

// ToggleSubscriptionCommand pauses or resumes a subscription.
type ToggleSubscriptionCommand struct {
	OperatorID     uuid.UUID
	SubscriptionID uuid.UUID
	Active         bool
}

// ToggleSubscriptionHandler handles the ToggleSubscriptionCommand.
type ToggleSubscriptionHandler struct {
	subscriptions domain.SubscriptionRepository
	outboxRepo    outbox.Repository
	uow           sharedApplication.UnitOfWork
	views         viewRefresher
}

// NewToggleSubscriptionHandler creates a new ToggleSubscriptionHandler.
func NewToggleSubscriptionHandler(subscriptions domain.SubscriptionRepository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork, views domain.ViewCache, logger *slog.Logger) *ToggleSubscriptionHandler {
	return &ToggleSubscriptionHandler{
		subscriptions: subscriptions,
		outboxRepo:    outboxRepo,
		uow:           uow,
		views:         newViewRefresher(views, logger),
	}
}

// Handle executes the ToggleSubscriptionCommand.
func (h *ToggleSubscriptionHandler) Handle(ctx context.Context, cmd ToggleSubscriptionCommand) error {
	now := time.Now().UTC()
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if _, err := h.subscriptions.FindByID(txCtx, cmd.SubscriptionID); err != nil {
			return err
		}
		if err := h.subscriptions.SetActive(txCtx, cmd.SubscriptionID, cmd.Active, now); err != nil {
			return err
		}
		return saveEvents(txCtx, h.outboxRepo, cmd.OperatorID, domain.NewSubscriptionToggled(cmd.SubscriptionID, cmd.Active, now))
	})
	if err != nil {
		return err
	}

	h.views.refresh(ctx)
	return nil
}

// DeleteSubscriptionHandler removes a subscription.
type DeleteSubscriptionHandler struct {
	subscriptions domain.SubscriptionRepository
	views         viewRefresher
}

// NewDeleteSubscriptionHandler creates a new DeleteSubscriptionHandler.
func NewDeleteSubscriptionHandler(subscriptions domain.SubscriptionRepository, views domain.ViewCache, logger *slog.Logger) *DeleteSubscriptionHandler {
	return &DeleteSubscriptionHandler{subscriptions: subscriptions, views: newViewRefresher(views, logger)}
}

// Handle deletes the subscription with id.
func (h *DeleteSubscriptionHandler) Handle(ctx context.Context, id uuid.UUID) error {
	if err := h.subscriptions.Delete(ctx, id); err != nil {
		return err
	}
	h.views.refresh(ctx)
	return nil
}

func saveEvents(ctx context.Context, repo outbox.Repository, operatorID uuid.UUID, events ...sharedDomain.DomainEvent) error {
	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(operatorID))
	msgs, err := outbox.NewMessages(events)
	if err != nil {
		return err
	}
	return repo.SaveBatch(ctx, msgs)
}
