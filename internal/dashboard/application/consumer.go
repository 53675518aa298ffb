package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	billing "github.com/troncosounlar-bit/legasync-flow/internal/billing/domain"
	customers "github.com/troncosounlar-bit/legasync-flow/internal/customers/domain"
	"github.com/troncosounlar-bit/legasync-flow/internal/dashboard/domain"
	"github.com/troncosounlar-bit/legasync-flow/internal/shared/infrastructure/eventbus"
)

// FeedConsumer turns billing and customer events into feed entries.
type FeedConsumer struct {
	log *ActivityLog
}

var _ eventbus.EventConsumer = (*FeedConsumer)(nil)

// NewFeedConsumer creates the consumer.
func NewFeedConsumer(log *ActivityLog) *FeedConsumer {
	return &FeedConsumer{log: log}
}

func (c *FeedConsumer) EventTypes() []string {
	return []string{
		billing.RoutingRunCompleted,
		billing.RoutingRunFailed,
		customers.RoutingCustomerCreated,
	}
}

func (c *FeedConsumer) Handle(ctx context.Context, event *eventbus.Envelope) error {
	cmd, err := feedEntryFor(event)
	if err != nil {
		return err
	}
	if event.Metadata.UserID != uuid.Nil {
		userID := event.Metadata.UserID
		cmd.UserID = &userID
	}
	_, err = c.log.AddLog(ctx, cmd)
	return err
}

func feedEntryFor(event *eventbus.Envelope) (AddLogCommand, error) {
	switch event.RoutingKey {
	case billing.RoutingRunCompleted:
		var data billing.BillingRunCompleted
		if err := event.DecodeData(&data); err != nil {
			return AddLogCommand{}, err
		}
		typ := domain.LogSuccess
		if data.Failures > 0 {
			typ = domain.LogWarning
		}
		return AddLogCommand{
			Type:    typ,
			Icon:    "receipt_long",
			Message: fmt.Sprintf("Facturación automática: %d facturas generadas, %d errores", data.Invoices, data.Failures),
		}, nil

	case billing.RoutingRunFailed:
		var data billing.BillingRunFailed
		if err := event.DecodeData(&data); err != nil {
			return AddLogCommand{}, err
		}
		return AddLogCommand{
			Type:    domain.LogWarning,
			Icon:    "error",
			Message: "Facturación automática fallida: " + data.Error,
		}, nil

	case customers.RoutingCustomerCreated:
		var data customers.CustomerCreated
		if err := event.DecodeData(&data); err != nil {
			return AddLogCommand{}, err
		}
		return AddLogCommand{
			Type:    domain.LogInfo,
			Icon:    "person_add",
			Message: "Nuevo cliente registrado: " + data.Name,
		}, nil

	default:
		return AddLogCommand{}, fmt.Errorf("unexpected routing key %s", event.RoutingKey)
	}
}
