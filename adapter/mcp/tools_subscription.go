package mcp

import (
	"context"
	"time"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/troncosounlar-bit/legasync-flow/adapter/cli"
	"github.com/troncosounlar-bit/legasync-flow/internal/billing/application/commands"
	"github.com/troncosounlar-bit/legasync-flow/internal/billing/domain"
)

type subscriptionAddInput struct {
	CustomerID      string `json:"customer_id" jsonschema:"required"`
	ServiceName     string `json:"service_name" jsonschema:"required"`
	Amount          string `json:"amount" jsonschema:"required"`
	Description     string `json:"description,omitempty"`
	Interval        string `json:"interval,omitempty"`
	Currency        string `json:"currency,omitempty"`
	NextBillingDate string `json:"next_billing_date,omitempty"`
	BillingDay      int    `json:"billing_day,omitempty"`
}

type subscriptionListInput struct {
	CustomerID string `json:"customer_id,omitempty"`
}

type subscriptionToggleInput struct {
	ID     string `json:"id" jsonschema:"required"`
	Active bool   `json:"active"`
}

type idInput struct {
	ID string `json:"id" jsonschema:"required"`
}

func registerSubscriptionTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("subscription.add").
		Description("Add an active recurring subscription for a customer").
		Handler(subscriptionAddTool(app))

	srv.Tool("subscription.list").
		Description("List active subscriptions, or every subscription of one customer").
		Handler(func(ctx context.Context, input subscriptionListInput) ([]domain.Subscription, error) {
			if app.Subscriptions == nil {
				return nil, errNotInitialized
			}
			if input.CustomerID == "" {
				return app.Subscriptions.Active(ctx)
			}
			id, err := parseUUID(input.CustomerID)
			if err != nil {
				return nil, err
			}
			return app.Subscriptions.ByCustomer(ctx, id)
		})

	srv.Tool("subscription.toggle").
		Description("Pause or resume a subscription").
		Handler(func(ctx context.Context, input subscriptionToggleInput) (map[string]any, error) {
			if app.ToggleSubscription == nil {
				return nil, errNotInitialized
			}
			id, err := parseUUID(input.ID)
			if err != nil {
				return nil, err
			}
			err = app.ToggleSubscription.Handle(ctx, commands.ToggleSubscriptionCommand{
				OperatorID:     app.OperatorID,
				SubscriptionID: id,
				Active:         input.Active,
			})
			if err != nil {
				return nil, err
			}
			return map[string]any{"id": id.String(), "active": input.Active}, nil
		})

	srv.Tool("subscription.delete").
		Description("Delete a subscription").
		Handler(func(ctx context.Context, input idInput) (map[string]string, error) {
			if app.DeleteSubscription == nil {
				return nil, errNotInitialized
			}
			id, err := parseUUID(input.ID)
			if err != nil {
				return nil, err
			}
			if err := app.DeleteSubscription.Handle(ctx, id); err != nil {
				return nil, err
			}
			return map[string]string{"deleted": id.String()}, nil
		})

	return nil
}

func subscriptionAddTool(app *cli.App) func(context.Context, subscriptionAddInput) (*domain.Subscription, error) {
	return func(ctx context.Context, input subscriptionAddInput) (*domain.Subscription, error) {
		if app == nil || app.AddSubscription == nil {
			return nil, errNotInitialized
		}
		customerID, err := parseUUID(input.CustomerID)
		if err != nil {
			return nil, err
		}
		customer, err := app.CustomerQueries.Get(ctx, customerID)
		if err != nil {
			return nil, err
		}
		next, err := parseDate(input.NextBillingDate)
		if err != nil {
			return nil, err
		}
		nextDate := time.Now().UTC()
		if next != nil {
			nextDate = *next
		}

		return app.AddSubscription.Handle(ctx, commands.AddSubscriptionCommand{
			OperatorID:      app.OperatorID,
			CustomerID:      customerID,
			CustomerName:    customer.Name(),
			ServiceName:     input.ServiceName,
			Description:     input.Description,
			Amount:          input.Amount,
			Interval:        input.Interval,
			CurrencyCode:    input.Currency,
			NextBillingDate: nextDate,
			BillingDay:      input.BillingDay,
		})
	}
}
