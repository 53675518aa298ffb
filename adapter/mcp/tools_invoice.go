package mcp

import (
	"context"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/troncosounlar-bit/legasync-flow/adapter/cli"
	"github.com/troncosounlar-bit/legasync-flow/internal/billing/application/commands"
	"github.com/troncosounlar-bit/legasync-flow/internal/billing/application/queries"
	"github.com/troncosounlar-bit/legasync-flow/internal/billing/domain"
)

type invoiceListInput struct {
	Search string `json:"search,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

type invoiceCreateInput struct {
	CustomerID   string `json:"customer_id,omitempty"`
	CustomerName string `json:"customer_name,omitempty"`
	Description  string `json:"description,omitempty"`
	Amount       string `json:"amount" jsonschema:"required"`
	Currency     string `json:"currency,omitempty"`
}

func registerInvoiceTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("invoice.list").
		Description("List invoices newest first, optionally filtered by customer name").
		Handler(invoiceListTool(app))

	srv.Tool("invoice.create").
		Description("Create a pending manual invoice").
		Handler(invoiceCreateTool(app))

	srv.Tool("invoice.pay").
		Description("Mark a pending invoice as paid").
		Handler(func(ctx context.Context, input idInput) (*domain.Invoice, error) {
			if app.Invoices == nil {
				return nil, errNotInitialized
			}
			id, err := parseUUID(input.ID)
			if err != nil {
				return nil, err
			}
			return app.Invoices.MarkPaid(ctx, id)
		})

	srv.Tool("invoice.delete").
		Description("Delete an invoice").
		Handler(func(ctx context.Context, input idInput) (map[string]string, error) {
			if app.Invoices == nil {
				return nil, errNotInitialized
			}
			id, err := parseUUID(input.ID)
			if err != nil {
				return nil, err
			}
			if err := app.Invoices.Delete(ctx, id); err != nil {
				return nil, err
			}
			return map[string]string{"deleted": id.String()}, nil
		})

	return nil
}

func invoiceListTool(app *cli.App) func(context.Context, invoiceListInput) ([]domain.Invoice, error) {
	return func(ctx context.Context, input invoiceListInput) ([]domain.Invoice, error) {
		if app == nil || app.ListInvoices == nil {
			return nil, errNotInitialized
		}
		invoices, err := app.ListInvoices.Handle(ctx, queries.ListInvoicesQuery{Search: input.Search})
		if err != nil {
			return nil, err
		}
		if input.Limit > 0 && len(invoices) > input.Limit {
			invoices = invoices[:input.Limit]
		}
		return invoices, nil
	}
}

func invoiceCreateTool(app *cli.App) func(context.Context, invoiceCreateInput) (*domain.Invoice, error) {
	return func(ctx context.Context, input invoiceCreateInput) (*domain.Invoice, error) {
		if app == nil || app.Invoices == nil {
			return nil, errNotInitialized
		}
		customerID, err := parseOptionalUUID(input.CustomerID)
		if err != nil {
			return nil, err
		}
		name := input.CustomerName
		if customerID != nil && name == "" {
			customer, err := app.CustomerQueries.Get(ctx, *customerID)
			if err != nil {
				return nil, err
			}
			name = customer.Name()
		}

		return app.Invoices.Create(ctx, commands.CreateInvoiceCommand{
			CustomerID:   customerID,
			CustomerName: name,
			Description:  input.Description,
			Amount:       input.Amount,
			CurrencyCode: input.Currency,
		})
	}
}
