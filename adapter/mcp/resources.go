package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/troncosounlar-bit/legasync-flow/adapter/cli"
	"github.com/troncosounlar-bit/legasync-flow/internal/billing/application/queries"
)

// RegisterResources registers MCP resources that expose back-office data.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}
	app := deps.App

	resources := []struct {
		uri         string
		name        string
		description string
		load        func(ctx context.Context, app *cli.App) (any, error)
	}{
		{"legasync://invoices", "Invoices", "All invoices, newest first", loadInvoices},
		{"legasync://subscriptions/active", "Active subscriptions", "Subscriptions the billing run will consider", loadActiveSubscriptions},
		{"legasync://customers", "Customers", "Customers by name with their expenses", loadCustomers},
		{"legasync://metrics", "Invoice metrics", "Revenue, capital at risk, automation and health", loadMetrics},
		{"legasync://dashboard/logs", "Recent activity", "The newest activity feed entries", loadLogs},
	}

	for _, r := range resources {
		load := r.load
		srv.Resource(r.uri).
			Name(r.name).
			Description(r.description).
			MimeType("application/json").
			Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
				if app == nil {
					return nil, errNotInitialized
				}
				return jsonResource(ctx, uri, app, load)
			})
	}
	return nil
}

func jsonResource(ctx context.Context, uri string, app *cli.App, load func(context.Context, *cli.App) (any, error)) (*mcp.ResourceContent, error) {
	v, err := load(ctx, app)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ResourceContent{
		URI:      uri,
		MimeType: "application/json",
		Text:     string(data),
	}, nil
}

func loadInvoices(ctx context.Context, app *cli.App) (any, error) {
	if app.ListInvoices == nil {
		return nil, errNotInitialized
	}
	return app.ListInvoices.Handle(ctx, queries.ListInvoicesQuery{})
}

func loadActiveSubscriptions(ctx context.Context, app *cli.App) (any, error) {
	if app.Subscriptions == nil {
		return nil, errNotInitialized
	}
	return app.Subscriptions.Active(ctx)
}

func loadCustomers(ctx context.Context, app *cli.App) (any, error) {
	if app.CustomerQueries == nil {
		return nil, errNotInitialized
	}
	customers, err := app.CustomerQueries.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CustomerDTO, 0, len(customers))
	for _, c := range customers {
		out = append(out, toCustomerDTO(c))
	}
	return out, nil
}

func loadMetrics(ctx context.Context, app *cli.App) (any, error) {
	if app.InvoiceMetrics == nil {
		return nil, errNotInitialized
	}
	return app.InvoiceMetrics.Handle(ctx)
}

func loadLogs(ctx context.Context, app *cli.App) (any, error) {
	if app.ActivityLog == nil {
		return nil, errNotInitialized
	}
	return app.ActivityLog.RecentLogs(ctx)
}
