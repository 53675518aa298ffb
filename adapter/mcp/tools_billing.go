package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/shopspring/decimal"

	"github.com/troncosounlar-bit/legasync-flow/adapter/cli"
	"github.com/troncosounlar-bit/legasync-flow/internal/billing/application/commands"
	"github.com/troncosounlar-bit/legasync-flow/internal/billing/application/queries"
	"github.com/troncosounlar-bit/legasync-flow/internal/billing/domain"
)

// BillingRunOutput is the billing.run result.
type BillingRunOutput struct {
	RunID      string                    `json:"run_id"`
	Status     domain.RunStatus          `json:"status"`
	Considered int                       `json:"considered"`
	Due        int                       `json:"due"`
	Resumed    int                       `json:"resumed"`
	Invoices   []domain.GeneratedInvoice `json:"invoices"`
	Failures   []domain.ItemFailure      `json:"failures"`
	DurationMS int64                     `json:"duration_ms"`
	Error      string                    `json:"error,omitempty"`
}

type taxInput struct {
	Amount string `json:"amount" jsonschema:"required"`
}

func registerBillingTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("billing.run").
		Description("Invoice every active subscription whose billing date has passed, validating each with the fiscal service").
		Handler(billingRunTool(app))

	srv.Tool("billing.monthly").
		Description("Legacy monthly automation: one pending invoice per active subscription, no validation or rescheduling").
		Handler(func(ctx context.Context, input struct{}) (map[string]int, error) {
			if app.RunMonthly == nil {
				return nil, errNotInitialized
			}
			count, err := app.RunMonthly.Handle(ctx)
			if err != nil {
				return nil, err
			}
			return map[string]int{"created": count}, nil
		})

	srv.Tool("billing.metrics").
		Description("Total revenue, capital at risk, automation ratio and health score").
		Handler(func(ctx context.Context, input struct{}) (domain.InvoiceMetrics, error) {
			if app.InvoiceMetrics == nil {
				return domain.InvoiceMetrics{}, errNotInitialized
			}
			return app.InvoiceMetrics.Handle(ctx)
		})

	srv.Tool("billing.stats").
		Description("Paid revenue normalised to USD, total and per customer").
		Handler(func(ctx context.Context, input struct{}) (domain.Statistics, error) {
			if app.RevenueStatistics == nil {
				return domain.Statistics{}, errNotInitialized
			}
			return app.RevenueStatistics.Handle(ctx)
		})

	srv.Tool("billing.tax").
		Description("Compute the 21% tax and total for an amount").
		Handler(taxTool)

	return nil
}

func billingRunTool(app *cli.App) func(context.Context, struct{}) (*BillingRunOutput, error) {
	return func(ctx context.Context, _ struct{}) (*BillingRunOutput, error) {
		if app == nil || app.RunBilling == nil {
			return nil, errNotInitialized
		}

		result, err := app.RunBilling.Handle(ctx, commands.RunBillingCommand{OperatorID: app.OperatorID})
		if errors.Is(err, domain.ErrRunInProgress) {
			return nil, err
		}

		out := &BillingRunOutput{
			RunID:      result.RunID.String(),
			Status:     result.Status(),
			Considered: result.Considered,
			Due:        result.Due,
			Resumed:    result.Resumed,
			Invoices:   result.Invoices,
			Failures:   result.Failures,
			DurationMS: result.Duration().Milliseconds(),
		}
		if err != nil {
			out.Error = err.Error()
		}
		return out, nil
	}
}

func taxTool(_ context.Context, input taxInput) (queries.TaxResult, error) {
	amount, err := decimal.NewFromString(input.Amount)
	if err != nil {
		return queries.TaxResult{}, fmt.Errorf("invalid amount %q", input.Amount)
	}
	return queries.CalculateTax(amount)
}
