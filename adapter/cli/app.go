package cli

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/troncosounlar-bit/legasync-flow/internal/app"
	billingCommands "github.com/troncosounlar-bit/legasync-flow/internal/billing/application/commands"
	billingQueries "github.com/troncosounlar-bit/legasync-flow/internal/billing/application/queries"
	billingDomain "github.com/troncosounlar-bit/legasync-flow/internal/billing/domain"
	customerCommands "github.com/troncosounlar-bit/legasync-flow/internal/customers/application/commands"
	customerQueries "github.com/troncosounlar-bit/legasync-flow/internal/customers/application/queries"
	dashboardApp "github.com/troncosounlar-bit/legasync-flow/internal/dashboard/application"
	exchangeApp "github.com/troncosounlar-bit/legasync-flow/internal/exchange/application"
	"github.com/troncosounlar-bit/legasync-flow/pkg/observability"
)

// ErrNotInitialized is returned by commands that need the database.
var ErrNotInitialized = errors.New("application not initialized - database connection required")

// App holds the CLI application dependencies.
type App struct {
	OperatorID uuid.UUID

	// Billing
	RunBilling         *billingCommands.RunBillingHandler
	RunMonthly         *billingCommands.RunMonthlyAutomationHandler
	AddSubscription    *billingCommands.AddSubscriptionHandler
	ToggleSubscription *billingCommands.ToggleSubscriptionHandler
	DeleteSubscription *billingCommands.DeleteSubscriptionHandler
	Invoices           *billingCommands.InvoiceHandler
	ListInvoices       *billingQueries.ListInvoicesHandler
	InvoiceMetrics     *billingQueries.InvoiceMetricsHandler
	RevenueStatistics  *billingQueries.RevenueStatisticsHandler
	Subscriptions      *billingQueries.SubscriptionsHandler
	Views              billingDomain.ViewCache

	// Customers
	CreateCustomer  *customerCommands.CreateCustomerHandler
	UpdateCustomer  *customerCommands.UpdateCustomerHandler
	DeleteCustomer  *customerCommands.DeleteCustomerHandler
	Expenses        *customerCommands.ExpenseHandler
	CustomerQueries *customerQueries.CustomerQueries

	// Dashboard and panels
	ActivityLog *dashboardApp.ActivityLog
	Rates       *exchangeApp.RatesService

	Health  *observability.HealthRegistry
	Metrics *observability.InMemoryMetrics

	flush func(ctx context.Context)
}

// NewApp exposes the container's handlers to the commands.
func NewApp(c *app.Container) *App {
	return &App{
		OperatorID:         c.OperatorID(),
		RunBilling:         c.RunBilling,
		RunMonthly:         c.RunMonthly,
		AddSubscription:    c.AddSubscription,
		ToggleSubscription: c.ToggleSubscription,
		DeleteSubscription: c.DeleteSubscription,
		Invoices:           c.Invoices,
		ListInvoices:       c.ListInvoices,
		InvoiceMetrics:     c.InvoiceMetrics,
		RevenueStatistics:  c.RevenueStatistics,
		Subscriptions:      c.Subscriptions,
		Views:              c.Views,
		CreateCustomer:     c.CreateCustomer,
		UpdateCustomer:     c.UpdateCustomer,
		DeleteCustomer:     c.DeleteCustomer,
		Expenses:           c.Expenses,
		CustomerQueries:    c.CustomerQueries,
		ActivityLog:        c.ActivityLog,
		Rates:              c.Rates,
		Health:             c.Health,
		Metrics:            c.Metrics,
		flush:              c.FlushEvents,
	}
}

// FlushEvents delivers events raised by the last command.
func (a *App) FlushEvents(ctx context.Context) {
	if a.flush != nil {
		a.flush(ctx)
	}
}

var currentApp *App

// SetApp sets the current CLI application.
func SetApp(a *App) {
	currentApp = a
}

// GetApp returns the current CLI application.
func GetApp() *App {
	return currentApp
}
