// Package app wires LegaSync Flow's dependencies for every binary.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	supa "github.com/nedpals/supabase-go"
	"github.com/redis/go-redis/v9"

	billingCommands "github.com/troncosounlar-bit/legasync-flow/internal/billing/application/commands"
	billingQueries "github.com/troncosounlar-bit/legasync-flow/internal/billing/application/queries"
	billingDomain "github.com/troncosounlar-bit/legasync-flow/internal/billing/domain"
	"github.com/troncosounlar-bit/legasync-flow/internal/billing/infrastructure/fiscal"
	"github.com/troncosounlar-bit/legasync-flow/internal/billing/infrastructure/viewcache"
	customerCommands "github.com/troncosounlar-bit/legasync-flow/internal/customers/application/commands"
	customerQueries "github.com/troncosounlar-bit/legasync-flow/internal/customers/application/queries"
	dashboardApp "github.com/troncosounlar-bit/legasync-flow/internal/dashboard/application"
	exchangeApp "github.com/troncosounlar-bit/legasync-flow/internal/exchange/application"
	"github.com/troncosounlar-bit/legasync-flow/internal/exchange/infrastructure/dolarapi"
	sharedApplication "github.com/troncosounlar-bit/legasync-flow/internal/shared/application"
	"github.com/troncosounlar-bit/legasync-flow/internal/shared/infrastructure/database"
	_ "github.com/troncosounlar-bit/legasync-flow/internal/shared/infrastructure/database/postgres" // Register PostgreSQL driver
	_ "github.com/troncosounlar-bit/legasync-flow/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/troncosounlar-bit/legasync-flow/internal/shared/infrastructure/eventbus"
	"github.com/troncosounlar-bit/legasync-flow/internal/shared/infrastructure/outbox"
	"github.com/troncosounlar-bit/legasync-flow/pkg/config"
	"github.com/troncosounlar-bit/legasync-flow/pkg/observability"
)

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *observability.InMemoryMetrics
	Health  *observability.HealthRegistry

	// Backends
	DBConn      database.Connection
	RedisClient *redis.Client
	Supabase    *supa.Client
	Factory     *RepositoryFactory

	// Repositories
	SubscriptionRepo billingDomain.SubscriptionRepository
	InvoiceRepo      billingDomain.InvoiceRepository
	OutboxRepo       outbox.Repository
	UnitOfWork       sharedApplication.UnitOfWork

	// Events
	EventPublisher  eventbus.Publisher
	EventBus        *eventbus.InProcessEventBus
	OutboxProcessor *outbox.Processor

	// Billing
	Views              *viewcache.Views
	RunLock            billingDomain.RunLock
	Fiscal             *fiscal.BreakerValidator
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

	// Customers
	CreateCustomer  *customerCommands.CreateCustomerHandler
	UpdateCustomer  *customerCommands.UpdateCustomerHandler
	DeleteCustomer  *customerCommands.DeleteCustomerHandler
	Expenses        *customerCommands.ExpenseHandler
	CustomerQueries *customerQueries.CustomerQueries

	// Dashboard
	ActivityLog  *dashboardApp.ActivityLog
	FeedConsumer *dashboardApp.FeedConsumer

	// Exchange rates
	Rates *exchangeApp.RatesService

	operatorID  uuid.UUID
	localEvents bool
	closers     []func() error
}

// NewContainer creates and wires all dependencies.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	operatorID, err := uuid.Parse(cfg.OperatorID)
	if err != nil {
		return nil, fmt.Errorf("invalid LEGASYNC_OPERATOR_ID: %w", err)
	}
	policies, err := billingDomain.ParsePolicies(cfg.DefaultCurrency, cfg.CurrencyPolicy, cfg.IntervalPolicy, cfg.MonthEndPolicy)
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config:     cfg,
		Logger:     logger,
		Metrics:    observability.NewInMemoryMetrics(),
		Health:     observability.NewHealthRegistry(),
		operatorID: operatorID,
	}

	if err := c.connectDatabase(ctx); err != nil {
		return nil, err
	}
	c.connectRedis(ctx)
	if cfg.RemoteMode() {
		c.Supabase = supa.CreateClient(cfg.SupabaseURL, cfg.SupabaseKey)
		if c.Supabase == nil {
			_ = c.Close()
			return nil, errors.New("failed to create Supabase client")
		}
		c.Factory.WithSupabase(c.Supabase)
		logger.Info("billing data served by Supabase", "url", cfg.SupabaseURL)
	}

	// Repositories
	c.SubscriptionRepo = c.Factory.SubscriptionRepository()
	c.InvoiceRepo = c.Factory.InvoiceRepository()
	c.OutboxRepo = c.Factory.OutboxRepository()
	c.UnitOfWork = c.Factory.UnitOfWork()

	// Dashboard feed and events
	c.ActivityLog = dashboardApp.NewActivityLog(c.Factory.LogRepository())
	c.FeedConsumer = dashboardApp.NewFeedConsumer(c.ActivityLog)
	c.EventBus = eventbus.NewInProcessEventBus(logger, c.Metrics)
	c.EventBus.RegisterConsumer(c.FeedConsumer)
	if err := c.connectPublisher(); err != nil {
		_ = c.Close()
		return nil, err
	}
	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, outbox.ProcessorConfig{
		PollInterval:     cfg.OutboxPollInterval,
		BatchSize:        cfg.OutboxBatchSize,
		MaxRetries:       cfg.OutboxMaxRetries,
		RetryBackoffBase: outbox.DefaultProcessorConfig().RetryBackoffBase,
		RetryBackoffMax:  outbox.DefaultProcessorConfig().RetryBackoffMax,
	}, logger).WithMetrics(c.Metrics)

	// View cache and run lock
	var store viewcache.Store
	if c.RedisClient != nil {
		store = viewcache.NewRedisStore(c.RedisClient)
		c.RunLock = viewcache.NewRedisRunLock(c.RedisClient)
	} else {
		store = viewcache.NewMemoryStore(cfg.ViewCacheTTL)
		c.RunLock = &viewcache.LocalRunLock{}
	}
	c.Views = viewcache.New(viewcache.RepositorySource(c.SubscriptionRepo, c.InvoiceRepo), store, cfg.ViewCacheTTL, logger, c.Metrics)

	// Fiscal authority
	if err := c.connectFiscal(); err != nil {
		_ = c.Close()
		return nil, err
	}

	// Billing handlers
	c.RunBilling = billingCommands.NewRunBillingHandler(
		c.SubscriptionRepo, c.InvoiceRepo, c.OutboxRepo, c.UnitOfWork, c.Fiscal, c.Views, policies, logger,
	).
		WithRunLock(c.RunLock, cfg.BillingRunLockTTL).
		WithMetrics(c.Metrics).
		WithStatusSink(billingDomain.StatusSinkFunc(func(result billingDomain.RunResult) {
			logger.Info("billing run finished",
				"run_id", result.RunID,
				observability.StatusKey, string(result.Status()),
				"invoices", result.InvoiceCount(),
				"failures", len(result.Failures),
			)
		}))
	c.RunMonthly = billingCommands.NewRunMonthlyAutomationHandler(c.SubscriptionRepo, c.InvoiceRepo, c.UnitOfWork, c.Views, logger)
	c.AddSubscription = billingCommands.NewAddSubscriptionHandler(c.SubscriptionRepo, c.OutboxRepo, c.UnitOfWork, c.Views, logger)
	c.ToggleSubscription = billingCommands.NewToggleSubscriptionHandler(c.SubscriptionRepo, c.OutboxRepo, c.UnitOfWork, c.Views, logger)
	c.DeleteSubscription = billingCommands.NewDeleteSubscriptionHandler(c.SubscriptionRepo, c.Views, logger)
	c.Invoices = billingCommands.NewInvoiceHandler(c.InvoiceRepo, c.Views, logger)
	c.ListInvoices = billingQueries.NewListInvoicesHandler(c.InvoiceRepo, c.Views)
	c.InvoiceMetrics = billingQueries.NewInvoiceMetricsHandler(c.Views, cfg.InvoiceRiskAfter)
	c.RevenueStatistics = billingQueries.NewRevenueStatisticsHandler(c.Views, billingDomain.DefaultExchangeTable())
	c.Subscriptions = billingQueries.NewSubscriptionsHandler(c.SubscriptionRepo, c.Views)

	// Customers
	customerRepo := c.Factory.CustomerRepository()
	expenseRepo := c.Factory.ExpenseRepository()
	c.CreateCustomer = customerCommands.NewCreateCustomerHandler(customerRepo, c.OutboxRepo, c.UnitOfWork)
	c.UpdateCustomer = customerCommands.NewUpdateCustomerHandler(customerRepo, c.OutboxRepo, c.UnitOfWork)
	c.DeleteCustomer = customerCommands.NewDeleteCustomerHandler(customerRepo)
	c.Expenses = customerCommands.NewExpenseHandler(customerRepo, expenseRepo)
	c.CustomerQueries = customerQueries.NewCustomerQueries(customerRepo, expenseRepo)

	// Exchange rates
	c.Rates = exchangeApp.NewRatesService(dolarapi.NewClient(dolarapi.Config{
		URL:      cfg.ExchangeAPIURL,
		RetryMax: cfg.ExchangeRetryMax,
	}), cfg.ExchangeCacheTTL, logger, c.Metrics)

	c.registerHealthChecks()
	return c, nil
}

func (c *Container) connectDatabase(ctx context.Context) error {
	dbCfg := database.Config{
		URL:        c.Config.DatabaseURL,
		SQLitePath: c.Config.SQLitePath,
		MaxConns:   c.Config.MaxConns,
	}
	if c.Config.DatabaseURL == "" {
		dbCfg.Driver = database.DriverSQLite
	}

	conn, err := database.NewConnection(ctx, dbCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DBConn = conn
	c.closers = append(c.closers, conn.Close)
	c.Factory = NewRepositoryFactory(conn)

	if err := c.Factory.Migrate(ctx, c.Config.DatabaseURL, c.Logger); err != nil {
		_ = c.Close()
		return err
	}
	c.Logger.Info("connected to database", "driver", conn.Driver())
	return nil
}

// connectRedis is optional in every environment: without Redis the view
// cache stays in process and the run lock only guards this process.
func (c *Container) connectRedis(ctx context.Context) {
	if c.Config.RedisURL == "" {
		return
	}
	opt, err := redis.ParseURL(c.Config.RedisURL)
	if err != nil {
		c.Logger.Warn("invalid Redis URL, views will use in-memory cache", observability.ErrorKey, err)
		return
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		c.Logger.Warn("Redis not available, views will use in-memory cache", observability.ErrorKey, err)
		return
	}
	c.RedisClient = client
	c.closers = append(c.closers, client.Close)
	c.Logger.Info("connected to Redis")
}

func (c *Container) connectPublisher() error {
	if c.Config.RabbitMQURL == "" {
		c.EventPublisher = c.EventBus
		c.localEvents = true
		return nil
	}
	publisher, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, c.Logger)
	if err != nil {
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		c.Logger.Warn("RabbitMQ not available, delivering events in process", observability.ErrorKey, err)
		c.EventPublisher = c.EventBus
		c.localEvents = true
		return nil
	}
	c.EventPublisher = publisher
	c.closers = append(c.closers, publisher.Close)
	return nil
}

func (c *Container) connectFiscal() error {
	var next billingDomain.FiscalValidator
	switch c.Config.FiscalMode {
	case config.FiscalModePlugin:
		pv, err := fiscal.LoadPlugin(c.Config.FiscalPluginPath, c.Logger)
		if err != nil {
			return err
		}
		c.closers = append(c.closers, pv.Close)
		next = pv
	default:
		next = fiscal.NewSimulatedValidator(c.Config.FiscalSimulatedDelay)
	}

	cfg := fiscal.DefaultBreakerConfig()
	if c.Config.FiscalBreakerThreshold > 0 {
		cfg.FailureThreshold = uint32(c.Config.FiscalBreakerThreshold) // #nosec G115 -- positive config value
	}
	if c.Config.FiscalBreakerTimeout > 0 {
		cfg.Timeout = c.Config.FiscalBreakerTimeout
	}
	c.Fiscal = fiscal.NewBreakerValidator(next, cfg, c.Logger, c.Metrics)
	c.Logger.Info("fiscal validator ready", "mode", c.Config.FiscalMode)
	return nil
}

func (c *Container) registerHealthChecks() {
	c.Health.Register("database", observability.PingChecker("database", true, c.DBConn.Ping))
	if c.RedisClient != nil {
		c.Health.Register("redis", observability.PingChecker("redis", false, func(ctx context.Context) error {
			return c.RedisClient.Ping(ctx).Err()
		}))
	}
	c.Health.Register("fiscal", func(context.Context) observability.HealthCheckResult {
		state := c.Fiscal.State()
		if state == "open" {
			return observability.HealthCheckResult{Status: observability.HealthStatusDegraded, Message: "fiscal breaker open"}
		}
		return observability.HealthCheckResult{Status: observability.HealthStatusHealthy, Message: "fiscal breaker " + state}
	})
}

// OperatorID is the user recorded on events raised by this process.
func (c *Container) OperatorID() uuid.UUID {
	return c.operatorID
}

// LocalEvents reports whether events are delivered in process rather than
// through RabbitMQ.
func (c *Container) LocalEvents() bool {
	return c.localEvents
}

// FlushEvents publishes pending outbox messages right away. With in-process
// delivery this is what feeds the dashboard after a CLI command; with
// RabbitMQ the worker does it.
func (c *Container) FlushEvents(ctx context.Context) {
	if !c.localEvents {
		return
	}
	if err := c.OutboxProcessor.ProcessOnce(ctx); err != nil {
		c.Logger.Warn("failed to flush outbox", observability.ErrorKey, err)
	}
}

// Close releases every backend in reverse order of acquisition.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
