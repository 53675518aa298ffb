package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	supa "github.com/nedpals/supabase-go"

	billingDomain "github.com/troncosounlar-bit/legasync-flow/internal/billing/domain"
	billingPersistence "github.com/troncosounlar-bit/legasync-flow/internal/billing/infrastructure/persistence"
	"github.com/troncosounlar-bit/legasync-flow/internal/billing/infrastructure/supabase"
	customersDomain "github.com/troncosounlar-bit/legasync-flow/internal/customers/domain"
	customersPersistence "github.com/troncosounlar-bit/legasync-flow/internal/customers/infrastructure/persistence"
	dashboardDomain "github.com/troncosounlar-bit/legasync-flow/internal/dashboard/domain"
	dashboardPersistence "github.com/troncosounlar-bit/legasync-flow/internal/dashboard/infrastructure/persistence"
	"github.com/troncosounlar-bit/legasync-flow/internal/shared/infrastructure/database"
	"github.com/troncosounlar-bit/legasync-flow/internal/shared/infrastructure/migrations"
	"github.com/troncosounlar-bit/legasync-flow/internal/shared/infrastructure/outbox"
)

// RepositoryFactory creates repositories for the configured backends.
// Subscriptions and invoices live in the hosted backend when a Supabase
// client is set; everything else always lives in the SQL database.
type RepositoryFactory struct {
	conn     database.Connection
	driver   database.Driver
	supabase *supa.Client
}

// NewRepositoryFactory creates a new repository factory.
func NewRepositoryFactory(conn database.Connection) *RepositoryFactory {
	return &RepositoryFactory{
		conn:   conn,
		driver: conn.Driver(),
	}
}

// WithSupabase moves subscriptions and invoices to the hosted backend.
func (f *RepositoryFactory) WithSupabase(client *supa.Client) *RepositoryFactory {
	f.supabase = client
	return f
}

// Remote reports whether billing data lives in the hosted backend.
func (f *RepositoryFactory) Remote() bool {
	return f.supabase != nil
}

// Migrate brings the SQL schema up to date.
func (f *RepositoryFactory) Migrate(ctx context.Context, databaseURL string, logger *slog.Logger) error {
	var (
		applied []string
		err     error
	)
	switch f.driver {
	case database.DriverPostgres:
		applied, err = migrations.RunPostgresMigrations(ctx, databaseURL)
	case database.DriverSQLite:
		var db *sql.DB
		db, err = f.getSQLiteDB()
		if err != nil {
			return err
		}
		applied, err = migrations.RunSQLiteMigrations(ctx, db)
	default:
		return fmt.Errorf("unsupported driver: %s", f.driver)
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", f.driver, err)
	}
	if len(applied) > 0 && logger != nil {
		logger.Info("applied migrations", "driver", f.driver, "versions", applied)
	}
	return nil
}

// SubscriptionRepository creates the subscription store.
func (f *RepositoryFactory) SubscriptionRepository() billingDomain.SubscriptionRepository {
	if f.supabase != nil {
		return supabase.NewSubscriptionStore(f.supabase)
	}
	return billingPersistence.NewSubscriptionRepository(f.conn)
}

// InvoiceRepository creates the invoice store.
func (f *RepositoryFactory) InvoiceRepository() billingDomain.InvoiceRepository {
	if f.supabase != nil {
		return supabase.NewInvoiceStore(f.supabase)
	}
	return billingPersistence.NewInvoiceRepository(f.conn)
}

// CustomerRepository creates the customer repository.
func (f *RepositoryFactory) CustomerRepository() customersDomain.CustomerRepository {
	return customersPersistence.NewCustomerRepository(f.conn)
}

// ExpenseRepository creates the expense repository.
func (f *RepositoryFactory) ExpenseRepository() customersDomain.ExpenseRepository {
	return customersPersistence.NewExpenseRepository(f.conn)
}

// LogRepository creates the dashboard feed repository.
func (f *RepositoryFactory) LogRepository() dashboardDomain.Repository {
	return dashboardPersistence.NewLogRepository(f.conn)
}

// OutboxRepository creates the outbox repository.
func (f *RepositoryFactory) OutboxRepository() outbox.Repository {
	return outbox.NewSQLRepository(f.conn)
}

// UnitOfWork creates a unit of work over the SQL connection. Hosted
// backend calls run outside it.
func (f *RepositoryFactory) UnitOfWork() *database.GenericUnitOfWork {
	return database.NewUnitOfWork(f.conn)
}

func (f *RepositoryFactory) getSQLiteDB() (*sql.DB, error) {
	sqliteConn, ok := f.conn.(interface{ DB() *sql.DB })
	if !ok {
		return nil, fmt.Errorf("sqlite connection does not expose DB()")
	}
	return sqliteConn.DB(), nil
}

// Driver returns the database driver type.
func (f *RepositoryFactory) Driver() database.Driver {
	return f.driver
}

// Connection returns the underlying database connection.
func (f *RepositoryFactory) Connection() database.Connection {
	return f.conn
}
