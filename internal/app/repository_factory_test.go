package app

import (
	"context"
	"path/filepath"
	"testing"

	supa "github.com/nedpals/supabase-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	billingPersistence "github.com/troncosounlar-bit/legasync-flow/internal/billing/infrastructure/persistence"
	"github.com/troncosounlar-bit/legasync-flow/internal/billing/infrastructure/supabase"
	"github.com/troncosounlar-bit/legasync-flow/internal/shared/infrastructure/database"
	"github.com/troncosounlar-bit/legasync-flow/internal/shared/infrastructure/database/sqlite"
)

func newFactory(t *testing.T) *RepositoryFactory {
	t.Helper()
	conn, err := sqlite.NewConnection(context.Background(), database.Config{
		Driver:     database.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "factory.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewRepositoryFactory(conn)
}

func TestRepositoryFactory_Migrate(t *testing.T) {
	factory := newFactory(t)
	ctx := context.Background()

	require.NoError(t, factory.Migrate(ctx, "", nil))
	// A second pass has nothing left to apply.
	require.NoError(t, factory.Migrate(ctx, "", nil))

	recent, err := factory.LogRepository().Recent(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, recent)

	customers, err := factory.CustomerRepository().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, customers)
}

func TestRepositoryFactory_BillingStores(t *testing.T) {
	factory := newFactory(t)

	assert.False(t, factory.Remote())
	assert.IsType(t, &billingPersistence.SubscriptionRepository{}, factory.SubscriptionRepository())
	assert.IsType(t, &billingPersistence.InvoiceRepository{}, factory.InvoiceRepository())

	factory.WithSupabase(supa.CreateClient("http://localhost:54321", "anon-key"))

	assert.True(t, factory.Remote())
	assert.IsType(t, &supabase.SubscriptionStore{}, factory.SubscriptionRepository())
	assert.IsType(t, &supabase.InvoiceStore{}, factory.InvoiceRepository())
}

func TestRepositoryFactory_Driver(t *testing.T) {
	factory := newFactory(t)

	assert.Equal(t, database.DriverSQLite, factory.Driver())
	assert.NotNil(t, factory.Connection())
	assert.NotNil(t, factory.UnitOfWork())
}
