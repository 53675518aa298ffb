package migrations

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestLoad(t *testing.T) {
	for _, dialect := range []string{"sqlite", "postgres"} {
		t.Run(dialect, func(t *testing.T) {
			ms, err := Load(dialect)
			require.NoError(t, err)
			require.Len(t, ms, 2)
			assert.Equal(t, "0001_core", ms[0].Version)
			assert.Equal(t, "0002_outbox", ms[1].Version)
			assert.Contains(t, ms[0].SQL, "ux_invoices_subscription_period")
		})
	}
}

func TestRunSQLiteMigrations(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "m.db"))
	require.NoError(t, err)
	defer db.Close()

	ran, err := RunSQLiteMigrations(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_core", "0002_outbox"}, ran)

	again, err := RunSQLiteMigrations(ctx, db)
	require.NoError(t, err)
	assert.Empty(t, again)

	for _, table := range []string{"customers", "subscriptions", "invoices", "dashboard_logs", "outbox_messages"} {
		var name string
		err := db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
	}
}
