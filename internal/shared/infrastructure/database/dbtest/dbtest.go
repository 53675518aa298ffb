// Package dbtest opens migrated SQLite databases for repository tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/troncosounlar-bit/legasync-flow/internal/shared/infrastructure/database"
	"github.com/troncosounlar-bit/legasync-flow/internal/shared/infrastructure/database/sqlite"
	"github.com/troncosounlar-bit/legasync-flow/internal/shared/infrastructure/migrations"
)

// NewSQLite returns a connection to a fresh, fully migrated database in
// t.TempDir(). The connection is closed when the test ends.
func NewSQLite(t testing.TB) database.Connection {
	t.Helper()
	ctx := context.Background()

	conn, err := sqlite.NewConnection(ctx, database.Config{
		Driver:     database.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "legasync.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	_, err = migrations.RunSQLiteMigrations(ctx, conn.(*sqlite.Connection).DB())
	require.NoError(t, err)
	return conn
}
