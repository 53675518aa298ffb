package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/troncosounlar-bit/legasync-flow/internal/shared/infrastructure/database"
)

func openTest(t *testing.T) database.Connection {
	t.Helper()
	conn, err := NewConnection(context.Background(), database.Config{
		SQLitePath: filepath.Join(t.TempDir(), "nested", "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestNewConnection(t *testing.T) {
	conn := openTest(t)
	assert.NoError(t, conn.Ping(context.Background()))
	assert.Equal(t, database.DriverSQLite, conn.Driver())
}

func TestConnection_ExecAndQuery(t *testing.T) {
	ctx := context.Background()
	conn := openTest(t)

	_, err := conn.Exec(ctx, `CREATE TABLE sample (id TEXT PRIMARY KEY, amount TEXT)`)
	require.NoError(t, err)

	res, err := conn.Exec(ctx, `INSERT INTO sample (id, amount) VALUES (?, ?), (?, ?)`, "a", "45.00", "b", "10.50")
	require.NoError(t, err)
	affected, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	rows, err := conn.Query(ctx, `SELECT id, amount FROM sample ORDER BY id`)
	require.NoError(t, err)
	amounts, err := database.CollectRows(rows, func(r database.Row) (string, error) {
		var id, amount string
		err := r.Scan(&id, &amount)
		return amount, err
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"45.00", "10.50"}, amounts)
}

func TestConnection_TransactionRollback(t *testing.T) {
	ctx := context.Background()
	conn := openTest(t)

	_, err := conn.Exec(ctx, `CREATE TABLE sample (id TEXT PRIMARY KEY)`)
	require.NoError(t, err)

	uow := database.NewUnitOfWork(conn)
	txCtx, err := uow.Begin(ctx)
	require.NoError(t, err)

	_, err = database.ExecutorFromContext(txCtx, conn).Exec(txCtx, `INSERT INTO sample (id) VALUES (?)`, "x")
	require.NoError(t, err)
	require.NoError(t, uow.Rollback(txCtx))

	var count int
	require.NoError(t, conn.QueryRow(ctx, `SELECT COUNT(*) FROM sample`).Scan(&count))
	assert.Zero(t, count)
}

func TestConnection_NestedUnitOfWorkCommitsOnce(t *testing.T) {
	ctx := context.Background()
	conn := openTest(t)

	_, err := conn.Exec(ctx, `CREATE TABLE sample (id TEXT PRIMARY KEY)`)
	require.NoError(t, err)

	uow := database.NewUnitOfWork(conn)
	outer, err := uow.Begin(ctx)
	require.NoError(t, err)
	inner, err := uow.Begin(outer)
	require.NoError(t, err)

	_, err = database.ExecutorFromContext(inner, conn).Exec(inner, `INSERT INTO sample (id) VALUES (?)`, "y")
	require.NoError(t, err)
	require.NoError(t, uow.Commit(inner))
	require.NoError(t, uow.Commit(outer))

	var count int
	require.NoError(t, conn.QueryRow(ctx, `SELECT COUNT(*) FROM sample`).Scan(&count))
	assert.Equal(t, 1, count)

	assert.ErrorIs(t, uow.Commit(ctx), database.ErrNoTransaction)
}
