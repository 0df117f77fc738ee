package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenSQLiteDSN(context.Background(), MemorySQLiteDSN("database_"+t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrateSQLite_Idempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, MigrateSQLite(context.Background(), db))

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestMigrateSQLite_OneOpenSessionIndex(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `INSERT INTO employees(id, employee_id, name, created_at_ns, updated_at_ns) VALUES ('u1', 'E1', 'Ana', 0, 0)`)
	require.NoError(t, err)

	insert := `INSERT INTO attendances(id, employee_id, date, check_in_time_ns, check_out_time_ns, status, created_at_ns, updated_at_ns)
VALUES (?, 'E1', '2025-03-04', ?, ?, 'present', 0, 0)`

	_, err = db.ExecContext(ctx, insert, "a1", 1, nil)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, insert, "a2", 2, nil)
	assert.Error(t, err, "second open session must violate the partial unique index")

	_, err = db.ExecContext(ctx, insert, "a3", 3, 4)
	assert.NoError(t, err, "closed sessions are not constrained")

	_, err = db.ExecContext(ctx, insert, "a4", 10, 5)
	assert.Error(t, err, "check-out before check-in violates the CHECK constraint")
}

func TestWorker_RollsBackOnError(t *testing.T) {
	db := openTestDB(t)
	w := NewWorker(db)
	t.Cleanup(w.Close)
	ctx := context.Background()

	boom := errors.New("boom")
	err := w.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO employees(id, employee_id, name, created_at_ns, updated_at_ns) VALUES ('u1', 'E1', 'Ana', 0, 0)`); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM employees").Scan(&n))
	assert.Zero(t, n)
}

func TestParseVersion(t *testing.T) {
	v, err := parseVersion("0012_add_index.sql")
	require.NoError(t, err)
	assert.Equal(t, 12, v)

	_, err = parseVersion("init.sql")
	assert.Error(t, err)
}
