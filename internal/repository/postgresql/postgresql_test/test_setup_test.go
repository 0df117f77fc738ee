package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/stretchr/testify/require"
)

// TestDatabaseSetup wraps a migrated test database.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and applies migrations. The
// test is skipped when the variable is unset.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolConfig{MaxConns: 60})
	require.NoError(t, err, "failed to connect to test database")
	require.NoError(t, database.MigratePostgres(ctx, db))

	setup := &TestDatabaseSetup{DB: db}
	require.NoError(t, setup.TruncateAllTables(ctx))
	t.Cleanup(setup.Close)
	return setup
}

// TruncateAllTables removes every row from the attendance tables.
func (s *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := s.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, table := range []string{"attendances", "employees"} {
		if _, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

func (s *TestDatabaseSetup) Close() {
	s.DB.Close()
}

func strPtr(s string) *string { return &s }

func testEmployees() []employee.Employee {
	return []employee.Employee{
		{EmployeeID: "E1", Name: "Ana", Email: "ana@example.com", Department: strPtr("Engineering"), Role: employee.RoleEmployee, IsActive: true},
		{EmployeeID: "E2", Name: "Budi", Email: "budi@example.com", Department: strPtr("Finance"), Role: employee.RoleEmployee, IsActive: true},
		{EmployeeID: "E3", Name: "Citra", Email: "citra@example.com", Role: employee.RoleEmployee, IsActive: true},
		{EmployeeID: "M1", Name: "Maya", Email: "maya@example.com", Department: strPtr("Engineering"), Role: employee.RoleManager, IsActive: true},
		{EmployeeID: "GONE", Name: "Dewi", Email: "dewi@example.com", Role: employee.RoleEmployee, IsActive: false},
	}
}
