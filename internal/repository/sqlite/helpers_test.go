package sqlite_test

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/sqlite"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

// openTestDB returns a migrated private in-memory database, closed when the
// test finishes.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	name := "test_" + strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, err := database.OpenSQLiteDSN(context.Background(), database.MemorySQLiteDSN(name))
	require.NoError(t, err)

	t.Cleanup(func() { conn.Close() })
	return conn
}

func newTestWriter(t *testing.T, conn *sql.DB) *database.Worker {
	t.Helper()

	w := database.NewWorker(conn)
	t.Cleanup(w.Close)
	return w
}

type stores struct {
	conn       *sql.DB
	attendance *sqlite.AttendanceStore
	employees  *sqlite.EmployeeRepository
}

func newStores(t *testing.T) stores {
	t.Helper()
	conn := openTestDB(t)
	w := newTestWriter(t, conn)

	s := stores{
		conn:       conn,
		attendance: sqlite.NewAttendanceStore(conn, w),
		employees:  sqlite.NewEmployeeRepository(conn, w),
	}
	for _, e := range []employee.Employee{
		{EmployeeID: "E1", Name: "Ana", Email: "ana@example.com", Department: strPtr("Engineering"), Role: employee.RoleEmployee, IsActive: true},
		{EmployeeID: "E2", Name: "Budi", Email: "budi@example.com", Department: strPtr("Finance"), Role: employee.RoleEmployee, IsActive: true},
		{EmployeeID: "E3", Name: "Citra", Email: "citra@example.com", Role: employee.RoleEmployee, IsActive: true},
		{EmployeeID: "GONE", Name: "Dewi", Email: "dewi@example.com", Role: employee.RoleEmployee, IsActive: false},
	} {
		_, err := s.employees.Create(context.Background(), e)
		require.NoError(t, err)
	}
	return s
}
