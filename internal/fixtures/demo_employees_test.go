package fixtures

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoEmployees_AreValid(t *testing.T) {
	seen := map[string]bool{}
	roles := map[employee.Role]int{}
	for _, e := range DemoEmployees() {
		req := employee.CreateEmployeeRequest{
			EmployeeID: e.EmployeeID,
			Name:       e.Name,
			Email:      e.Email,
			Role:       string(e.Role),
		}
		assert.NoError(t, req.Validate(), e.EmployeeID)
		assert.False(t, seen[e.EmployeeID], "duplicate %s", e.EmployeeID)
		seen[e.EmployeeID] = true
		roles[e.Role]++
	}
	assert.Equal(t, 1, roles[employee.RoleAdmin])
	assert.Equal(t, 1, roles[employee.RoleManager])
	assert.Equal(t, 5, roles[employee.RoleEmployee])
}

func TestSeed_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	directory := memory.NewEmployeeDirectory()

	n, err := Seed(ctx, directory, DemoEmployees())
	require.NoError(t, err)
	assert.Equal(t, len(DemoEmployees()), n)

	n, err = Seed(ctx, directory, DemoEmployees())
	require.NoError(t, err)
	assert.Zero(t, n)
}
