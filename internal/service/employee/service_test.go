package employee

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestEmployeeService_Create(t *testing.T) {
	ctx := context.Background()
	svc := NewEmployeeService(memory.NewEmployeeDirectory())

	got, err := svc.Create(ctx, employee.CreateEmployeeRequest{
		EmployeeID: "E1",
		Name:       "  Ana  ",
		Email:      "Ana@Example.com",
		Department: strPtr("Engineering"),
		Role:       "Manager",
	})
	require.NoError(t, err)

	assert.Equal(t, "Ana", got.Name)
	assert.Equal(t, "ana@example.com", got.Email)
	assert.Equal(t, "manager", got.Role)
	assert.True(t, got.IsActive)

	_, err = svc.Create(ctx, employee.CreateEmployeeRequest{EmployeeID: "E1", Name: "Other", Email: "o@example.com"})
	assert.ErrorIs(t, err, employee.ErrEmployeeIDExists)
}

func TestEmployeeService_CreateValidates(t *testing.T) {
	svc := NewEmployeeService(memory.NewEmployeeDirectory())

	_, err := svc.Create(context.Background(), employee.CreateEmployeeRequest{EmployeeID: "bad id", Role: "owner"})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := verrs.ToMap()
	assert.Contains(t, fields, "employee_id")
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "role")
}

func TestEmployeeService_GetAndList(t *testing.T) {
	ctx := context.Background()
	svc := NewEmployeeService(memory.NewEmployeeDirectory(
		employee.Employee{EmployeeID: "E2", Name: "Budi", Department: strPtr("Finance"), Role: employee.RoleEmployee, IsActive: true},
		employee.Employee{EmployeeID: "E1", Name: "Ana", Department: strPtr("Engineering"), Role: employee.RoleEmployee, IsActive: true},
		employee.Employee{EmployeeID: "M1", Name: "Maya", Department: strPtr("Engineering"), Role: employee.RoleManager, IsActive: true},
		employee.Employee{EmployeeID: "X1", Name: "Gone", Role: employee.RoleEmployee, IsActive: false},
	))

	_, err := svc.Get(ctx, "NOPE")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	all, err := svc.List(ctx, employee.ListEmployeesFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "E1", all[0].EmployeeID)

	engineers, err := svc.List(ctx, employee.ListEmployeesFilter{Department: strPtr("Engineering"), Role: strPtr("EMPLOYEE")})
	require.NoError(t, err)
	require.Len(t, engineers, 1)
	assert.Equal(t, "E1", engineers[0].EmployeeID)

	_, err = svc.List(ctx, employee.ListEmployeesFilter{Role: strPtr("owner")})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}
