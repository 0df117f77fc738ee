package fixtures

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
)

func strPtr(s string) *string { return &s }

// ==========================================
// DEMO DIRECTORY
// ==========================================

// DemoEmployees is the directory seeded when SEED_DEMO is set: one admin,
// one manager and a handful of employees across departments, plus one
// employee without a department.
func DemoEmployees() []employee.Employee {
	return []employee.Employee{
		{EmployeeID: "ADM001", Name: "System Admin", Email: "admin@example.com", Position: strPtr("Administrator"), Role: employee.RoleAdmin, IsActive: true},
		{EmployeeID: "MGR001", Name: "Maya Putri", Email: "maya@example.com", Department: strPtr("Engineering"), Position: strPtr("Engineering Manager"), Role: employee.RoleManager, IsActive: true},
		{EmployeeID: "EMP001", Name: "Ana Wijaya", Email: "ana@example.com", Department: strPtr("Engineering"), Position: strPtr("Backend Engineer"), Role: employee.RoleEmployee, IsActive: true},
		{EmployeeID: "EMP002", Name: "Budi Santoso", Email: "budi@example.com", Department: strPtr("Engineering"), Position: strPtr("Frontend Engineer"), Role: employee.RoleEmployee, IsActive: true},
		{EmployeeID: "EMP003", Name: "Citra Lestari", Email: "citra@example.com", Department: strPtr("Finance"), Position: strPtr("Accountant"), Role: employee.RoleEmployee, IsActive: true},
		{EmployeeID: "EMP004", Name: "Dewi Anggraini", Email: "dewi@example.com", Department: strPtr("Human Resources"), Position: strPtr("HR Generalist"), Role: employee.RoleEmployee, IsActive: true},
		{EmployeeID: "EMP005", Name: "Eko Prasetyo", Email: "eko@example.com", Position: strPtr("Intern"), Role: employee.RoleEmployee, IsActive: true},
	}
}

// Seed creates the given employees, skipping ids that already exist, and
// returns how many were created.
func Seed(ctx context.Context, repo employee.EmployeeRepository, employees []employee.Employee) (int, error) {
	created := 0
	for _, e := range employees {
		if _, err := repo.Create(ctx, e); err != nil {
			if errors.Is(err, employee.ErrEmployeeIDExists) {
				continue
			}
			return created, fmt.Errorf("failed to seed employee %s: %w", e.EmployeeID, err)
		}
		created++
	}
	return created, nil
}
