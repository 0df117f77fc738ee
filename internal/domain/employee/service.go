package employee

import "context"

// EmployeeService manages the directory that scopes attendance reports.
type EmployeeService interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	Get(ctx context.Context, employeeID string) (EmployeeResponse, error)
	List(ctx context.Context, filter ListEmployeesFilter) ([]EmployeeResponse, error)
}
