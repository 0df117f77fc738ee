package employee

import "context"

// Filter narrows List. Nil fields match all.
type Filter struct {
	Department *string
	Role       *Role
}

// EmployeeRepository is the read side of the employee directory used to
// enrich and scope attendance reports.
type EmployeeRepository interface {
	GetByEmployeeID(ctx context.Context, employeeID string) (Employee, error)
	// ListActive returns active employees ordered by employee id.
	ListActive(ctx context.Context, filter Filter) ([]Employee, error)
	Create(ctx context.Context, e Employee) (Employee, error)
}
