package employee

import "time"

type Employee struct {
	ID         string
	EmployeeID string
	Name       string
	Email      string
	Department *string
	Position   *string
	Role       Role
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleEmployee, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// CanManage reports whether the role may read other employees' attendance.
func (r Role) CanManage() bool {
	return r == RoleManager || r == RoleAdmin
}

// DepartmentName returns the department or "" when unassigned.
func (e Employee) DepartmentName() string {
	if e.Department == nil {
		return ""
	}
	return *e.Department
}
