package employee

import (
	"strings"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

type CreateEmployeeRequest struct {
	EmployeeID string  `json:"employee_id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Department *string `json:"department,omitempty"`
	Position   *string `json:"position,omitempty"`
	Role       string  `json:"role"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidEmployeeID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required and may only contain letters, digits, '.', '_' or '-'",
		})
	}

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}

	if !validator.IsValidEmail(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email must be a valid email address",
		})
	}

	if r.Role == "" {
		r.Role = string(RoleEmployee)
	}
	if !Role(strings.ToLower(r.Role)).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: ErrInvalidRole.Error(),
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func (r CreateEmployeeRequest) ToEmployee() Employee {
	return Employee{
		EmployeeID: r.EmployeeID,
		Name:       strings.TrimSpace(r.Name),
		Email:      strings.ToLower(r.Email),
		Department: r.Department,
		Position:   r.Position,
		Role:       Role(strings.ToLower(r.Role)),
		IsActive:   true,
	}
}

type EmployeeResponse struct {
	EmployeeID string  `json:"employee_id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Department *string `json:"department,omitempty"`
	Position   *string `json:"position,omitempty"`
	Role       string  `json:"role"`
	IsActive   bool    `json:"is_active"`
}

func NewEmployeeResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		EmployeeID: e.EmployeeID,
		Name:       e.Name,
		Email:      e.Email,
		Department: e.Department,
		Position:   e.Position,
		Role:       string(e.Role),
		IsActive:   e.IsActive,
	}
}

// ListEmployeesFilter is the directory query for managers.
type ListEmployeesFilter struct {
	Department *string `json:"department,omitempty"`
	Role       *string `json:"role,omitempty"`
}

func (f *ListEmployeesFilter) Validate() error {
	if f.Role != nil && !Role(strings.ToLower(*f.Role)).IsValid() {
		return validator.ValidationErrors{{
			Field:   "role",
			Message: ErrInvalidRole.Error(),
		}}
	}
	return nil
}

func (f ListEmployeesFilter) ToFilter() Filter {
	out := Filter{Department: f.Department}
	if f.Role != nil {
		role := Role(strings.ToLower(*f.Role))
		out.Role = &role
	}
	return out
}
