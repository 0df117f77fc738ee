package auth

import "github.com/cmlabs-hris/attendance-engine/internal/domain/employee"

// Token types carried in the "type" claim.
const (
	TokenTypeAccess = "access"
	TokenTypeSSE    = "sse"
)

// Identity is the caller as asserted by a verified token.
type Identity struct {
	EmployeeID string
	Role       employee.Role
}

// IdentityFromClaims reads employee_id and role. The role defaults to
// employee when absent.
func IdentityFromClaims(claims map[string]interface{}) (Identity, error) {
	employeeID, ok := claims["employee_id"].(string)
	if !ok || employeeID == "" {
		return Identity{}, ErrMissingIdentity
	}

	role := employee.RoleEmployee
	if s, ok := claims["role"].(string); ok && s != "" {
		role = employee.Role(s)
	}
	if !role.IsValid() {
		return Identity{}, ErrInvalidToken
	}

	return Identity{EmployeeID: employeeID, Role: role}, nil
}
