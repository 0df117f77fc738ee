package auth

import (
	"testing"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/stretchr/testify/assert"
)

func TestIdentityFromClaims(t *testing.T) {
	tests := []struct {
		name    string
		claims  map[string]interface{}
		want    Identity
		wantErr error
	}{
		{"employee", map[string]interface{}{"employee_id": "E1", "role": "employee"}, Identity{"E1", employee.RoleEmployee}, nil},
		{"role defaults to employee", map[string]interface{}{"employee_id": "E1"}, Identity{"E1", employee.RoleEmployee}, nil},
		{"manager", map[string]interface{}{"employee_id": "M1", "role": "manager"}, Identity{"M1", employee.RoleManager}, nil},
		{"missing employee id", map[string]interface{}{"role": "manager"}, Identity{}, ErrMissingIdentity},
		{"unknown role", map[string]interface{}{"employee_id": "E1", "role": "owner"}, Identity{}, ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IdentityFromClaims(tt.claims)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
