package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/google/uuid"
)

// EmployeeDirectory is an in-memory employee.EmployeeRepository.
type EmployeeDirectory struct {
	mu        sync.RWMutex
	employees map[string]employee.Employee
}

func NewEmployeeDirectory(seed ...employee.Employee) *EmployeeDirectory {
	d := &EmployeeDirectory{employees: make(map[string]employee.Employee)}
	for _, e := range seed {
		d.employees[e.EmployeeID] = e
	}
	return d
}

func (d *EmployeeDirectory) GetByEmployeeID(_ context.Context, employeeID string) (employee.Employee, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	e, ok := d.employees[employeeID]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (d *EmployeeDirectory) ListActive(_ context.Context, filter employee.Filter) ([]employee.Employee, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := []employee.Employee{}
	for _, e := range d.employees {
		if !e.IsActive {
			continue
		}
		if filter.Department != nil && e.DepartmentName() != *filter.Department {
			continue
		}
		if filter.Role != nil && e.Role != *filter.Role {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}

func (d *EmployeeDirectory) Create(_ context.Context, e employee.Employee) (employee.Employee, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.employees[e.EmployeeID]; exists {
		return employee.Employee{}, employee.ErrEmployeeIDExists
	}
	if e.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return employee.Employee{}, err
		}
		e.ID = id.String()
	}
	now := time.Now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now
	d.employees[e.EmployeeID] = e
	return e, nil
}

var _ employee.EmployeeRepository = (*EmployeeDirectory)(nil)
