package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
)

type EmployeeRepository struct {
	db     *sql.DB
	writer *database.Worker
	now    func() time.Time
}

func NewEmployeeRepository(db *sql.DB, writer *database.Worker) *EmployeeRepository {
	return &EmployeeRepository{db: db, writer: writer, now: time.Now}
}

var _ employee.EmployeeRepository = (*EmployeeRepository)(nil)

const employeeColumns = `id, employee_id, name, email, department, position, role, is_active, created_at_ns, updated_at_ns`

func scanEmployee(row scanner) (employee.Employee, error) {
	var (
		e                    employee.Employee
		dept, pos            sql.NullString
		active               int
		createdAt, updatedAt int64
	)
	if err := row.Scan(&e.ID, &e.EmployeeID, &e.Name, &e.Email, &dept, &pos, &e.Role, &active, &createdAt, &updatedAt); err != nil {
		return employee.Employee{}, err
	}
	e.Department = stringPtr(dept)
	e.Position = stringPtr(pos)
	e.IsActive = active == 1
	e.CreatedAt = fromNanos(createdAt)
	e.UpdatedAt = fromNanos(updatedAt)
	return e, nil
}

func (r *EmployeeRepository) GetByEmployeeID(ctx context.Context, employeeID string) (employee.Employee, error) {
	e, err := scanEmployee(r.db.QueryRowContext(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE employee_id = ?;`, employeeID))
	if errors.Is(err, sql.ErrNoRows) {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	if err != nil {
		return employee.Employee{}, attendance.Unavailable("get employee "+employeeID, err)
	}
	return e, nil
}

func (r *EmployeeRepository) ListActive(ctx context.Context, filter employee.Filter) ([]employee.Employee, error) {
	conds := []string{"is_active = 1"}
	args := []any{}
	if filter.Department != nil {
		conds = append(conds, "department = ?")
		args = append(args, *filter.Department)
	}
	if filter.Role != nil {
		conds = append(conds, "role = ?")
		args = append(args, string(*filter.Role))
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE `+strings.Join(conds, " AND ")+` ORDER BY employee_id ASC;`,
		args...)
	if err != nil {
		return nil, attendance.Unavailable("list employees", err)
	}
	defer rows.Close()

	out := []employee.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, attendance.Unavailable("scan employee", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, attendance.Unavailable("list employees", err)
	}
	return out, nil
}

func (r *EmployeeRepository) Create(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	if e.ID == "" {
		id, err := newID()
		if err != nil {
			return employee.Employee{}, fmt.Errorf("failed to generate employee id: %w", err)
		}
		e.ID = id
	}
	now := r.now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now

	active := 0
	if e.IsActive {
		active = 1
	}

	err := r.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
INSERT INTO employees(id, employee_id, name, email, department, position, role, is_active, created_at_ns, updated_at_ns)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
			e.ID, e.EmployeeID, e.Name, e.Email, e.Department, e.Position, string(e.Role), active,
			toNanos(now), toNanos(now),
		)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return employee.Employee{}, employee.ErrEmployeeIDExists
		}
		return employee.Employee{}, attendance.Unavailable("create employee", err)
	}
	return e, nil
}
