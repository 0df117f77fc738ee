package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `id, employee_id, name, email, department, position, role, is_active, created_at, updated_at`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var e employee.Employee
	err := row.Scan(
		&e.ID, &e.EmployeeID, &e.Name, &e.Email, &e.Department, &e.Position,
		&e.Role, &e.IsActive, &e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

// GetByEmployeeID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByEmployeeID(ctx context.Context, employeeID string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE employee_id = $1`

	e, err := scanEmployee(q.QueryRow(ctx, query, employeeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, attendance.Unavailable("get employee "+employeeID, err)
	}
	return e, nil
}

// ListActive implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) ListActive(ctx context.Context, filter employee.Filter) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "WHERE is_active = TRUE"
	args := []any{}
	argIdx := 1

	if filter.Department != nil {
		baseWhere += fmt.Sprintf(" AND department = $%d", argIdx)
		args = append(args, *filter.Department)
		argIdx++
	}
	if filter.Role != nil {
		baseWhere += fmt.Sprintf(" AND role = $%d", argIdx)
		args = append(args, *filter.Role)
	}

	query := fmt.Sprintf(`SELECT %s FROM employees %s ORDER BY employee_id ASC`, employeeColumns, baseWhere)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, attendance.Unavailable("list employees", err)
	}
	defer rows.Close()

	employees := []employee.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, attendance.Unavailable("scan employee", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, attendance.Unavailable("list employees", err)
	}
	return employees, nil
}

// Create implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) Create(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	if e.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return employee.Employee{}, fmt.Errorf("failed to generate employee id: %w", err)
		}
		e.ID = id.String()
	}

	query := `
		INSERT INTO employees (id, employee_id, name, email, department, position, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + employeeColumns

	created, err := scanEmployee(q.QueryRow(ctx, query,
		e.ID, e.EmployeeID, e.Name, e.Email, e.Department, e.Position, e.Role, e.IsActive,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return employee.Employee{}, employee.ErrEmployeeIDExists
		}
		return employee.Employee{}, attendance.Unavailable("create employee", err)
	}
	return created, nil
}

// SeedEmployees creates every employee not yet registered, in one transaction.
func SeedEmployees(ctx context.Context, db *database.DB, employees []employee.Employee) (int, error) {
	repo := NewEmployeeRepository(db)
	created := 0

	err := WithTransaction(ctx, db, func(txCtx context.Context) error {
		for _, e := range employees {
			if _, err := repo.GetByEmployeeID(txCtx, e.EmployeeID); err == nil {
				continue
			} else if !errors.Is(err, employee.ErrEmployeeNotFound) {
				return err
			}
			if _, err := repo.Create(txCtx, e); err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}
