package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/calendar"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	openSessionIndex = "attendances_one_open_session"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.Store {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `
	a.id, a.employee_id, a.date, a.check_in_time, a.check_out_time,
	a.status, a.total_hours, a.created_at, a.updated_at`

func scanAttendance(row pgx.Row, extra ...any) (attendance.Record, error) {
	var (
		rec  attendance.Record
		date time.Time
	)
	dest := append([]any{
		&rec.ID, &rec.EmployeeID, &date, &rec.CheckInTime, &rec.CheckOutTime,
		&rec.Status, &rec.TotalHours, &rec.CreatedAt, &rec.UpdatedAt,
	}, extra...)

	if err := row.Scan(dest...); err != nil {
		return attendance.Record{}, err
	}
	rec.Date = calendar.FromTime(date)
	return rec, nil
}

func collectAttendance(rows pgx.Rows, enriched bool) ([]attendance.Record, error) {
	defer rows.Close()

	records := []attendance.Record{}
	for rows.Next() {
		var (
			rec        attendance.Record
			err        error
			name, dept *string
		)
		if enriched {
			rec, err = scanAttendance(rows, &name, &dept)
			rec.EmployeeName, rec.Department = name, dept
		} else {
			rec, err = scanAttendance(rows)
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// FindOpenSession implements attendance.Store.
func (a *attendanceRepository) FindOpenSession(ctx context.Context, employeeID string) (*attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.employee_id = $1
		  AND a.check_out_time IS NULL
		LIMIT 1
	`

	rec, err := scanAttendance(q.QueryRow(ctx, query, employeeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, attendance.Unavailable("find open session", err)
	}
	return &rec, nil
}

// InsertIfNoOpenSession implements attendance.Store. The partial unique index
// on open sessions decides the race; losers get the winner's session back.
func (a *attendanceRepository) InsertIfNoOpenSession(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	if record.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return attendance.Record{}, fmt.Errorf("failed to generate attendance id: %w", err)
		}
		record.ID = id.String()
	}

	query := `
		INSERT INTO attendances (id, employee_id, date, check_in_time, status, total_hours)
		VALUES ($1, $2, $3, $4, $5, 0)
		ON CONFLICT (employee_id) WHERE check_out_time IS NULL DO NOTHING
		RETURNING created_at, updated_at
	`

	// A conflicting session can close between our insert and the lookup;
	// the second attempt then succeeds.
	for attempt := 0; attempt < 2; attempt++ {
		err := q.QueryRow(ctx, query,
			record.ID,
			record.EmployeeID,
			record.Date.Time(),
			record.CheckInTime,
			record.Status,
		).Scan(&record.CreatedAt, &record.UpdatedAt)

		if err == nil {
			record.CheckOutTime = nil
			record.TotalHours = 0
			return record, nil
		}

		if !isOpenSessionConflict(err) {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
				return attendance.Record{}, employee.ErrEmployeeNotFound
			}
			return attendance.Record{}, attendance.Unavailable("insert attendance", err)
		}

		open, err := a.FindOpenSession(ctx, record.EmployeeID)
		if err != nil {
			return attendance.Record{}, err
		}
		if open != nil {
			return attendance.Record{}, &attendance.DuplicateSessionError{
				OpenRecordID: open.ID,
				CheckInTime:  open.CheckInTime,
			}
		}
	}

	return attendance.Record{}, attendance.Unavailable("insert attendance", errors.New("open session kept changing"))
}

// isOpenSessionConflict reports whether an insert lost to an existing open
// session. ON CONFLICT DO NOTHING yields no row; a plain unique violation on
// the open-session index means the same.
func isOpenSessionConflict(err error) bool {
	if errors.Is(err, pgx.ErrNoRows) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == openSessionIndex
}

// UpdateCheckOut implements attendance.Store. The WHERE clause on
// check_out_time makes the close a compare-and-set.
func (a *attendanceRepository) UpdateCheckOut(ctx context.Context, recordID string, update attendance.CheckOutUpdate) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	if !validator.IsValidUUID(recordID) {
		return attendance.Record{}, attendance.ErrNotFound
	}

	query := `
		UPDATE attendances a
		SET check_out_time = $2, total_hours = $3, status = $4, updated_at = NOW()
		WHERE a.id = $1 AND a.check_out_time IS NULL
		RETURNING ` + attendanceColumns

	rec, err := scanAttendance(q.QueryRow(ctx, query, recordID, update.CheckOutTime, update.TotalHours, update.Status))
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return attendance.Record{}, attendance.Unavailable("update check-out", err)
	}

	var closed bool
	err = q.QueryRow(ctx, `SELECT check_out_time IS NOT NULL FROM attendances WHERE id = $1`, recordID).Scan(&closed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrNotFound
		}
		return attendance.Record{}, attendance.Unavailable("update check-out", err)
	}
	if closed {
		return attendance.Record{}, attendance.ErrAlreadyClosed
	}
	return attendance.Record{}, attendance.Unavailable("update check-out", errors.New("record still open after update"))
}

// FindByEmployeeAndRange implements attendance.Store.
func (a *attendanceRepository) FindByEmployeeAndRange(ctx context.Context, employeeID string, r calendar.DateRange) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.employee_id = $1
		  AND a.date >= $2
		  AND a.date <= $3
		ORDER BY a.check_in_time ASC
	`

	rows, err := q.Query(ctx, query, employeeID, r.Start.Time(), r.End.Time())
	if err != nil {
		return nil, attendance.Unavailable("find by employee and range", err)
	}
	records, err := collectAttendance(rows, false)
	if err != nil {
		return nil, attendance.Unavailable("find by employee and range", err)
	}
	return records, nil
}

// FindByDateRange implements attendance.Store.
func (a *attendanceRepository) FindByDateRange(ctx context.Context, r calendar.DateRange, filter attendance.RecordFilter) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	baseWhere := "WHERE a.date >= $1 AND a.date <= $2"
	args := []any{r.Start.Time(), r.End.Time()}
	argIdx := 3

	if filter.EmployeeID != nil {
		baseWhere += fmt.Sprintf(" AND a.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Department != nil {
		baseWhere += fmt.Sprintf(" AND e.department = $%d", argIdx)
		args = append(args, *filter.Department)
		argIdx++
	}
	if filter.Status != nil {
		baseWhere += fmt.Sprintf(" AND a.status = $%d", argIdx)
		args = append(args, *filter.Status)
	}

	query := fmt.Sprintf(`
		SELECT %s, e.name, e.department
		FROM attendances a
		LEFT JOIN employees e ON e.employee_id = a.employee_id
		%s
		ORDER BY a.date ASC, a.check_in_time ASC
	`, attendanceColumns, baseWhere)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, attendance.Unavailable("find by date range", err)
	}
	records, err := collectAttendance(rows, true)
	if err != nil {
		return nil, attendance.Unavailable("find by date range", err)
	}
	return records, nil
}

// FindByEmployee implements attendance.Store.
func (a *attendanceRepository) FindByEmployee(ctx context.Context, employeeID string) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.employee_id = $1
		ORDER BY a.check_in_time DESC
	`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, attendance.Unavailable("find by employee", err)
	}
	records, err := collectAttendance(rows, false)
	if err != nil {
		return nil, attendance.Unavailable("find by employee", err)
	}
	return records, nil
}

// FindStaleOpenSessions implements attendance.Store.
func (a *attendanceRepository) FindStaleOpenSessions(ctx context.Context, openedBefore time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.check_out_time IS NULL
		  AND a.check_in_time < $1
		ORDER BY a.check_in_time ASC
	`

	rows, err := q.Query(ctx, query, openedBefore)
	if err != nil {
		return nil, attendance.Unavailable("find stale open sessions", err)
	}
	records, err := collectAttendance(rows, false)
	if err != nil {
		return nil, attendance.Unavailable("find stale open sessions", err)
	}
	return records, nil
}
