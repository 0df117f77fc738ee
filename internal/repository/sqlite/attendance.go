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
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/calendar"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
)

type AttendanceStore struct {
	db     *sql.DB
	writer *database.Worker
	now    func() time.Time
}

func NewAttendanceStore(db *sql.DB, writer *database.Worker) *AttendanceStore {
	return &AttendanceStore{db: db, writer: writer, now: time.Now}
}

var _ attendance.Store = (*AttendanceStore)(nil)

const attendanceColumns = `
  a.id, a.employee_id, a.date, a.check_in_time_ns, a.check_out_time_ns,
  a.status, a.total_hours, a.created_at_ns, a.updated_at_ns`

type scanner interface {
	Scan(dest ...any) error
}

func scanAttendance(row scanner, extra ...any) (attendance.Record, error) {
	var (
		rec                  attendance.Record
		date                 string
		checkIn              int64
		checkOut             sql.NullInt64
		createdAt, updatedAt int64
	)
	dest := append([]any{
		&rec.ID, &rec.EmployeeID, &date, &checkIn, &checkOut,
		&rec.Status, &rec.TotalHours, &createdAt, &updatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return attendance.Record{}, err
	}

	d, err := calendar.ParseDateKey(date)
	if err != nil {
		return attendance.Record{}, err
	}
	rec.Date = d
	rec.CheckInTime = fromNanos(checkIn)
	rec.CheckOutTime = timePtr(checkOut)
	rec.CreatedAt = fromNanos(createdAt)
	rec.UpdatedAt = fromNanos(updatedAt)
	return rec, nil
}

func collectAttendance(rows *sql.Rows, enriched bool) ([]attendance.Record, error) {
	defer rows.Close()

	out := []attendance.Record{}
	for rows.Next() {
		var (
			rec        attendance.Record
			err        error
			name, dept sql.NullString
		)
		if enriched {
			rec, err = scanAttendance(rows, &name, &dept)
			rec.EmployeeName, rec.Department = stringPtr(name), stringPtr(dept)
		} else {
			rec, err = scanAttendance(rows)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func findOpen(ctx context.Context, q interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}, employeeID string) (*attendance.Record, error) {
	rec, err := scanAttendance(q.QueryRowContext(ctx, `
SELECT `+attendanceColumns+`
FROM attendances a
WHERE a.employee_id = ? AND a.check_out_time_ns IS NULL
LIMIT 1;`, employeeID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *AttendanceStore) FindOpenSession(ctx context.Context, employeeID string) (*attendance.Record, error) {
	rec, err := findOpen(ctx, s.db, employeeID)
	if err != nil {
		return nil, attendance.Unavailable("find open session", err)
	}
	return rec, nil
}

// InsertIfNoOpenSession inserts through the partial unique index and, when
// the insert is skipped, reads the blocking session in the same transaction.
func (s *AttendanceStore) InsertIfNoOpenSession(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	if record.ID == "" {
		id, err := newID()
		if err != nil {
			return attendance.Record{}, fmt.Errorf("failed to generate attendance id: %w", err)
		}
		record.ID = id
	}
	now := s.now().UTC()
	record.CheckOutTime = nil
	record.TotalHours = 0
	record.CreatedAt, record.UpdatedAt = now, now

	var dup *attendance.DuplicateSessionError
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO attendances(
  id, employee_id, date, check_in_time_ns, check_out_time_ns,
  status, total_hours, created_at_ns, updated_at_ns
) VALUES (?, ?, ?, ?, NULL, ?, 0, ?, ?)
ON CONFLICT (employee_id) WHERE check_out_time_ns IS NULL DO NOTHING;`,
			record.ID, record.EmployeeID, record.Date.String(), toNanos(record.CheckInTime),
			string(record.Status), toNanos(now), toNanos(now),
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 1 {
			return nil
		}

		open, err := findOpen(ctx, tx, record.EmployeeID)
		if err != nil {
			return err
		}
		if open == nil {
			return errors.New("insert skipped without an open session")
		}
		dup = &attendance.DuplicateSessionError{OpenRecordID: open.ID, CheckInTime: open.CheckInTime}
		return dup
	})

	switch {
	case err == nil:
		return record, nil
	case dup != nil && errors.Is(err, attendance.ErrDuplicateSession):
		return attendance.Record{}, dup
	case isForeignKeyViolation(err):
		return attendance.Record{}, employee.ErrEmployeeNotFound
	default:
		return attendance.Record{}, attendance.Unavailable("insert attendance", err)
	}
}

// UpdateCheckOut closes recordID only while check_out_time_ns is still NULL.
func (s *AttendanceStore) UpdateCheckOut(ctx context.Context, recordID string, update attendance.CheckOutUpdate) (attendance.Record, error) {
	now := s.now().UTC()

	var (
		closed  attendance.Record
		outcome error
	)
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE attendances
SET check_out_time_ns = ?, total_hours = ?, status = ?, updated_at_ns = ?
WHERE id = ? AND check_out_time_ns IS NULL;`,
			toNanos(update.CheckOutTime), update.TotalHours, string(update.Status), toNanos(now), recordID,
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}

		if n == 0 {
			var out sql.NullInt64
			err := tx.QueryRowContext(ctx, `SELECT check_out_time_ns FROM attendances WHERE id = ?;`, recordID).Scan(&out)
			switch {
			case errors.Is(err, sql.ErrNoRows):
				outcome = attendance.ErrNotFound
			case err != nil:
				return err
			default:
				outcome = attendance.ErrAlreadyClosed
			}
			return nil
		}

		closed, err = scanAttendance(tx.QueryRowContext(ctx, `
SELECT `+attendanceColumns+` FROM attendances a WHERE a.id = ?;`, recordID))
		return err
	})
	if err != nil {
		return attendance.Record{}, attendance.Unavailable("update check-out", err)
	}
	if outcome != nil {
		return attendance.Record{}, outcome
	}
	return closed, nil
}

func (s *AttendanceStore) FindByEmployeeAndRange(ctx context.Context, employeeID string, r calendar.DateRange) ([]attendance.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT `+attendanceColumns+`
FROM attendances a
WHERE a.employee_id = ? AND a.date >= ? AND a.date <= ?
ORDER BY a.check_in_time_ns ASC;`, employeeID, r.Start.String(), r.End.String())
	if err != nil {
		return nil, attendance.Unavailable("find by employee and range", err)
	}
	records, err := collectAttendance(rows, false)
	if err != nil {
		return nil, attendance.Unavailable("find by employee and range", err)
	}
	return records, nil
}

func (s *AttendanceStore) FindByDateRange(ctx context.Context, r calendar.DateRange, filter attendance.RecordFilter) ([]attendance.Record, error) {
	conds := []string{"a.date >= ?", "a.date <= ?"}
	args := []any{r.Start.String(), r.End.String()}

	if filter.EmployeeID != nil {
		conds = append(conds, "a.employee_id = ?")
		args = append(args, *filter.EmployeeID)
	}
	if filter.Department != nil {
		conds = append(conds, "e.department = ?")
		args = append(args, *filter.Department)
	}
	if filter.Status != nil {
		conds = append(conds, "a.status = ?")
		args = append(args, string(*filter.Status))
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT `+attendanceColumns+`, e.name, e.department
FROM attendances a
LEFT JOIN employees e ON e.employee_id = a.employee_id
WHERE `+strings.Join(conds, " AND ")+`
ORDER BY a.date ASC, a.check_in_time_ns ASC;`, args...)
	if err != nil {
		return nil, attendance.Unavailable("find by date range", err)
	}
	records, err := collectAttendance(rows, true)
	if err != nil {
		return nil, attendance.Unavailable("find by date range", err)
	}
	return records, nil
}

func (s *AttendanceStore) FindByEmployee(ctx context.Context, employeeID string) ([]attendance.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT `+attendanceColumns+`
FROM attendances a
WHERE a.employee_id = ?
ORDER BY a.check_in_time_ns DESC;`, employeeID)
	if err != nil {
		return nil, attendance.Unavailable("find by employee", err)
	}
	records, err := collectAttendance(rows, false)
	if err != nil {
		return nil, attendance.Unavailable("find by employee", err)
	}
	return records, nil
}

func (s *AttendanceStore) FindStaleOpenSessions(ctx context.Context, openedBefore time.Time) ([]attendance.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT `+attendanceColumns+`
FROM attendances a
WHERE a.check_out_time_ns IS NULL AND a.check_in_time_ns < ?
ORDER BY a.check_in_time_ns ASC;`, toNanos(openedBefore))
	if err != nil {
		return nil, attendance.Unavailable("find stale open sessions", err)
	}
	records, err := collectAttendance(rows, false)
	if err != nil {
		return nil, attendance.Unavailable("find stale open sessions", err)
	}
	return records, nil
}
