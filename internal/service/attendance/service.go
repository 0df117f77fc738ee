package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/calendar"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/sse"
)

// Publisher receives check-in/check-out notifications. *sse.Hub implements it.
type Publisher interface {
	PublishToMany(topics []string, event sse.Event)
}

type AttendanceServiceImpl struct {
	store     attendance.Store
	employees employee.EmployeeRepository
	calendar  *calendar.Calendar
	policy    Policy
	skew      time.Duration
	clock     func() time.Time
	publisher Publisher
}

type Option func(*AttendanceServiceImpl)

// WithClock replaces time.Now as the reference for future-timestamp checks.
func WithClock(clock func() time.Time) Option {
	return func(a *AttendanceServiceImpl) { a.clock = clock }
}

// WithSkewTolerance sets how far in the future a supplied timestamp may be.
func WithSkewTolerance(d time.Duration) Option {
	return func(a *AttendanceServiceImpl) { a.skew = d }
}

func WithPublisher(p Publisher) Option {
	return func(a *AttendanceServiceImpl) { a.publisher = p }
}

// CheckIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckIn(ctx context.Context, employeeID string, now time.Time) (attendance.Record, error) {
	if err := a.checkTimestamp(now); err != nil {
		return attendance.Record{}, err
	}
	if err := a.requireActiveEmployee(ctx, employeeID); err != nil {
		return attendance.Record{}, err
	}

	record := attendance.Record{
		EmployeeID:  employeeID,
		Date:        a.calendar.DayKey(now),
		CheckInTime: now,
		Status:      a.policy.Provisional(now),
	}

	created, err := a.store.InsertIfNoOpenSession(ctx, record)
	if err != nil {
		var dup *attendance.DuplicateSessionError
		if errors.As(err, &dup) {
			slog.Warn("Check-in rejected, session already open",
				"employee_id", employeeID, "attendance_id", dup.OpenRecordID)
			return attendance.Record{}, err
		}
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	slog.Info("Checked in", "employee_id", employeeID, "attendance_id", created.ID,
		"date", created.Date.String(), "status", created.Status)
	a.publish(sse.EventCheckIn, created)

	return created, nil
}

// CheckOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckOut(ctx context.Context, employeeID string, now time.Time) (attendance.Record, error) {
	if err := a.checkTimestamp(now); err != nil {
		return attendance.Record{}, err
	}

	open, err := a.store.FindOpenSession(ctx, employeeID)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to find open session: %w", err)
	}
	if open == nil {
		return attendance.Record{}, attendance.ErrNoOpenSession
	}

	if now.Before(open.CheckInTime) {
		return attendance.Record{}, fmt.Errorf("%w: %s < %s",
			attendance.ErrCheckOutBeforeCheckIn, now.Format(time.RFC3339), open.CheckInTime.Format(time.RFC3339))
	}

	totalHours := HoursBetween(open.CheckInTime, now)
	update := attendance.CheckOutUpdate{
		CheckOutTime: now,
		TotalHours:   totalHours,
		Status:       a.policy.Classify(open.CheckInTime, totalHours),
	}

	closed, err := a.store.UpdateCheckOut(ctx, open.ID, update)
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyClosed) {
			slog.Warn("Check-out lost race, session already closed",
				"employee_id", employeeID, "attendance_id", open.ID)
			return attendance.Record{}, err
		}
		return attendance.Record{}, fmt.Errorf("failed to close attendance record: %w", err)
	}

	slog.Info("Checked out", "employee_id", employeeID, "attendance_id", closed.ID,
		"total_hours", closed.TotalHours, "status", closed.Status)
	a.publish(sse.EventCheckOut, closed)

	return closed, nil
}

// OpenSession implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) OpenSession(ctx context.Context, employeeID string) (*attendance.Record, error) {
	open, err := a.store.FindOpenSession(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to find open session: %w", err)
	}
	return open, nil
}

// History implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) History(ctx context.Context, employeeID string) ([]attendance.Record, error) {
	records, err := a.store.FindByEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance history: %w", err)
	}
	return records, nil
}

// ListAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListAttendance(ctx context.Context, r calendar.DateRange, filter attendance.RecordFilter) ([]attendance.Record, error) {
	if err := r.Validate(); err != nil {
		return nil, attendance.ErrInvalidRange
	}
	records, err := a.store.FindByDateRange(ctx, r, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	return records, nil
}

// EmployeeAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) EmployeeAttendance(ctx context.Context, employeeID string, r calendar.DateRange) (employee.Employee, []attendance.Record, error) {
	if err := r.Validate(); err != nil {
		return employee.Employee{}, nil, attendance.ErrInvalidRange
	}

	emp, err := a.employees.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		return employee.Employee{}, nil, err
	}

	records, err := a.store.FindByEmployeeAndRange(ctx, employeeID, r)
	if err != nil {
		return employee.Employee{}, nil, fmt.Errorf("failed to get employee attendance: %w", err)
	}
	name, dept := emp.Name, emp.Department
	for i := range records {
		records[i].EmployeeName = &name
		records[i].Department = dept
	}
	return emp, records, nil
}

// checkTimestamp rejects zero instants and instants too far in the future.
func (a *AttendanceServiceImpl) checkTimestamp(now time.Time) error {
	if now.IsZero() {
		return attendance.ErrMissingTimestamp
	}
	limit := a.clock().Add(a.skew)
	if now.After(limit) {
		return fmt.Errorf("%w: %s", attendance.ErrFutureTimestamp, now.Format(time.RFC3339))
	}
	return nil
}

func (a *AttendanceServiceImpl) requireActiveEmployee(ctx context.Context, employeeID string) error {
	emp, err := a.employees.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		return err
	}
	if !emp.IsActive {
		return employee.ErrEmployeeInactive
	}
	return nil
}

func (a *AttendanceServiceImpl) publish(eventType string, r attendance.Record) {
	if a.publisher == nil {
		return
	}
	a.publisher.PublishToMany(
		[]string{sse.TopicTeam, r.EmployeeID},
		sse.Event{Type: eventType, Data: attendance.NewAttendanceResponse(r, a.calendar.Location())},
	)
}

func NewAttendanceService(
	store attendance.Store,
	employees employee.EmployeeRepository,
	cal *calendar.Calendar,
	policy Policy,
	opts ...Option,
) attendance.AttendanceService {
	a := &AttendanceServiceImpl{
		store:     store,
		employees: employees,
		calendar:  cal,
		policy:    policy,
		skew:      2 * time.Minute,
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.policy.Location == nil {
		a.policy.Location = cal.Location()
	}
	return a
}
