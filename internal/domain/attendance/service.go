package attendance

import (
	"context"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/calendar"
)

// AttendanceService defines the check-in/check-out state machine and record queries
type AttendanceService interface {
	// CheckIn opens a session for employeeID at now. The returned record carries
	// a provisional present/late status until check-out resolves it.
	CheckIn(ctx context.Context, employeeID string, now time.Time) (Record, error)

	// CheckOut closes the employee's open session, whatever day it started on.
	CheckOut(ctx context.Context, employeeID string, now time.Time) (Record, error)

	// OpenSession returns the employee's open session or nil.
	OpenSession(ctx context.Context, employeeID string) (*Record, error)

	// History returns every record of the employee, newest first.
	History(ctx context.Context, employeeID string) ([]Record, error)

	// ListAttendance returns enriched records for managers.
	ListAttendance(ctx context.Context, r calendar.DateRange, filter RecordFilter) ([]Record, error)

	// EmployeeAttendance returns the directory entry and records in r of one employee.
	EmployeeAttendance(ctx context.Context, employeeID string, r calendar.DateRange) (employee.Employee, []Record, error)
}
