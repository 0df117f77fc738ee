package attendance

import (
	"context"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/calendar"
)

// Store is the persistence boundary for attendance records.
//
// Implementations must make InsertIfNoOpenSession and UpdateCheckOut atomic
// with respect to concurrent callers: at most one open session per employee,
// and a session closes exactly once. Collaborator failures are reported
// wrapped in ErrStoreUnavailable and are never retried here.
type Store interface {
	// FindOpenSession returns the employee's open session, or nil when none exists.
	FindOpenSession(ctx context.Context, employeeID string) (*Record, error)

	// InsertIfNoOpenSession persists record unless the employee already has an
	// open session, in which case it returns a *DuplicateSessionError.
	InsertIfNoOpenSession(ctx context.Context, record Record) (Record, error)

	// UpdateCheckOut closes recordID only if it is still open.
	// Returns ErrNotFound or ErrAlreadyClosed otherwise.
	UpdateCheckOut(ctx context.Context, recordID string, update CheckOutUpdate) (Record, error)

	// FindByEmployeeAndRange returns the employee's records whose date falls in r,
	// ordered by check-in time.
	FindByEmployeeAndRange(ctx context.Context, employeeID string, r calendar.DateRange) ([]Record, error)

	// FindByDateRange returns records in r matching filter, enriched with the
	// employee's name and department, ordered by date then check-in time.
	FindByDateRange(ctx context.Context, r calendar.DateRange, filter RecordFilter) ([]Record, error)

	// FindByEmployee returns every record of the employee, newest check-in first.
	FindByEmployee(ctx context.Context, employeeID string) ([]Record, error)

	// FindStaleOpenSessions returns open sessions that started before openedBefore.
	FindStaleOpenSessions(ctx context.Context, openedBefore time.Time) ([]Record, error)
}
