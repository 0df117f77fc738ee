package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/report"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/calendar"
	attendancesvc "github.com/cmlabs-hris/attendance-engine/internal/service/attendance"
	reportsvc "github.com/cmlabs-hris/attendance-engine/internal/service/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmployeeRepository_ClosedDatabase(t *testing.T) {
	s := newStores(t)
	require.NoError(t, s.conn.Close())
	ctx := context.Background()

	_, err := s.employees.GetByEmployeeID(ctx, "E1")
	assert.ErrorIs(t, err, attendance.ErrStoreUnavailable)
	assert.NotErrorIs(t, err, employee.ErrEmployeeNotFound)

	role := employee.RoleEmployee
	_, err = s.employees.ListActive(ctx, employee.Filter{Role: &role})
	assert.ErrorIs(t, err, attendance.ErrStoreUnavailable)
}

func TestServices_ClosedDatabaseReportsStoreUnavailable(t *testing.T) {
	s := newStores(t)
	cal := calendar.New(time.UTC)
	policy := attendancesvc.DefaultPolicy()
	now := time.Date(2025, 3, 4, 8, 30, 0, 0, time.UTC)

	checkIns := attendancesvc.NewAttendanceService(s.attendance, s.employees, cal, policy,
		attendancesvc.WithClock(func() time.Time { return now }))
	reports := reportsvc.NewReportService(s.attendance, s.employees, cal, policy)

	require.NoError(t, s.conn.Close())
	ctx := context.Background()
	today := calendar.NewDateKey(2025, time.March, 4)

	_, err := checkIns.CheckIn(ctx, "E1", now)
	assert.ErrorIs(t, err, attendance.ErrStoreUnavailable)

	_, _, err = checkIns.EmployeeAttendance(ctx, "E1", calendar.DateRange{Start: today, End: today})
	assert.ErrorIs(t, err, attendance.ErrStoreUnavailable)

	_, err = reports.TeamSummary(ctx, report.TeamSummaryRequest{}, today)
	require.ErrorIs(t, err, attendance.ErrStoreUnavailable)
	assert.Contains(t, err.Error(), "failed to load roster")

	_, err = reports.TodaySnapshot(ctx, nil, today)
	assert.ErrorIs(t, err, attendance.ErrStoreUnavailable)
}
