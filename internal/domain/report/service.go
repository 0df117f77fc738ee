package report

import (
	"context"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/calendar"
)

// ReportService computes attendance rollups. Every method takes the reference
// instant explicitly; none of them reads a clock.
type ReportService interface {
	// TodayStatus returns the employee's day status for the day of now.
	TodayStatus(ctx context.Context, employeeID string, now time.Time) (TodayStatusResponse, error)

	// DailyStatus returns the employee's status on date.
	DailyStatus(ctx context.Context, employeeID string, date calendar.DateKey) (DayStatus, error)

	// RollingWindow returns exactly n day statuses ending at end.
	RollingWindow(ctx context.Context, employeeID string, end calendar.DateKey, n int) ([]DayStatus, error)

	// MonthlySummary summarizes one employee's month up to today.
	MonthlySummary(ctx context.Context, employeeID string, req MonthlySummaryRequest, today calendar.DateKey) (MonthlySummary, error)

	// MySummary returns lifetime and current month totals plus the last 7 days.
	MySummary(ctx context.Context, employeeID string, today calendar.DateKey) (MySummary, error)

	// TeamSummary summarizes the roster over a range.
	TeamSummary(ctx context.Context, req TeamSummaryRequest, today calendar.DateKey) (TeamSummary, error)

	// TodaySnapshot partitions the roster into present, completed and absent.
	TodaySnapshot(ctx context.Context, department *string, today calendar.DateKey) (TodaySnapshot, error)

	// WeeklyTrend returns per-day present/absent/late counts for n days ending at end.
	WeeklyTrend(ctx context.Context, end calendar.DateKey, n int) ([]TrendDay, error)

	// DepartmentStats returns per-department counts for one day.
	DepartmentStats(ctx context.Context, date calendar.DateKey) (map[string]DepartmentStat, error)

	// Export renders the records of a range as a spreadsheet.
	Export(ctx context.Context, req ExportRequest) (ExportFile, error)
}
