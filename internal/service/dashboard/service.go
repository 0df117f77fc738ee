package dashboard

import (
	"context"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/dashboard"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/report"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/calendar"
	"golang.org/x/sync/errgroup"
)

const trendDays = 7

type DashboardServiceImpl struct {
	reports  report.ReportService
	calendar *calendar.Calendar
}

func NewDashboardService(reports report.ReportService, cal *calendar.Calendar) dashboard.DashboardService {
	return &DashboardServiceImpl{
		reports:  reports,
		calendar: cal,
	}
}

// EmployeeDashboard fans the three reads out in parallel.
func (s *DashboardServiceImpl) EmployeeDashboard(ctx context.Context, employeeID string, now time.Time) (*dashboard.EmployeeDashboardResponse, error) {
	today := s.calendar.DayKey(now)

	var (
		todayStatus report.TodayStatusResponse
		month       report.MonthlySummary
		recent      []report.DayStatus
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		todayStatus, err = s.reports.TodayStatus(gCtx, employeeID, now)
		return err
	})

	g.Go(func() error {
		var err error
		req := report.MonthlySummaryRequest{Month: int(today.Month), Year: today.Year}
		month, err = s.reports.MonthlySummary(gCtx, employeeID, req, today)
		return err
	})

	g.Go(func() error {
		var err error
		recent, err = s.reports.RollingWindow(gCtx, employeeID, today, trendDays)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &dashboard.EmployeeDashboardResponse{
		Today:        todayStatus,
		MonthSummary: month,
		Recent:       recent,
	}, nil
}

// ManagerDashboard fans the roster-wide reads out in parallel.
func (s *DashboardServiceImpl) ManagerDashboard(ctx context.Context, now time.Time) (*dashboard.ManagerDashboardResponse, error) {
	today := s.calendar.DayKey(now)

	var (
		snapshot report.TodaySnapshot
		trend    []report.TrendDay
		stats    map[string]report.DepartmentStat
	)

	g, gCtx := errgroup.WithContext(ctx)

	// 1. Today snapshot (present / completed / absent)
	g.Go(func() error {
		var err error
		snapshot, err = s.reports.TodaySnapshot(gCtx, nil, today)
		return err
	})

	// 2. Weekly trend
	g.Go(func() error {
		var err error
		trend, err = s.reports.WeeklyTrend(gCtx, today, trendDays)
		return err
	})

	// 3. Department stats
	g.Go(func() error {
		var err error
		stats, err = s.reports.DepartmentStats(gCtx, today)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &dashboard.ManagerDashboardResponse{
		Date:            today.String(),
		TotalEmployees:  snapshot.TotalEmployees,
		Today:           snapshot,
		WeeklyTrend:     trend,
		DepartmentStats: stats,
		AbsentEmployees: snapshot.AbsentEmployees,
	}, nil
}
