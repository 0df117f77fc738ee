package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/report"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/calendar"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/export"
)

type ReportServiceImpl struct {
	store     attendance.Store
	employees employee.EmployeeRepository
	calendar  *calendar.Calendar
	builder   Builder
}

func NewReportService(
	store attendance.Store,
	employees employee.EmployeeRepository,
	cal *calendar.Calendar,
	classifier attendance.Classifier,
) report.ReportService {
	return &ReportServiceImpl{
		store:     store,
		employees: employees,
		calendar:  cal,
		builder:   NewBuilder(classifier, cal.Location()),
	}
}

// roster is the team reports run over: active employees with the employee role.
func (s *ReportServiceImpl) roster(ctx context.Context, department *string) ([]employee.Employee, error) {
	role := employee.RoleEmployee
	employees, err := s.employees.ListActive(ctx, employee.Filter{Department: department, Role: &role})
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	return employees, nil
}

func (s *ReportServiceImpl) recordsInRange(ctx context.Context, r calendar.DateRange, department *string) ([]attendance.Record, error) {
	records, err := s.store.FindByDateRange(ctx, r, attendance.RecordFilter{Department: department})
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance records: %w", err)
	}
	return records, nil
}

// TodayStatus implements report.ReportService.
func (s *ReportServiceImpl) TodayStatus(ctx context.Context, employeeID string, now time.Time) (report.TodayStatusResponse, error) {
	today := s.calendar.DayKey(now)

	records, err := s.store.FindByEmployeeAndRange(ctx, employeeID, calendar.DateRange{Start: today, End: today})
	if err != nil {
		return report.TodayStatusResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	open, err := s.store.FindOpenSession(ctx, employeeID)
	if err != nil {
		return report.TodayStatusResponse{}, fmt.Errorf("failed to find open session: %w", err)
	}

	resp := report.TodayStatusResponse{
		Today:      s.builder.DayStatus(employeeID, today, records),
		CanCheckIn: open == nil,
	}
	if open != nil {
		resp.CanCheckOut = true
		resp.OpenSession = &report.OpenSession{
			AttendanceID: open.ID,
			Date:         open.Date.String(),
			CheckInTime:  s.builder.format(open.CheckInTime),
		}
	}
	return resp, nil
}

// DailyStatus implements report.ReportService.
func (s *ReportServiceImpl) DailyStatus(ctx context.Context, employeeID string, date calendar.DateKey) (report.DayStatus, error) {
	records, err := s.store.FindByEmployeeAndRange(ctx, employeeID, calendar.DateRange{Start: date, End: date})
	if err != nil {
		return report.DayStatus{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	return s.builder.DayStatus(employeeID, date, records), nil
}

// RollingWindow implements report.ReportService.
func (s *ReportServiceImpl) RollingWindow(ctx context.Context, employeeID string, end calendar.DateKey, n int) ([]report.DayStatus, error) {
	if n <= 0 {
		return []report.DayStatus{}, nil
	}
	r := calendar.DateRange{Start: end.AddDays(1 - n), End: end}
	records, err := s.store.FindByEmployeeAndRange(ctx, employeeID, r)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}
	return s.builder.RollingSeries(employeeID, end, n, records), nil
}

// MonthlySummary implements report.ReportService.
func (s *ReportServiceImpl) MonthlySummary(ctx context.Context, employeeID string, req report.MonthlySummaryRequest, today calendar.DateKey) (report.MonthlySummary, error) {
	if err := req.Validate(); err != nil {
		return report.MonthlySummary{}, err
	}

	month := time.Month(req.Month)
	records, err := s.store.FindByEmployeeAndRange(ctx, employeeID, calendar.MonthRange(req.Year, month))
	if err != nil {
		return report.MonthlySummary{}, fmt.Errorf("failed to get monthly attendance: %w", err)
	}
	return s.builder.MonthlySummary(employeeID, req.Year, month, today, records), nil
}

// MySummary implements report.ReportService.
func (s *ReportServiceImpl) MySummary(ctx context.Context, employeeID string, today calendar.DateKey) (report.MySummary, error) {
	records, err := s.store.FindByEmployee(ctx, employeeID)
	if err != nil {
		return report.MySummary{}, fmt.Errorf("failed to get attendance history: %w", err)
	}
	return s.builder.MySummary(employeeID, today, records), nil
}

// TeamSummary implements report.ReportService.
func (s *ReportServiceImpl) TeamSummary(ctx context.Context, req report.TeamSummaryRequest, today calendar.DateKey) (report.TeamSummary, error) {
	if err := req.Validate(); err != nil {
		return report.TeamSummary{}, err
	}

	r, err := teamRange(req, today)
	if err != nil {
		return report.TeamSummary{}, err
	}

	employees, err := s.roster(ctx, req.Department)
	if err != nil {
		return report.TeamSummary{}, err
	}
	records, err := s.recordsInRange(ctx, r, req.Department)
	if err != nil {
		return report.TeamSummary{}, err
	}

	return s.builder.TeamSummary(r, employees, records, today)
}

// teamRange picks explicit dates when given, else the requested month,
// else today's month.
func teamRange(req report.TeamSummaryRequest, today calendar.DateKey) (calendar.DateRange, error) {
	if req.StartDate != "" && req.EndDate != "" {
		start, err := calendar.ParseDateKey(req.StartDate)
		if err != nil {
			return calendar.DateRange{}, err
		}
		end, err := calendar.ParseDateKey(req.EndDate)
		if err != nil {
			return calendar.DateRange{}, err
		}
		r, err := calendar.NewDateRange(start, end)
		if err != nil {
			return calendar.DateRange{}, attendance.ErrInvalidRange
		}
		return r, nil
	}

	year, month := today.Year, today.Month
	if req.Year != 0 {
		year = req.Year
	}
	if req.Month != 0 {
		month = time.Month(req.Month)
	}
	return calendar.MonthRange(year, month), nil
}

// TodaySnapshot implements report.ReportService.
func (s *ReportServiceImpl) TodaySnapshot(ctx context.Context, department *string, today calendar.DateKey) (report.TodaySnapshot, error) {
	employees, err := s.roster(ctx, department)
	if err != nil {
		return report.TodaySnapshot{}, err
	}
	records, err := s.recordsInRange(ctx, calendar.DateRange{Start: today, End: today}, department)
	if err != nil {
		return report.TodaySnapshot{}, err
	}
	return s.builder.TodaySnapshot(employees, records, today), nil
}

// WeeklyTrend implements report.ReportService.
func (s *ReportServiceImpl) WeeklyTrend(ctx context.Context, end calendar.DateKey, n int) ([]report.TrendDay, error) {
	if n <= 0 {
		return []report.TrendDay{}, nil
	}
	employees, err := s.roster(ctx, nil)
	if err != nil {
		return nil, err
	}
	records, err := s.recordsInRange(ctx, calendar.DateRange{Start: end.AddDays(1 - n), End: end}, nil)
	if err != nil {
		return nil, err
	}
	return s.builder.WeeklyTrend(employees, records, end, n), nil
}

// DepartmentStats implements report.ReportService.
func (s *ReportServiceImpl) DepartmentStats(ctx context.Context, date calendar.DateKey) (map[string]report.DepartmentStat, error) {
	employees, err := s.roster(ctx, nil)
	if err != nil {
		return nil, err
	}
	records, err := s.recordsInRange(ctx, calendar.DateRange{Start: date, End: date}, nil)
	if err != nil {
		return nil, err
	}
	return s.builder.DepartmentStats(employees, records, date), nil
}

// Export implements report.ReportService.
func (s *ReportServiceImpl) Export(ctx context.Context, req report.ExportRequest) (report.ExportFile, error) {
	if err := req.Validate(); err != nil {
		return report.ExportFile{}, err
	}

	start, _ := calendar.ParseDateKey(req.StartDate)
	end, _ := calendar.ParseDateKey(req.EndDate)
	records, err := s.recordsInRange(ctx, calendar.DateRange{Start: start, End: end}, req.Department)
	if err != nil {
		return report.ExportFile{}, err
	}

	content, err := export.WriteAttendance(records, s.calendar.Location())
	if err != nil {
		return report.ExportFile{}, fmt.Errorf("failed to render export: %w", err)
	}

	slog.Info("Exported attendance", "start_date", req.StartDate, "end_date", req.EndDate, "rows", len(records))
	return report.ExportFile{
		FileName:    export.FileName(req.StartDate, req.EndDate),
		ContentType: export.ContentTypeXLSX,
		Content:     content,
	}, nil
}
