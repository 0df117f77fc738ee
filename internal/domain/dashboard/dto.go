package dashboard

import "github.com/cmlabs-hris/attendance-engine/internal/domain/report"

// ========== EMPLOYEE DASHBOARD ==========

// EmployeeDashboardResponse is the combined response for the employee home screen
type EmployeeDashboardResponse struct {
	Today        report.TodayStatusResponse `json:"today"`
	MonthSummary report.MonthlySummary      `json:"month_summary"`
	Recent       []report.DayStatus         `json:"recent"` // last 7 calendar days, oldest first
}

// ========== MANAGER DASHBOARD ==========

// ManagerDashboardResponse is the combined response for the manager overview
type ManagerDashboardResponse struct {
	Date            string                           `json:"date"`
	TotalEmployees  int                              `json:"total_employees"`
	Today           report.TodaySnapshot             `json:"today"`
	WeeklyTrend     []report.TrendDay                `json:"weekly_trend"`
	DepartmentStats map[string]report.DepartmentStat `json:"department_stats"`
	AbsentEmployees []report.EmployeeInfo            `json:"absent_employees"`
}
