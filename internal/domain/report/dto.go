package report

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

// StatusNotCheckedIn marks a day without any attendance record.
const StatusNotCheckedIn = "not-checked-in"

// ========================================
// DAY STATUS & ROLLING WINDOW
// ========================================

// DayStatus summarizes one employee's attendance on one calendar day. When an
// employee re-checks in on the same day, hours are summed across sessions and
// timestamps/status come from the latest session.
type DayStatus struct {
	EmployeeID   string  `json:"employee_id"`
	Date         string  `json:"date"`
	Weekday      string  `json:"weekday"`
	IsWorkingDay bool    `json:"is_working_day"`
	CheckedIn    bool    `json:"checked_in"`
	CheckedOut   bool    `json:"checked_out"`
	CheckInTime  *string `json:"check_in_time"`
	CheckOutTime *string `json:"check_out_time"`
	Status       string  `json:"status"`
	Hours        float64 `json:"hours"`
	Sessions     int     `json:"sessions"`
}

// TodayStatusResponse is the caller's own status for today. OpenSession is
// set whenever a session is open, including one started on an earlier day.
type TodayStatusResponse struct {
	Today       DayStatus    `json:"today"`
	OpenSession *OpenSession `json:"open_session,omitempty"`
	CanCheckIn  bool         `json:"can_check_in"`
	CanCheckOut bool         `json:"can_check_out"`
}

type OpenSession struct {
	AttendanceID string `json:"attendance_id"`
	Date         string `json:"date"`
	CheckInTime  string `json:"check_in_time"`
}

// ========================================
// MONTHLY SUMMARY
// ========================================

type MonthlySummaryRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (r *MonthlySummaryRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Month < 1 || r.Month > 12 {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}

	if r.Year < 2000 || r.Year > 9999 {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: fmt.Sprintf("year must be between 2000 and %d", 9999),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// MonthlySummary counts statuses over working days of the month up to the
// reference day. Present+Late+HalfDay+Absent always equals WorkingDays.
type MonthlySummary struct {
	EmployeeID           string      `json:"employee_id"`
	Month                int         `json:"month"`
	Year                 int         `json:"year"`
	PeriodStart          string      `json:"period_start"`
	PeriodEnd            string      `json:"period_end"`
	ReferenceDay         string      `json:"reference_day"`
	WorkingDays          int         `json:"working_days"`
	Present              int         `json:"present"`
	Late                 int         `json:"late"`
	HalfDay              int         `json:"half_day"`
	Absent               int         `json:"absent"`
	DaysWithRecord       int         `json:"days_with_record"`
	TotalHours           float64     `json:"total_hours"`
	AvgHours             float64     `json:"avg_hours"`
	AttendancePercentage int         `json:"attendance_percentage"`
	Days                 []DayStatus `json:"days"`
}

// ========================================
// PERSONAL SUMMARY
// ========================================

// MySummary is the caller's lifetime totals, current month totals and the
// last seven calendar days.
type MySummary struct {
	TotalDays  int         `json:"total_days"`
	TotalHours float64     `json:"total_hours"`
	AvgHours   float64     `json:"avg_hours"`
	MonthDays  int         `json:"month_days"`
	MonthHours float64     `json:"month_hours"`
	Last7Days  []DayStatus `json:"last_7_days"`
}

// ========================================
// TEAM SUMMARY
// ========================================

type TeamSummaryRequest struct {
	StartDate  string  `json:"start_date,omitempty"`
	EndDate    string  `json:"end_date,omitempty"`
	Month      int     `json:"month,omitempty"`
	Year       int     `json:"year,omitempty"`
	Department *string `json:"department,omitempty"`
}

func (r *TeamSummaryRequest) Validate() error {
	var errs validator.ValidationErrors

	var start, end time.Time
	var startOK, endOK bool
	if r.StartDate != "" {
		if start, startOK = validator.IsValidDate(r.StartDate); !startOK {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}
	if r.EndDate != "" {
		if end, endOK = validator.IsValidDate(r.EndDate); !endOK {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}
	if (r.StartDate == "") != (r.EndDate == "") {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date and end_date must be given together",
		})
	}
	if startOK && endOK && end.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	if r.Month != 0 && (r.Month < 1 || r.Month > 12) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}
	if r.Year != 0 && (r.Year < 2000 || r.Year > 9999) {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be between 2000 and 9999",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EmployeeInfo struct {
	EmployeeID string  `json:"employee_id"`
	Name       string  `json:"name"`
	Department *string `json:"department,omitempty"`
}

type EmployeeSummary struct {
	Employee   EmployeeInfo `json:"employee"`
	Present    int          `json:"present"`
	Late       int          `json:"late"`
	HalfDay    int          `json:"half_day"`
	Absent     int          `json:"absent"`
	TotalHours float64      `json:"total_hours"`
}

type GroupAverages struct {
	TotalEmployees int     `json:"total_employees"`
	AveragePresent float64 `json:"average_present"`
	AverageLate    float64 `json:"average_late"`
	AverageHalfDay float64 `json:"average_half_day"`
	AverageAbsent  float64 `json:"average_absent"`
	TotalHours     float64 `json:"total_hours"`
}

type TeamSummary struct {
	StartDate           string                   `json:"start_date"`
	EndDate             string                   `json:"end_date"`
	WorkingDays         int                      `json:"working_days"`
	Team                GroupAverages            `json:"team"`
	Departments         map[string]GroupAverages `json:"departments"`
	Employees           []EmployeeSummary        `json:"employees"`
	EmployeesNoActivity []EmployeeInfo           `json:"employees_without_records"`
}

// ========================================
// TODAY SNAPSHOT
// ========================================

type PresentEmployee struct {
	EmployeeInfo
	AttendanceID string `json:"attendance_id"`
	CheckInTime  string `json:"check_in_time"`
	Status       string `json:"status"`
}

type CompletedEmployee struct {
	EmployeeInfo
	AttendanceID string  `json:"attendance_id"`
	CheckInTime  string  `json:"check_in_time"`
	CheckOutTime string  `json:"check_out_time"`
	TotalHours   float64 `json:"total_hours"`
	Status       string  `json:"status"`
}

// TodaySnapshot partitions the roster for one day. Each employee appears in
// exactly one of Present, Completed or Absent.
type TodaySnapshot struct {
	Date               string              `json:"date"`
	TotalEmployees     int                 `json:"total_employees"`
	Present            int                 `json:"present"`
	Completed          int                 `json:"completed"`
	Absent             int                 `json:"absent"`
	Late               int                 `json:"late"`
	PresentEmployees   []PresentEmployee   `json:"present_employees"`
	CompletedEmployees []CompletedEmployee `json:"completed_employees"`
	AbsentEmployees    []EmployeeInfo      `json:"absent_employees"`
}

// ========================================
// TREND & DEPARTMENT STATS
// ========================================

type TrendDay struct {
	Date    string `json:"date"`
	Day     string `json:"day"`
	Present int    `json:"present"`
	Absent  int    `json:"absent"`
	Late    int    `json:"late"`
}

type DepartmentStat struct {
	TotalEmployees int     `json:"total_employees"`
	Present        int     `json:"present"`
	Absent         int     `json:"absent"`
	Late           int     `json:"late"`
	PercentPresent float64 `json:"percent_present"`
}

// ========================================
// EXPORT
// ========================================

type ExportRequest struct {
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	Department *string `json:"department,omitempty"`
}

func (r *ExportRequest) Validate() error {
	var errs validator.ValidationErrors

	start, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date is required in YYYY-MM-DD format",
		})
	}
	end, endOK := validator.IsValidDate(r.EndDate)
	if !endOK {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date is required in YYYY-MM-DD format",
		})
	}
	if startOK && endOK && end.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ExportFile is a rendered export ready to be served.
type ExportFile struct {
	FileName    string
	ContentType string
	Content     []byte
}
