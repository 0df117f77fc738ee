package attendance

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/calendar"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

const timestampLayout = time.RFC3339

type AttendanceResponse struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	EmployeeName *string `json:"employee_name,omitempty"`
	Department   *string `json:"department,omitempty"`
	Date         string  `json:"date"`
	CheckInTime  string  `json:"check_in_time"`
	CheckOutTime *string `json:"check_out_time"`
	Status       string  `json:"status"`
	TotalHours   float64 `json:"total_hours"`
	IsOpen       bool    `json:"is_open"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

// NewAttendanceResponse renders r with timestamps in loc.
func NewAttendanceResponse(r Record, loc *time.Location) AttendanceResponse {
	if loc == nil {
		loc = time.UTC
	}
	resp := AttendanceResponse{
		ID:           r.ID,
		EmployeeID:   r.EmployeeID,
		EmployeeName: r.EmployeeName,
		Department:   r.Department,
		Date:         r.Date.String(),
		CheckInTime:  r.CheckInTime.In(loc).Format(timestampLayout),
		Status:       string(r.Status),
		TotalHours:   r.TotalHours,
		IsOpen:       r.IsOpen(),
		CreatedAt:    r.CreatedAt.In(loc).Format(timestampLayout),
		UpdatedAt:    r.UpdatedAt.In(loc).Format(timestampLayout),
	}
	if r.CheckOutTime != nil {
		s := r.CheckOutTime.In(loc).Format(timestampLayout)
		resp.CheckOutTime = &s
	}
	return resp
}

func NewAttendanceResponses(records []Record, loc *time.Location) []AttendanceResponse {
	out := make([]AttendanceResponse, 0, len(records))
	for _, r := range records {
		out = append(out, NewAttendanceResponse(r, loc))
	}
	return out
}

// DuplicateSessionDetails is attached to 409 responses so clients can show
// which session is still open.
type DuplicateSessionDetails struct {
	OpenAttendanceID string `json:"open_attendance_id"`
	CheckInTime      string `json:"check_in_time"`
}

// ListAttendanceFilter is the manager list query. Empty dates default to the
// first of the current month through today.
type ListAttendanceFilter struct {
	StartDate  string  `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    string  `json:"end_date,omitempty"`   // YYYY-MM-DD
	EmployeeID *string `json:"employee_id,omitempty"`
	Department *string `json:"department,omitempty"`
	Status     *string `json:"status,omitempty"`
}

var validStatuses = []string{
	string(StatusPresent),
	string(StatusLate),
	string(StatusHalfDay),
	string(StatusAbsent),
}

func (f *ListAttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	errs = append(errs, validateDateFields(f.StartDate, f.EndDate)...)

	if f.Status != nil {
		if !validator.IsInSlice(strings.ToLower(*f.Status), validStatuses) {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: " + strings.Join(validStatuses, ", "),
			})
		}
	}

	if f.EmployeeID != nil && validator.IsEmpty(*f.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must not be blank",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Range resolves the requested dates against today.
func (f *ListAttendanceFilter) Range(today calendar.DateKey) (calendar.DateRange, error) {
	return resolveRange(f.StartDate, f.EndDate, today)
}

// RecordFilter converts the query into a store filter.
func (f *ListAttendanceFilter) RecordFilter() RecordFilter {
	out := RecordFilter{EmployeeID: f.EmployeeID, Department: f.Department}
	if f.Status != nil {
		s := Status(strings.ToLower(*f.Status))
		out.Status = &s
	}
	return out
}

type ListAttendanceResponse struct {
	StartDate   string               `json:"start_date"`
	EndDate     string               `json:"end_date"`
	TotalCount  int                  `json:"total_count"`
	Attendances []AttendanceResponse `json:"attendances"`
}

// EmployeeAttendanceRequest selects one employee's records for a manager.
type EmployeeAttendanceRequest struct {
	EmployeeID string `json:"-"`
	StartDate  string `json:"start_date,omitempty"`
	EndDate    string `json:"end_date,omitempty"`
}

func (r *EmployeeAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	errs = append(errs, validateDateFields(r.StartDate, r.EndDate)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func (r *EmployeeAttendanceRequest) Range(today calendar.DateKey) (calendar.DateRange, error) {
	return resolveRange(r.StartDate, r.EndDate, today)
}

type EmployeeHeader struct {
	EmployeeID string  `json:"employee_id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Department *string `json:"department,omitempty"`
	Position   *string `json:"position,omitempty"`
}

type EmployeeAttendanceResponse struct {
	Employee    EmployeeHeader       `json:"employee"`
	StartDate   string               `json:"start_date"`
	EndDate     string               `json:"end_date"`
	Attendances []AttendanceResponse `json:"attendances"`
}

// HistoryResponse is the caller's own records, newest first.
type HistoryResponse struct {
	TotalCount  int                  `json:"total_count"`
	Attendances []AttendanceResponse `json:"attendances"`
}

func validateDateFields(start, end string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	var startDate, endDate time.Time
	var startOK, endOK bool
	if start != "" {
		if startDate, startOK = validator.IsValidDate(start); !startOK {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}
	if end != "" {
		if endDate, endOK = validator.IsValidDate(end); !endOK {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}
	if startOK && endOK && endDate.Before(startDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}
	return errs
}

func resolveRange(start, end string, today calendar.DateKey) (calendar.DateRange, error) {
	r := calendar.DateRange{
		Start: calendar.NewDateKey(today.Year, today.Month, 1),
		End:   today,
	}
	if start != "" {
		d, err := calendar.ParseDateKey(start)
		if err != nil {
			return calendar.DateRange{}, err
		}
		r.Start = d
	}
	if end != "" {
		d, err := calendar.ParseDateKey(end)
		if err != nil {
			return calendar.DateRange{}, err
		}
		r.End = d
	}
	if err := r.Validate(); err != nil {
		return calendar.DateRange{}, ErrInvalidRange
	}
	return r, nil
}
