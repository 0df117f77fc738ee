package http

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/report"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/calendar"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

// rollingDays is the length of the my-rolling window when none is requested.
const rollingDays = 7

type AttendanceHandler interface {
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	Today(w http.ResponseWriter, r *http.Request)
	MyHistory(w http.ResponseWriter, r *http.Request)
	MySummary(w http.ResponseWriter, r *http.Request)
	MyMonthly(w http.ResponseWriter, r *http.Request)
	MyRolling(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	GetEmployeeAttendance(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	reportService     report.ReportService
	calendar          *calendar.Calendar
	now               Clock
}

func NewAttendanceHandler(
	attendanceService attendance.AttendanceService,
	reportService report.ReportService,
	cal *calendar.Calendar,
	now Clock,
) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		reportService:     reportService,
		calendar:          cal,
		now:               now,
	}
}

// CheckIn handles POST /attendance/check-in
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	identity, err := callerIdentity(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	record, err := h.attendanceService.CheckIn(r.Context(), identity.EmployeeID, h.now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Checked in successfully", attendance.NewAttendanceResponse(record, h.calendar.Location()))
}

// CheckOut handles POST /attendance/check-out
func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	identity, err := callerIdentity(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	record, err := h.attendanceService.CheckOut(r.Context(), identity.EmployeeID, h.now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Checked out successfully", attendance.NewAttendanceResponse(record, h.calendar.Location()))
}

// Today handles GET /attendance/today
func (h *attendanceHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	identity, err := callerIdentity(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.reportService.TodayStatus(r.Context(), identity.EmployeeID, h.now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// MyHistory handles GET /attendance/my-history
func (h *attendanceHandlerImpl) MyHistory(w http.ResponseWriter, r *http.Request) {
	identity, err := callerIdentity(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	records, err := h.attendanceService.History(r.Context(), identity.EmployeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, attendance.HistoryResponse{
		TotalCount:  len(records),
		Attendances: attendance.NewAttendanceResponses(records, h.calendar.Location()),
	})
}

// MySummary handles GET /attendance/my-summary
func (h *attendanceHandlerImpl) MySummary(w http.ResponseWriter, r *http.Request) {
	identity, err := callerIdentity(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.reportService.MySummary(r.Context(), identity.EmployeeID, h.calendar.DayKey(h.now()))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// MyMonthly handles GET /attendance/my-monthly?month=&year=
func (h *attendanceHandlerImpl) MyMonthly(w http.ResponseWriter, r *http.Request) {
	identity, err := callerIdentity(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	today := h.calendar.DayKey(h.now())
	month, err := getIntQueryParam(r, "month", int(today.Month))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	year, err := getIntQueryParam(r, "year", today.Year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.reportService.MonthlySummary(r.Context(), identity.EmployeeID,
		report.MonthlySummaryRequest{Month: month, Year: year}, today)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// MyRolling handles GET /attendance/my-rolling?days=
func (h *attendanceHandlerImpl) MyRolling(w http.ResponseWriter, r *http.Request) {
	identity, err := callerIdentity(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	days, err := getIntQueryParam(r, "days", rollingDays)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if days < 1 || days > 366 {
		response.HandleError(w, validator.ValidationErrors{{Field: "days", Message: "days must be between 1 and 366"}})
		return
	}

	result, err := h.reportService.RollingWindow(r.Context(), identity.EmployeeID, h.calendar.DayKey(h.now()), days)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List handles GET /attendance
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := attendance.ListAttendanceFilter{
		StartDate:  r.URL.Query().Get("start_date"),
		EndDate:    r.URL.Query().Get("end_date"),
		EmployeeID: optionalQuery(r, "employee_id"),
		Department: optionalQuery(r, "department"),
		Status:     optionalQuery(r, "status"),
	}

	if err := filter.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	dateRange, err := filter.Range(h.calendar.DayKey(h.now()))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	page, limit, err := pageParams(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	records, err := h.attendanceService.ListAttendance(r.Context(), dateRange, filter.RecordFilter())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	total := len(records)
	if limit == 0 {
		response.Success(w, attendance.ListAttendanceResponse{
			StartDate:   dateRange.Start.String(),
			EndDate:     dateRange.End.String(),
			TotalCount:  total,
			Attendances: attendance.NewAttendanceResponses(records, h.calendar.Location()),
		})
		return
	}

	from := min((page-1)*limit, total)
	to := min(from+limit, total)
	response.SuccessWithMeta(w, attendance.ListAttendanceResponse{
		StartDate:   dateRange.Start.String(),
		EndDate:     dateRange.End.String(),
		TotalCount:  total,
		Attendances: attendance.NewAttendanceResponses(records[from:to], h.calendar.Location()),
	}, &response.Meta{
		Page:       page,
		Limit:      limit,
		TotalItems: int64(total),
		TotalPages: (total + limit - 1) / limit,
	})
}

// GetEmployeeAttendance handles GET /attendance/employees/{employeeID}
func (h *attendanceHandlerImpl) GetEmployeeAttendance(w http.ResponseWriter, r *http.Request) {
	req := attendance.EmployeeAttendanceRequest{
		EmployeeID: chi.URLParam(r, "employeeID"),
		StartDate:  r.URL.Query().Get("start_date"),
		EndDate:    r.URL.Query().Get("end_date"),
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	dateRange, err := req.Range(h.calendar.DayKey(h.now()))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	emp, records, err := h.attendanceService.EmployeeAttendance(r.Context(), req.EmployeeID, dateRange)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, attendance.EmployeeAttendanceResponse{
		Employee: attendance.EmployeeHeader{
			EmployeeID: emp.EmployeeID,
			Name:       emp.Name,
			Email:      emp.Email,
			Department: emp.Department,
			Position:   emp.Position,
		},
		StartDate:   dateRange.Start.String(),
		EndDate:     dateRange.End.String(),
		Attendances: attendance.NewAttendanceResponses(records, h.calendar.Location()),
	})
}
