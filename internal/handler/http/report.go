package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/report"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/calendar"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type ReportHandler interface {
	// Team summary over a month or explicit range
	GetTeamSummary(w http.ResponseWriter, r *http.Request)

	// Today's present/completed/absent partition
	GetTodaySnapshot(w http.ResponseWriter, r *http.Request)

	// One employee's status on a day
	GetDailyStatus(w http.ResponseWriter, r *http.Request)

	// Spreadsheet export of a range
	Export(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
	calendar      *calendar.Calendar
	now           Clock
}

func NewReportHandler(reportService report.ReportService, cal *calendar.Calendar, now Clock) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
		calendar:      cal,
		now:           now,
	}
}

// GetTeamSummary handles GET /reports/team-summary
func (h *reportHandlerImpl) GetTeamSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	month, err := getIntQueryParam(r, "month", 0)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	year, err := getIntQueryParam(r, "year", 0)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	req := report.TeamSummaryRequest{
		StartDate:  r.URL.Query().Get("start_date"),
		EndDate:    r.URL.Query().Get("end_date"),
		Month:      month,
		Year:       year,
		Department: optionalQuery(r, "department"),
	}

	result, err := h.reportService.TeamSummary(ctx, req, h.calendar.DayKey(h.now()))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetTodaySnapshot handles GET /reports/today
func (h *reportHandlerImpl) GetTodaySnapshot(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.TodaySnapshot(r.Context(), optionalQuery(r, "department"), h.calendar.DayKey(h.now()))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetDailyStatus handles GET /reports/daily/{employeeID}?date=
func (h *reportHandlerImpl) GetDailyStatus(w http.ResponseWriter, r *http.Request) {
	date := h.calendar.DayKey(h.now())
	if s := r.URL.Query().Get("date"); s != "" {
		parsed, err := calendar.ParseDateKey(s)
		if err != nil {
			response.HandleError(w, validator.ValidationErrors{{Field: "date", Message: "date must be in YYYY-MM-DD format"}})
			return
		}
		date = parsed
	}

	result, err := h.reportService.DailyStatus(r.Context(), chi.URLParam(r, "employeeID"), date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Export handles GET /reports/export
func (h *reportHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	req := report.ExportRequest{
		StartDate:  r.URL.Query().Get("start_date"),
		EndDate:    r.URL.Query().Get("end_date"),
		Department: optionalQuery(r, "department"),
	}

	file, err := h.reportService.Export(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Content)
}
