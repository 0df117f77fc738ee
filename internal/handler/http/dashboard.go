package http

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/dashboard"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
)

type DashboardHandler interface {
	// GetEmployeeDashboard returns the caller's today status, month and last 7 days
	GetEmployeeDashboard(w http.ResponseWriter, r *http.Request)
	// GetManagerDashboard returns the team snapshot, weekly trend and department stats
	GetManagerDashboard(w http.ResponseWriter, r *http.Request)
}

type dashboardHandlerImpl struct {
	dashboardService dashboard.DashboardService
	now              Clock
}

func NewDashboardHandler(dashboardService dashboard.DashboardService, now Clock) DashboardHandler {
	return &dashboardHandlerImpl{dashboardService: dashboardService, now: now}
}

// GetEmployeeDashboard handles GET /dashboard/employee
func (h *dashboardHandlerImpl) GetEmployeeDashboard(w http.ResponseWriter, r *http.Request) {
	identity, err := callerIdentity(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.dashboardService.EmployeeDashboard(r.Context(), identity.EmployeeID, h.now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetManagerDashboard handles GET /dashboard/manager
func (h *dashboardHandlerImpl) GetManagerDashboard(w http.ResponseWriter, r *http.Request) {
	result, err := h.dashboardService.ManagerDashboard(r.Context(), h.now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
