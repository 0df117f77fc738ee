package dashboard

import (
	"context"
	"time"
)

// DashboardService defines the interface for dashboard operations
type DashboardService interface {
	// EmployeeDashboard returns today status, month summary and the last 7 days
	EmployeeDashboard(ctx context.Context, employeeID string, now time.Time) (*EmployeeDashboardResponse, error)

	// ManagerDashboard returns today snapshot, weekly trend and department stats
	ManagerDashboard(ctx context.Context, now time.Time) (*ManagerDashboardResponse, error)
}
