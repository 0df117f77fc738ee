package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	FrontendURL string
	Env         string
	LogLevel    slog.Level
}

type Handlers struct {
	Attendance AttendanceHandler
	Report     ReportHandler
	Dashboard  DashboardHandler
	Employee   EmployeeHandler
	Events     EventsHandler
}

func NewRouter(cfg RouterConfig, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "attendance-engine"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.Env),
	)

	allowedOrigins := []string{"http://localhost:3000"}
	if cfg.FrontendURL != "" {
		allowedOrigins = []string{cfg.FrontendURL}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {

		// EventSource clients authenticate with a short-lived token in the query string
		r.Get("/events/stream", h.Events.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Get("/events/token", h.Events.GetSSEToken)
			r.With(middleware.RequireManager).Get("/events/stats", h.Events.Stats)

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/check-in", h.Attendance.CheckIn)
				r.Post("/check-out", h.Attendance.CheckOut)
				r.Get("/today", h.Attendance.Today)
				r.Get("/my-history", h.Attendance.MyHistory)
				r.Get("/my-summary", h.Attendance.MySummary)
				r.Get("/my-monthly", h.Attendance.MyMonthly)
				r.Get("/my-rolling", h.Attendance.MyRolling)

				// Manager only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.Get("/", h.Attendance.List)
					r.Get("/employees/{employeeID}", h.Attendance.GetEmployeeAttendance)
				})
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(middleware.RequireManager)
				r.Get("/team-summary", h.Report.GetTeamSummary)
				r.Get("/today", h.Report.GetTodaySnapshot)
				r.Get("/daily/{employeeID}", h.Report.GetDailyStatus)
				r.Get("/export", h.Report.Export)
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/employee", h.Dashboard.GetEmployeeDashboard)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.Get("/manager", h.Dashboard.GetManagerDashboard)
				})
			})

			r.Route("/employees", func(r chi.Router) {
				r.Use(middleware.RequireManager)
				r.Get("/", h.Employee.List)
				r.Get("/{employeeID}", h.Employee.Get)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/", h.Employee.Create)
				})
			})
		})
	})
	return r
}
