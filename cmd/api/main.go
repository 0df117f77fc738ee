package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/config"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/fixtures"
	appHTTP "github.com/cmlabs-hris/attendance-engine/internal/handler/http"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/calendar"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/memory"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/postgresql"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/sqlite"
	attendanceService "github.com/cmlabs-hris/attendance-engine/internal/service/attendance"
	dashboardService "github.com/cmlabs-hris/attendance-engine/internal/service/dashboard"
	employeeService "github.com/cmlabs-hris/attendance-engine/internal/service/employee"
	reportService "github.com/cmlabs-hris/attendance-engine/internal/service/report"
)

// stores is the persistence selected by DB_DRIVER.
type stores struct {
	attendance attendance.Store
	employees  employee.EmployeeRepository
	seed       func(ctx context.Context, employees []employee.Employee) (int, error)
	close      func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	level := parseLevel(cfg.App.LogLevel)
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cal, err := calendar.Load(cfg.Attendance.Timezone)
	if err != nil {
		slog.Error("Invalid attendance timezone", "timezone", cfg.Attendance.Timezone, "error", err)
		os.Exit(1)
	}

	st, err := openStores(ctx, cfg)
	if err != nil {
		slog.Error("Error opening attendance store", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer st.close()

	if cfg.App.SeedDemo {
		n, err := st.seed(ctx, fixtures.DemoEmployees())
		if err != nil {
			slog.Error("Error seeding demo employees", "error", err)
			os.Exit(1)
		}
		slog.Info("Seeded demo employees", "created", n)
	}

	hub := sse.NewHub()
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	policy := attendanceService.Policy{
		LateCutoff:   cfg.Attendance.LateCutoffOffset(),
		GracePeriod:  cfg.Attendance.GracePeriod(),
		HalfDayHours: cfg.Attendance.HalfDayHours,
		Location:     cal.Location(),
	}

	attendanceSvc := attendanceService.NewAttendanceService(st.attendance, st.employees, cal, policy,
		attendanceService.WithSkewTolerance(cfg.Attendance.ClockSkewTolerance),
		attendanceService.WithPublisher(hub),
	)
	reportSvc := reportService.NewReportService(st.attendance, st.employees, cal, policy)
	dashboardSvc := dashboardService.NewDashboardService(reportSvc, cal)
	employeeSvc := employeeService.NewEmployeeService(st.employees)

	scheduler := cron.NewScheduler()
	attendanceJobs := cron.NewAttendanceJobs(st.attendance, hub,
		cfg.Attendance.StaleAfter(), cfg.Attendance.StaleCheckInterval, cal.Location())
	if err := attendanceJobs.RegisterJobs(scheduler); err != nil {
		slog.Error("Error registering cron jobs", "error", err)
		os.Exit(1)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	clock := appHTTP.Clock(time.Now)
	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			FrontendURL: cfg.App.FrontendURL,
			Env:         cfg.App.Env,
			LogLevel:    level,
		},
		JWTService,
		appHTTP.Handlers{
			Attendance: appHTTP.NewAttendanceHandler(attendanceSvc, reportSvc, cal, clock),
			Report:     appHTTP.NewReportHandler(reportSvc, cal, clock),
			Dashboard:  appHTTP.NewDashboardHandler(dashboardSvc, clock),
			Employee:   appHTTP.NewEmployeeHandler(employeeSvc),
			Events:     appHTTP.NewEventsHandler(hub, JWTService, clock),
		},
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", "http://localhost"+server.Addr, "driver", cfg.Database.Driver, "timezone", cfg.Attendance.Timezone)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	// SSE streams end with their request contexts during shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}
	slog.Info("Server stopped")
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfig{})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		if err := database.MigratePostgres(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to migrate postgres: %w", err)
		}
		return &stores{
			attendance: postgresql.NewAttendanceRepository(db),
			employees:  postgresql.NewEmployeeRepository(db),
			seed: func(ctx context.Context, employees []employee.Employee) (int, error) {
				return postgresql.SeedEmployees(ctx, db, employees)
			},
			close: db.Close,
		}, nil

	case config.DriverSQLite:
		db, err := database.OpenSQLite(ctx, cfg.Database.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		writer := database.NewWorker(db)
		employees := sqlite.NewEmployeeRepository(db, writer)
		return &stores{
			attendance: sqlite.NewAttendanceStore(db, writer),
			employees:  employees,
			seed: func(ctx context.Context, list []employee.Employee) (int, error) {
				return fixtures.Seed(ctx, employees, list)
			},
			close: func() {
				writer.Close()
				_ = db.Close()
			},
		}, nil

	default:
		slog.Warn("Using in-memory attendance store, records are lost on restart")
		directory := memory.NewEmployeeDirectory()
		return &stores{
			attendance: memory.NewAttendanceStore(directory),
			employees:  directory,
			seed: func(ctx context.Context, list []employee.Employee) (int, error) {
				return fixtures.Seed(ctx, directory, list)
			},
			close: func() {},
		}, nil
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
