package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/calendar"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/export"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/memory"
	attendancesvc "github.com/cmlabs-hris/attendance-engine/internal/service/attendance"
	dashboardsvc "github.com/cmlabs-hris/attendance-engine/internal/service/dashboard"
	employeesvc "github.com/cmlabs-hris/attendance-engine/internal/service/employee"
	reportsvc "github.com/cmlabs-hris/attendance-engine/internal/service/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type envelope struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Data    json.RawMessage       `json:"data"`
	Error   *response.ErrorDetail `json:"error"`
}

type testServer struct {
	router http.Handler
	jwt    jwt.Service
	hub    *sse.Hub
	now    time.Time
}

// unavailableStore fails history reads the way a dropped database would.
type unavailableStore struct {
	attendance.Store
}

func (unavailableStore) FindByEmployee(context.Context, string) ([]attendance.Record, error) {
	return nil, attendance.Unavailable("find by employee", errors.New("connection refused"))
}

func strPtr(s string) *string { return &s }

func newTestServer(t *testing.T, wrap ...func(attendance.Store) attendance.Store) *testServer {
	t.Helper()

	directory := memory.NewEmployeeDirectory(
		employee.Employee{EmployeeID: "E1", Name: "Ana", Email: "ana@example.com", Department: strPtr("Engineering"), Role: employee.RoleEmployee, IsActive: true},
		employee.Employee{EmployeeID: "E2", Name: "Budi", Email: "budi@example.com", Department: strPtr("Finance"), Role: employee.RoleEmployee, IsActive: true},
		employee.Employee{EmployeeID: "M1", Name: "Maya", Email: "maya@example.com", Department: strPtr("Engineering"), Role: employee.RoleManager, IsActive: true},
		employee.Employee{EmployeeID: "A1", Name: "Adi", Email: "adi@example.com", Role: employee.RoleAdmin, IsActive: true},
	)
	var store attendance.Store = memory.NewAttendanceStore(directory)
	for _, w := range wrap {
		store = w(store)
	}

	srv := &testServer{
		jwt: jwt.NewJWTService(handlerTestSecret, "1h"),
		hub: sse.NewHub(),
		now: time.Date(2025, 3, 4, 8, 30, 0, 0, time.UTC),
	}
	clock := func() time.Time { return srv.now }

	cal := calendar.New(time.UTC)
	policy := attendancesvc.DefaultPolicy()
	attendanceService := attendancesvc.NewAttendanceService(store, directory, cal, policy,
		attendancesvc.WithClock(clock), attendancesvc.WithPublisher(srv.hub))
	reportService := reportsvc.NewReportService(store, directory, cal, policy)

	srv.router = NewRouter(RouterConfig{Env: "test"}, srv.jwt, Handlers{
		Attendance: NewAttendanceHandler(attendanceService, reportService, cal, clock),
		Report:     NewReportHandler(reportService, cal, clock),
		Dashboard:  NewDashboardHandler(dashboardsvc.NewDashboardService(reportService, cal), clock),
		Employee:   NewEmployeeHandler(employeesvc.NewEmployeeService(directory)),
		Events:     NewEventsHandler(srv.hub, srv.jwt, clock),
	})
	return srv
}

func (s *testServer) token(t *testing.T, employeeID string, role employee.Role) string {
	t.Helper()
	token, _, err := s.jwt.GenerateAccessToken(employeeID, role)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&env))
	return env
}

func TestRouter_RequiresToken(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodPost, "/api/v1/attendance/check-in", "", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_RejectsSSETokenAsAccessToken(t *testing.T) {
	srv := newTestServer(t)
	sseToken, _, err := srv.jwt.GenerateSSEToken("E1", employee.RoleEmployee)
	require.NoError(t, err)

	w := srv.do(t, http.MethodGet, "/api/v1/attendance/today", sseToken, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAttendanceHandler_CheckInThenDuplicate(t *testing.T) {
	srv := newTestServer(t)
	token := srv.token(t, "E1", employee.RoleEmployee)

	w := srv.do(t, http.MethodPost, "/api/v1/attendance/check-in", token, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	env := decode(t, w)
	assert.True(t, env.Success)
	var created attendance.AttendanceResponse
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "E1", created.EmployeeID)
	assert.Equal(t, "2025-03-04", created.Date)
	assert.Equal(t, "present", created.Status)
	assert.True(t, created.IsOpen)

	w = srv.do(t, http.MethodPost, "/api/v1/attendance/check-in", token, nil)
	require.Equal(t, http.StatusConflict, w.Code)

	env = decode(t, w)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "DUPLICATE_SESSION", env.Error.Code)
	assert.Equal(t, created.ID, env.Error.Details["open_attendance_id"])
	assert.Equal(t, "2025-03-04T08:30:00Z", env.Error.Details["check_in_time"])
}

func TestAttendanceHandler_CheckOutWithoutSession(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodPost, "/api/v1/attendance/check-out", srv.token(t, "E1", employee.RoleEmployee), nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "NO_OPEN_SESSION", decode(t, w).Error.Code)
}

func TestAttendanceHandler_CheckOutClassifiesSession(t *testing.T) {
	srv := newTestServer(t)
	token := srv.token(t, "E1", employee.RoleEmployee)

	require.Equal(t, http.StatusCreated, srv.do(t, http.MethodPost, "/api/v1/attendance/check-in", token, nil).Code)

	srv.now = srv.now.Add(3 * time.Hour)
	w := srv.do(t, http.MethodPost, "/api/v1/attendance/check-out", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var closed attendance.AttendanceResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &closed))
	assert.Equal(t, "half-day", closed.Status)
	assert.Equal(t, 3.0, closed.TotalHours)
	require.NotNil(t, closed.CheckOutTime)
	assert.Equal(t, "2025-03-04T11:30:00Z", *closed.CheckOutTime)
	assert.False(t, closed.IsOpen)

	w = srv.do(t, http.MethodGet, "/api/v1/attendance/my-history", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history attendance.HistoryResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &history))
	assert.Equal(t, 1, history.TotalCount)
}

func TestAttendanceHandler_MyRollingValidatesDays(t *testing.T) {
	srv := newTestServer(t)
	token := srv.token(t, "E1", employee.RoleEmployee)

	w := srv.do(t, http.MethodGet, "/api/v1/attendance/my-rolling?days=abc", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/attendance/my-rolling?days=3", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var days []map[string]any
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &days))
	require.Len(t, days, 3)
	assert.Equal(t, "2025-03-04", days[2]["date"])
}

func TestAttendanceHandler_ManagerRoutes(t *testing.T) {
	srv := newTestServer(t)
	employeeToken := srv.token(t, "E1", employee.RoleEmployee)
	managerToken := srv.token(t, "M1", employee.RoleManager)

	require.Equal(t, http.StatusCreated, srv.do(t, http.MethodPost, "/api/v1/attendance/check-in", employeeToken, nil).Code)

	w := srv.do(t, http.MethodGet, "/api/v1/attendance", employeeToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/attendance?department=Engineering", managerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list attendance.ListAttendanceResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &list))
	assert.Equal(t, "2025-03-01", list.StartDate)
	assert.Equal(t, "2025-03-04", list.EndDate)
	require.Equal(t, 1, list.TotalCount)
	require.NotNil(t, list.Attendances[0].EmployeeName)
	assert.Equal(t, "Ana", *list.Attendances[0].EmployeeName)

	w = srv.do(t, http.MethodGet, "/api/v1/attendance?start_date=2025-03-04&end_date=2025-03-01", managerToken, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/attendance/employees/NOPE", managerToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/attendance/employees/E1", managerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail attendance.EmployeeAttendanceResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &detail))
	assert.Equal(t, "ana@example.com", detail.Employee.Email)
	assert.Len(t, detail.Attendances, 1)
}

func TestAttendanceHandler_ListPaginates(t *testing.T) {
	srv := newTestServer(t)
	managerToken := srv.token(t, "M1", employee.RoleManager)

	for _, id := range []string{"E1", "E2"} {
		require.Equal(t, http.StatusCreated,
			srv.do(t, http.MethodPost, "/api/v1/attendance/check-in", srv.token(t, id, employee.RoleEmployee), nil).Code)
	}

	w := srv.do(t, http.MethodGet, "/api/v1/attendance?limit=1&page=2", managerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data attendance.ListAttendanceResponse `json:"data"`
		Meta response.Meta                     `json:"meta"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, 2, body.Data.TotalCount)
	assert.Len(t, body.Data.Attendances, 1)
	assert.Equal(t, 2, body.Meta.TotalPages)
	assert.Equal(t, int64(2), body.Meta.TotalItems)

	w = srv.do(t, http.MethodGet, "/api/v1/attendance?limit=1000", managerToken, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestReportHandler_TodayAndExport(t *testing.T) {
	srv := newTestServer(t)
	managerToken := srv.token(t, "M1", employee.RoleManager)

	require.Equal(t, http.StatusCreated,
		srv.do(t, http.MethodPost, "/api/v1/attendance/check-in", srv.token(t, "E2", employee.RoleEmployee), nil).Code)

	w := srv.do(t, http.MethodGet, "/api/v1/reports/today", managerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var snapshot map[string]any
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &snapshot))
	assert.EqualValues(t, 2, snapshot["total_employees"])
	assert.EqualValues(t, 1, snapshot["present"])
	assert.EqualValues(t, 1, snapshot["absent"])

	w = srv.do(t, http.MethodGet, "/api/v1/reports/export?start_date=2025-03-01&end_date=2025-03-04", managerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.ContentTypeXLSX, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attendance-2025-03-01-to-2025-03-04.xlsx")
	assert.NotZero(t, w.Body.Len())

	w = srv.do(t, http.MethodGet, "/api/v1/reports/export?start_date=2025-03-01", managerToken, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/reports/daily/E2?date=2025-03-04", managerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var day map[string]any
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &day))
	assert.Equal(t, true, day["checked_in"])
}

func TestDashboardHandler(t *testing.T) {
	srv := newTestServer(t)
	employeeToken := srv.token(t, "E1", employee.RoleEmployee)

	w := srv.do(t, http.MethodGet, "/api/v1/dashboard/employee", employeeToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/dashboard/manager", employeeToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/dashboard/manager", srv.token(t, "M1", employee.RoleManager), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var dash map[string]any
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &dash))
	assert.EqualValues(t, 2, dash["total_employees"])
}

func TestEmployeeHandler_Create(t *testing.T) {
	srv := newTestServer(t)
	adminToken := srv.token(t, "A1", employee.RoleAdmin)

	body := employee.CreateEmployeeRequest{EmployeeID: "E9", Name: "Citra", Email: "citra@example.com", Department: strPtr("Finance")}

	w := srv.do(t, http.MethodPost, "/api/v1/employees", srv.token(t, "M1", employee.RoleManager), body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = srv.do(t, http.MethodPost, "/api/v1/employees", adminToken, body)
	require.Equal(t, http.StatusCreated, w.Code)
	var created employee.EmployeeResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &created))
	assert.Equal(t, "employee", created.Role)
	assert.True(t, created.IsActive)

	w = srv.do(t, http.MethodPost, "/api/v1/employees", adminToken, body)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = srv.do(t, http.MethodPost, "/api/v1/employees", adminToken, employee.CreateEmployeeRequest{EmployeeID: "E10"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	env := decode(t, w)
	assert.Contains(t, env.Error.Details, "name")
	assert.Contains(t, env.Error.Details, "email")

	w = srv.do(t, http.MethodGet, "/api/v1/employees?department=Finance", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []employee.EmployeeResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &listed))
	assert.Len(t, listed, 2)
}

func TestHandleError_StoreUnavailable(t *testing.T) {
	srv := newTestServer(t, func(s attendance.Store) attendance.Store { return unavailableStore{s} })

	w := srv.do(t, http.MethodGet, "/api/v1/attendance/my-history", srv.token(t, "E1", employee.RoleEmployee), nil)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "STORE_UNAVAILABLE", decode(t, w).Error.Code)
}

func TestEventsHandler_StatsRequiresManager(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/api/v1/events/stats", srv.token(t, "E1", employee.RoleEmployee), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/events/stats", srv.token(t, "M1", employee.RoleManager), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data StreamStats `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, 0, body.Data.TotalSubscribers)
}

func TestEventsHandler_StreamRejectsMissingAndAccessTokens(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/api/v1/events/stream", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/events/stream?token="+srv.token(t, "E1", employee.RoleEmployee), "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEventsHandler_StreamsCheckIn(t *testing.T) {
	srv := newTestServer(t)
	managerToken := srv.token(t, "M1", employee.RoleManager)

	w := srv.do(t, http.MethodGet, "/api/v1/events/token", managerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tok struct {
		Token     string `json:"token"`
		ExpiresIn int    `json:"expires_in"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &tok))
	assert.Equal(t, 300, tok.ExpiresIn)

	ts := httptest.NewServer(srv.router)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/v1/events/stream?token="+tok.Token, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readEvent := func() (string, string) {
		var name, data string
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimRight(line, "\n")
			switch {
			case line == "":
				return name, data
			case strings.HasPrefix(line, "event: "):
				name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = strings.TrimPrefix(line, "data: ")
			}
		}
	}

	name, data := readEvent()
	require.Equal(t, "connected", name)
	assert.Contains(t, data, sse.TopicTeam)

	require.Equal(t, http.StatusCreated,
		srv.do(t, http.MethodPost, "/api/v1/attendance/check-in", srv.token(t, "E1", employee.RoleEmployee), nil).Code)

	name, data = readEvent()
	assert.Equal(t, sse.EventCheckIn, name)
	var payload attendance.AttendanceResponse
	require.NoError(t, json.Unmarshal([]byte(data), &payload))
	assert.Equal(t, "E1", payload.EmployeeID)
}
