package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/calendar"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", validator.ValidationErrors{{Field: "month", Message: "bad"}}, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"bare duplicate", attendance.ErrDuplicateSession, http.StatusConflict, "DUPLICATE_SESSION"},
		{"already closed", fmt.Errorf("close: %w", attendance.ErrAlreadyClosed), http.StatusConflict, "ALREADY_CLOSED"},
		{"no open session", attendance.ErrNoOpenSession, http.StatusBadRequest, "NO_OPEN_SESSION"},
		{"invalid timestamp", fmt.Errorf("%w: in the future", attendance.ErrInvalidTimestamp), http.StatusUnprocessableEntity, "INVALID_TIMESTAMP"},
		{"record not found", attendance.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"invalid range", attendance.ErrInvalidRange, http.StatusBadRequest, "BAD_REQUEST"},
		{"calendar range", calendar.ErrInvalidRange, http.StatusBadRequest, "BAD_REQUEST"},
		{"store unavailable", attendance.Unavailable("insert", errors.New("dial tcp")), http.StatusServiceUnavailable, "STORE_UNAVAILABLE"},
		{"employee not found", employee.ErrEmployeeNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"employee inactive", employee.ErrEmployeeInactive, http.StatusForbidden, "FORBIDDEN"},
		{"employee exists", employee.ErrEmployeeIDExists, http.StatusConflict, "CONFLICT"},
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"manager required", auth.ErrManagerAccessRequired, http.StatusForbidden, "FORBIDDEN"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleError(w, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp Response
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestHandleError_InvalidTimestampMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("%w: 08:00 < 09:00", attendance.ErrCheckOutBeforeCheckIn), "Check-out time is before check-in time"},
		{fmt.Errorf("%w: 2030-01-01T00:00:00Z", attendance.ErrFutureTimestamp), "Attendance time is in the future"},
		{attendance.ErrMissingTimestamp, "Attendance time is required"},
		{attendance.ErrInvalidTimestamp, "Invalid attendance timestamp"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleError(w, tt.err)

			require.Equal(t, http.StatusUnprocessableEntity, w.Code)
			var resp Response
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, "INVALID_TIMESTAMP", resp.Error.Code)
			assert.Equal(t, tt.want, resp.Error.Message)
		})
	}
}

func TestHandleError_DuplicateSessionDetails(t *testing.T) {
	checkIn := time.Date(2025, 3, 4, 8, 30, 0, 0, time.UTC)
	err := fmt.Errorf("check in: %w", &attendance.DuplicateSessionError{OpenRecordID: "rec-1", CheckInTime: checkIn})

	w := httptest.NewRecorder()
	HandleError(w, err)

	require.Equal(t, http.StatusConflict, w.Code)
	var resp Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "DUPLICATE_SESSION", resp.Error.Code)
	assert.Equal(t, map[string]string{
		"open_attendance_id": "rec-1",
		"check_in_time":      "2025-03-04T08:30:00Z",
	}, resp.Error.Details)
}
