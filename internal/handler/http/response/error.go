package response

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/calendar"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var dup *attendance.DuplicateSessionError
	if errors.As(err, &dup) {
		ErrorWithCode(w, http.StatusConflict, "DUPLICATE_SESSION", "You already have an open attendance session", map[string]string{
			"open_attendance_id": dup.OpenRecordID,
			"check_in_time":      dup.CheckInTime.Format(time.RFC3339),
		})
		return
	}

	switch {
	// Attendance domain errors
	case errors.Is(err, attendance.ErrDuplicateSession):
		ErrorWithCode(w, http.StatusConflict, "DUPLICATE_SESSION", "You already have an open attendance session", nil)
	case errors.Is(err, attendance.ErrAlreadyClosed):
		ErrorWithCode(w, http.StatusConflict, "ALREADY_CLOSED", "Attendance session is already closed", nil)
	case errors.Is(err, attendance.ErrNoOpenSession):
		ErrorWithCode(w, http.StatusBadRequest, "NO_OPEN_SESSION", "No open attendance session to check out from", nil)
	case errors.Is(err, attendance.ErrInvalidTimestamp):
		ErrorWithCode(w, http.StatusUnprocessableEntity, "INVALID_TIMESTAMP", timestampMessage(err), nil)
	case errors.Is(err, attendance.ErrNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrInvalidRange), errors.Is(err, calendar.ErrInvalidRange):
		BadRequest(w, "End date must not be before start date", nil)
	case errors.Is(err, attendance.ErrStoreUnavailable):
		slog.Error("Store unavailable", "error", err)
		ErrorWithCode(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Attendance store is temporarily unavailable", nil)

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeInactive):
		Forbidden(w, "Employee is inactive")
	case errors.Is(err, employee.ErrEmployeeIDExists):
		Conflict(w, "Employee ID already registered")
	case errors.Is(err, employee.ErrInvalidRole):
		BadRequest(w, err.Error(), nil)

	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrMissingIdentity):
		Unauthorized(w, "Token carries no employee identity")
	case errors.Is(err, auth.ErrManagerAccessRequired):
		Forbidden(w, "Manager access required")
	case errors.Is(err, auth.ErrAdminAccessRequired):
		Forbidden(w, "Admin access required")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}

func timestampMessage(err error) string {
	switch {
	case errors.Is(err, attendance.ErrCheckOutBeforeCheckIn):
		return "Check-out time is before check-in time"
	case errors.Is(err, attendance.ErrFutureTimestamp):
		return "Attendance time is in the future"
	case errors.Is(err, attendance.ErrMissingTimestamp):
		return "Attendance time is required"
	default:
		return "Invalid attendance timestamp"
	}
}
