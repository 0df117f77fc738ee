package attendance

import (
	"errors"
	"fmt"
	"time"
)

// Attendance domain errors
var (
	// Check-in/out errors
	ErrDuplicateSession = errors.New("an open attendance session already exists")
	ErrNoOpenSession    = errors.New("no open attendance session")
	ErrAlreadyClosed    = errors.New("attendance session is already closed")
	ErrInvalidTimestamp = errors.New("invalid attendance timestamp")

	// Causes of ErrInvalidTimestamp; each matches it with errors.Is.
	ErrMissingTimestamp      = fmt.Errorf("%w: timestamp is required", ErrInvalidTimestamp)
	ErrFutureTimestamp       = fmt.Errorf("%w: timestamp is in the future", ErrInvalidTimestamp)
	ErrCheckOutBeforeCheckIn = fmt.Errorf("%w: check-out precedes check-in", ErrInvalidTimestamp)

	// General errors
	ErrNotFound         = errors.New("attendance record not found")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidRange     = errors.New("invalid date range")
)

// DuplicateSessionError is returned by check-in when the employee already has
// an open session. It matches ErrDuplicateSession with errors.Is.
type DuplicateSessionError struct {
	OpenRecordID string
	CheckInTime  time.Time
}

func (e *DuplicateSessionError) Error() string {
	return fmt.Sprintf("%s: record %s opened at %s", ErrDuplicateSession, e.OpenRecordID, e.CheckInTime.Format(time.RFC3339))
}

func (e *DuplicateSessionError) Is(target error) bool {
	return target == ErrDuplicateSession
}

// Unavailable wraps a storage failure so callers can match ErrStoreUnavailable
// while the driver error stays reachable through errors.As.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
