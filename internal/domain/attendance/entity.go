package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/calendar"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
	StatusHalfDay Status = "half-day"
	StatusAbsent  Status = "absent"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPresent, StatusLate, StatusHalfDay, StatusAbsent:
		return true
	}
	return false
}

// Record is one check-in/check-out session. Date is the reporting-timezone
// day of CheckInTime and stays fixed when the session runs past midnight.
type Record struct {
	ID           string
	EmployeeID   string
	Date         calendar.DateKey
	CheckInTime  time.Time
	CheckOutTime *time.Time
	Status       Status
	TotalHours   float64
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Filled by joins on the employee directory, nil when unknown.
	EmployeeName *string
	Department   *string
}

// IsOpen reports whether the session still waits for a check-out.
func (r Record) IsOpen() bool {
	return r.CheckOutTime == nil
}

// CheckOutUpdate carries the fields written when a session closes.
type CheckOutUpdate struct {
	CheckOutTime time.Time
	TotalHours   float64
	Status       Status
}

// RecordFilter narrows manager-facing range queries. Nil fields match all.
type RecordFilter struct {
	EmployeeID *string
	Department *string
	Status     *Status
}

// Classifier derives statuses from session timestamps.
type Classifier interface {
	Provisional(checkIn time.Time) Status
	Classify(checkIn time.Time, totalHours float64) Status
}

// DerivedStatus recomputes r's status from its timestamps alone: provisional
// while open, classified by duration once closed.
func DerivedStatus(r Record, c Classifier) Status {
	if r.IsOpen() {
		return c.Provisional(r.CheckInTime)
	}
	return c.Classify(r.CheckInTime, r.TotalHours)
}
