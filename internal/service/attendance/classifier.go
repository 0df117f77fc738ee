package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
)

// Policy holds the shift thresholds the classifier applies. LateCutoff is an
// offset from local midnight, e.g. 9h for "09:00".
type Policy struct {
	LateCutoff   time.Duration
	GracePeriod  time.Duration
	HalfDayHours float64
	Location     *time.Location
}

// DefaultPolicy is a 09:00 start with a 4.5 hour full-day minimum, in UTC.
func DefaultPolicy() Policy {
	return Policy{
		LateCutoff:   9 * time.Hour,
		HalfDayHours: 4.5,
		Location:     time.UTC,
	}
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// timeOfDay is the wall-clock offset of t from local midnight. Wall clock,
// not elapsed time, so DST transition days classify like any other day.
func (p Policy) timeOfDay(t time.Time) time.Duration {
	local := t.In(p.location())
	return time.Duration(local.Hour())*time.Hour +
		time.Duration(local.Minute())*time.Minute +
		time.Duration(local.Second())*time.Second +
		time.Duration(local.Nanosecond())
}

// IsLate reports whether checkIn falls after the cutoff plus grace period.
// A check-in exactly at the cutoff is on time.
func (p Policy) IsLate(checkIn time.Time) bool {
	return p.timeOfDay(checkIn) > p.LateCutoff+p.GracePeriod
}

// Provisional is the on-time/late status reported at check-in, before the
// session duration is known.
func (p Policy) Provisional(checkIn time.Time) attendance.Status {
	if p.IsLate(checkIn) {
		return attendance.StatusLate
	}
	return attendance.StatusPresent
}

// Classify derives the final status of a closed session. Half-day overrides
// present and late. It never returns absent.
func (p Policy) Classify(checkIn time.Time, totalHours float64) attendance.Status {
	if totalHours < p.HalfDayHours {
		return attendance.StatusHalfDay
	}
	return p.Provisional(checkIn)
}

// HoursBetween is the exact elapsed time between two instants in hours.
func HoursBetween(from, to time.Time) float64 {
	return to.Sub(from).Hours()
}
