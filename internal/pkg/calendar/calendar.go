package calendar

import (
	"errors"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// ErrInvalidRange is returned when a range ends before it starts.
var ErrInvalidRange = errors.New("invalid date range: end is before start")

// DateKey is a calendar date without time-of-day or zone. It is the grouping
// key for attendance records.
type DateKey struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDateKey normalizes y-m-d, so NewDateKey(2025, 1, 32) is 2025-02-01.
func NewDateKey(year int, month time.Month, day int) DateKey {
	return fromUTC(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// FromTime takes the date components of t as-is, without converting zones.
func FromTime(t time.Time) DateKey {
	return DateKey{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

func fromUTC(t time.Time) DateKey {
	return DateKey{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseDateKey parses YYYY-MM-DD.
func ParseDateKey(s string) (DateKey, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return DateKey{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return fromUTC(t), nil
}

// Time returns midnight UTC of the date.
func (d DateKey) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// In returns midnight of the date in loc.
func (d DateKey) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d DateKey) AddDays(n int) DateKey {
	return NewDateKey(d.Year, d.Month, d.Day+n)
}

func (d DateKey) Compare(o DateKey) int {
	return d.Time().Compare(o.Time())
}

func (d DateKey) Before(o DateKey) bool { return d.Compare(o) < 0 }
func (d DateKey) After(o DateKey) bool  { return d.Compare(o) > 0 }
func (d DateKey) Equal(o DateKey) bool  { return d == o }

func (d DateKey) IsZero() bool {
	return d == DateKey{}
}

func (d DateKey) Weekday() time.Weekday {
	return d.Time().Weekday()
}

func (d DateKey) String() string {
	return d.Time().Format(dateLayout)
}

func (d DateKey) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *DateKey) UnmarshalText(b []byte) error {
	parsed, err := ParseDateKey(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MinDate returns the earlier of a and b.
func MinDate(a, b DateKey) DateKey {
	if b.Before(a) {
		return b
	}
	return a
}

// Calendar buckets instants into days of a single reporting timezone.
type Calendar struct {
	loc *time.Location
}

func New(loc *time.Location) *Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return &Calendar{loc: loc}
}

// Load builds a Calendar for an IANA zone name such as "Asia/Jakarta".
func Load(name string) (*Calendar, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return New(loc), nil
}

func (c *Calendar) Location() *time.Location {
	return c.loc
}

// DayKey is the calendar day of instant in the reporting timezone.
func (c *Calendar) DayKey(instant time.Time) DateKey {
	return FromTime(instant.In(c.loc))
}

// StartOfDay is midnight of d in the reporting timezone.
func (c *Calendar) StartOfDay(d DateKey) time.Time {
	return d.In(c.loc)
}

// IsWorkingDay is true Monday through Friday.
func IsWorkingDay(d DateKey) bool {
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	default:
		return true
	}
}

// WorkingDaysBetween counts working days in [start, end], both inclusive.
func WorkingDaysBetween(start, end DateKey) (int, error) {
	if end.Before(start) {
		return 0, ErrInvalidRange
	}

	days := int(end.Time().Sub(start.Time()).Hours()/24) + 1
	count := (days / 7) * 5
	for d := start.AddDays((days / 7) * 7); !d.After(end); d = d.AddDays(1) {
		if IsWorkingDay(d) {
			count++
		}
	}
	return count, nil
}

// RollingWindow returns the n calendar days ending at end, oldest first.
// Days are never skipped, whether or not anything happened on them.
func RollingWindow(end DateKey, n int) []DateKey {
	if n <= 0 {
		return []DateKey{}
	}
	out := make([]DateKey, n)
	for i := 0; i < n; i++ {
		out[i] = end.AddDays(i - n + 1)
	}
	return out
}
