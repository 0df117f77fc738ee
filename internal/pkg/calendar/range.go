package calendar

import "time"

// DateRange is an inclusive span of calendar days.
type DateRange struct {
	Start DateKey `json:"start"`
	End   DateKey `json:"end"`
}

func NewDateRange(start, end DateKey) (DateRange, error) {
	r := DateRange{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

// MonthRange covers the first through last day of the month.
func MonthRange(year int, month time.Month) DateRange {
	start := NewDateKey(year, month, 1)
	return DateRange{Start: start, End: NewDateKey(year, month+1, 0)}
}

func (r DateRange) Validate() error {
	if r.End.Before(r.Start) {
		return ErrInvalidRange
	}
	return nil
}

func (r DateRange) Contains(d DateKey) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Days lists every day of the range in order.
func (r DateRange) Days() []DateKey {
	if r.End.Before(r.Start) {
		return nil
	}
	var out []DateKey
	for d := r.Start; !d.After(r.End); d = d.AddDays(1) {
		out = append(out, d)
	}
	return out
}

// UpTo clips the range so it ends no later than limit. ok is false when the
// whole range lies after limit.
func (r DateRange) UpTo(limit DateKey) (clipped DateRange, ok bool) {
	if limit.Before(r.Start) {
		return DateRange{}, false
	}
	return DateRange{Start: r.Start, End: MinDate(r.End, limit)}, true
}
