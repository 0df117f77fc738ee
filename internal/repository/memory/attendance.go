package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/calendar"
	"github.com/google/uuid"
)

// AttendanceStore is an in-memory attendance.Store for tests and local runs.
// A single mutex makes the open-session check and insert one atomic step.
type AttendanceStore struct {
	mu          sync.Mutex
	records     map[string]attendance.Record
	openByEmpID map[string]string
	directory   *EmployeeDirectory
	now         func() time.Time
}

// NewAttendanceStore returns an empty store. directory may be nil, in which
// case range queries are not enriched.
func NewAttendanceStore(directory *EmployeeDirectory) *AttendanceStore {
	return &AttendanceStore{
		records:     make(map[string]attendance.Record),
		openByEmpID: make(map[string]string),
		directory:   directory,
		now:         time.Now,
	}
}

func (s *AttendanceStore) FindOpenSession(_ context.Context, employeeID string) (*attendance.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.openByEmpID[employeeID]
	if !ok {
		return nil, nil
	}
	rec := s.records[id]
	return &rec, nil
}

func (s *AttendanceStore) InsertIfNoOpenSession(_ context.Context, record attendance.Record) (attendance.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.openByEmpID[record.EmployeeID]; ok {
		open := s.records[id]
		return attendance.Record{}, &attendance.DuplicateSessionError{
			OpenRecordID: open.ID,
			CheckInTime:  open.CheckInTime,
		}
	}

	if record.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return attendance.Record{}, attendance.Unavailable("generate id", err)
		}
		record.ID = id.String()
	}
	ts := s.now().UTC()
	record.CheckOutTime = nil
	record.TotalHours = 0
	record.CreatedAt = ts
	record.UpdatedAt = ts
	record.EmployeeName, record.Department = nil, nil

	s.records[record.ID] = record
	s.openByEmpID[record.EmployeeID] = record.ID
	return record, nil
}

func (s *AttendanceStore) UpdateCheckOut(_ context.Context, recordID string, update attendance.CheckOutUpdate) (attendance.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[recordID]
	if !ok {
		return attendance.Record{}, attendance.ErrNotFound
	}
	if !rec.IsOpen() {
		return attendance.Record{}, attendance.ErrAlreadyClosed
	}

	out := update.CheckOutTime
	rec.CheckOutTime = &out
	rec.TotalHours = update.TotalHours
	rec.Status = update.Status
	rec.UpdatedAt = s.now().UTC()

	s.records[recordID] = rec
	delete(s.openByEmpID, rec.EmployeeID)
	return rec, nil
}

func (s *AttendanceStore) FindByEmployeeAndRange(_ context.Context, employeeID string, r calendar.DateRange) ([]attendance.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []attendance.Record{}
	for _, rec := range s.records {
		if rec.EmployeeID == employeeID && r.Contains(rec.Date) {
			out = append(out, rec)
		}
	}
	sortByCheckIn(out)
	return out, nil
}

func (s *AttendanceStore) FindByDateRange(ctx context.Context, r calendar.DateRange, filter attendance.RecordFilter) ([]attendance.Record, error) {
	s.mu.Lock()
	matched := []attendance.Record{}
	for _, rec := range s.records {
		if !r.Contains(rec.Date) {
			continue
		}
		if filter.EmployeeID != nil && rec.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && rec.Status != *filter.Status {
			continue
		}
		matched = append(matched, rec)
	}
	s.mu.Unlock()

	out := matched[:0]
	for _, rec := range matched {
		if s.directory != nil {
			if emp, err := s.directory.GetByEmployeeID(ctx, rec.EmployeeID); err == nil {
				name := emp.Name
				rec.EmployeeName = &name
				rec.Department = emp.Department
			}
		}
		if filter.Department != nil && (rec.Department == nil || *rec.Department != *filter.Department) {
			continue
		}
		out = append(out, rec)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].CheckInTime.Before(out[j].CheckInTime)
	})
	return out, nil
}

func (s *AttendanceStore) FindByEmployee(_ context.Context, employeeID string) ([]attendance.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []attendance.Record{}
	for _, rec := range s.records {
		if rec.EmployeeID == employeeID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckInTime.After(out[j].CheckInTime) })
	return out, nil
}

func (s *AttendanceStore) FindStaleOpenSessions(_ context.Context, openedBefore time.Time) ([]attendance.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []attendance.Record{}
	for _, id := range s.openByEmpID {
		rec := s.records[id]
		if rec.CheckInTime.Before(openedBefore) {
			out = append(out, rec)
		}
	}
	sortByCheckIn(out)
	return out, nil
}

// Records returns a copy of every stored record ordered by check-in. Test-only helper.
func (s *AttendanceStore) Records() []attendance.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]attendance.Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sortByCheckIn(out)
	return out
}

func sortByCheckIn(records []attendance.Record) {
	sort.Slice(records, func(i, j int) bool { return records[i].CheckInTime.Before(records[j].CheckInTime) })
}

var _ attendance.Store = (*AttendanceStore)(nil)
