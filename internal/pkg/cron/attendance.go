package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/sse"
)

// Publisher is the write side of the SSE hub.
type Publisher interface {
	Publish(topic string, event sse.Event)
}

// StaleSession is published for every session left open past the threshold.
type StaleSession struct {
	AttendanceID string  `json:"attendance_id"`
	EmployeeID   string  `json:"employee_id"`
	Date         string  `json:"date"`
	CheckInTime  string  `json:"check_in_time"`
	OpenHours    float64 `json:"open_hours"`
}

// AttendanceJobs watches for sessions nobody closed. It only reports them;
// closing a session stays the employee's check-out.
type AttendanceJobs struct {
	store      attendance.Store
	publisher  Publisher
	staleAfter time.Duration
	interval   time.Duration
	location   *time.Location
	now        func() time.Time
}

func NewAttendanceJobs(
	store attendance.Store,
	publisher Publisher,
	staleAfter time.Duration,
	interval time.Duration,
	loc *time.Location,
) *AttendanceJobs {
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceJobs{
		store:      store,
		publisher:  publisher,
		staleAfter: staleAfter,
		interval:   interval,
		location:   loc,
		now:        time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) error {
	return scheduler.AddJob("report_stale_attendance_sessions", j.interval, j.ReportStaleSessions)
}

// ReportStaleSessions logs and publishes sessions open longer than staleAfter.
func (j *AttendanceJobs) ReportStaleSessions(ctx context.Context) error {
	now := j.now()

	sessions, err := j.store.FindStaleOpenSessions(ctx, now.Add(-j.staleAfter))
	if err != nil {
		return fmt.Errorf("failed to get stale sessions: %w", err)
	}

	if len(sessions) == 0 {
		slog.Debug("Cron: No stale attendance sessions")
		return nil
	}

	for _, s := range sessions {
		stale := StaleSession{
			AttendanceID: s.ID,
			EmployeeID:   s.EmployeeID,
			Date:         s.Date.String(),
			CheckInTime:  s.CheckInTime.In(j.location).Format(time.RFC3339),
			OpenHours:    now.Sub(s.CheckInTime).Hours(),
		}

		slog.Warn("Cron: Attendance session still open",
			"employee_id", stale.EmployeeID,
			"attendance_id", stale.AttendanceID,
			"check_in_time", stale.CheckInTime,
			"open_hours", stale.OpenHours)

		if j.publisher != nil {
			j.publisher.Publish(sse.TopicTeam, sse.Event{Type: sse.EventStaleSession, Data: stale})
		}
	}

	slog.Info("Cron: Reported stale attendance sessions", "count", len(sessions))
	return nil
}
