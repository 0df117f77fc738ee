package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// JobFunc is one run of a periodic job. The context ends when the scheduler
// stops or the run exceeds its interval.
type JobFunc func(ctx context.Context) error

type job struct {
	name     string
	interval time.Duration
	run      JobFunc
}

// Scheduler runs background jobs on fixed intervals, each job on its own
// goroutine. A job runs once on Start and then on every tick.
type Scheduler struct {
	mu      sync.Mutex
	jobs    []job
	now     func() time.Time
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

func NewScheduler() *Scheduler {
	return &Scheduler{now: time.Now}
}

// AddJob registers a job. Jobs added after Start are not scheduled.
func (s *Scheduler) AddJob(name string, interval time.Duration, fn JobFunc) error {
	if interval <= 0 {
		return fmt.Errorf("cron job %s: interval must be positive, got %s", name, interval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, job{name: name, interval: interval, run: fn})
	slog.Info("Cron job registered", "name", name, "interval", interval)
	return nil
}

// Start schedules every registered job until ctx is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	for _, j := range s.jobs {
		s.wg.Add(1)
		go s.loop(ctx, j)
	}

	slog.Info("Cron scheduler started", "job_count", len(s.jobs))
}

// Stop cancels running jobs and waits for their goroutines to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	slog.Info("Stopping cron scheduler...")
	cancel()
	s.wg.Wait()
	slog.Info("Cron scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, j job) {
	defer s.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	s.execute(ctx, j)
	for {
		select {
		case <-ctx.Done():
			slog.Info("Cron job stopping", "name", j.name)
			return
		case <-ticker.C:
			s.execute(ctx, j)
		}
	}
}

// execute bounds a run by the job interval so a stuck store call cannot
// pile up behind the next tick.
func (s *Scheduler) execute(ctx context.Context, j job) error {
	ctx, cancel := context.WithTimeout(ctx, j.interval)
	defer cancel()

	start := s.now()
	err := j.run(ctx)
	elapsed := s.now().Sub(start)

	if err != nil {
		slog.Error("Cron job failed", "name", j.name, "error", err, "duration", elapsed)
		return fmt.Errorf("cron job %s: %w", j.name, err)
	}
	slog.Debug("Cron job completed", "name", j.name, "duration", elapsed)
	return nil
}

// RunOnce runs every job a single time, in registration order, and returns
// the failures joined.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	s.mu.Lock()
	jobs := append([]job(nil), s.jobs...)
	s.mu.Unlock()

	var errs []error
	for _, j := range jobs {
		if err := s.execute(ctx, j); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
