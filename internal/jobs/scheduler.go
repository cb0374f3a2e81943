// Package jobs runs background work for the ERP API on cron schedules.
package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler manages background jobs using cron scheduling.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
	mu     sync.Mutex
	jobs   map[string]cron.EntryID
}

// cronLogger adapts zap to cron's logger so skipped runs and recovered panics
// end up in the application log
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}

// NewScheduler creates a scheduler whose expressions are evaluated in loc.
// Expressions carry a seconds field.
func NewScheduler(loc *time.Location, logger *zap.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	cl := cronLogger{logger: logger.Named("cron").Sugar()}
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(
				cron.SkipIfStillRunning(cl),
				cron.Recover(cl),
			),
		),
		logger: logger,
		jobs:   make(map[string]cron.EntryID),
	}
}

// Start starts the scheduler. Jobs added before this call will begin running.
func (s *Scheduler) Start() {
	s.logger.Info("starting job scheduler", zap.Strings("jobs", s.JobNames()))
	s.cron.Start()
}

// Stop stops scheduling; the returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("stopping job scheduler")
	return s.cron.Stop()
}

// AddJob registers job under a unique name.
// Examples: "0 5 0 * * *" (00:05:00 daily), "@every 1h".
func (s *Scheduler) AddJob(name string, cronExpr string, job func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already exists", name)
	}

	entryID, err := s.cron.AddFunc(cronExpr, func() {
		start := time.Now()
		s.logger.Info("running scheduled job", zap.String("job_name", name))
		job()
		s.logger.Info("completed scheduled job",
			zap.String("job_name", name),
			zap.Duration("duration", time.Since(start)))
	})
	if err != nil {
		return fmt.Errorf("failed to add job %s: %w", name, err)
	}

	s.jobs[name] = entryID
	s.logger.Info("added scheduled job",
		zap.String("job_name", name),
		zap.String("cron_expr", cronExpr))

	return nil
}

// RemoveJob removes a job by name.
func (s *Scheduler) RemoveJob(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, exists := s.jobs[name]
	if !exists {
		return fmt.Errorf("job %s not found", name)
	}

	s.cron.Remove(entryID)
	delete(s.jobs, name)

	s.logger.Info("removed scheduled job", zap.String("job_name", name))
	return nil
}

// JobNames returns the registered job names in sorted order.
func (s *Scheduler) JobNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NextRun reports when the named job fires next. The zero time means the
// scheduler has not been started.
func (s *Scheduler) NextRun(name string) (time.Time, bool) {
	s.mu.Lock()
	entryID, exists := s.jobs[name]
	s.mu.Unlock()
	if !exists {
		return time.Time{}, false
	}
	return s.cron.Entry(entryID).Next, true
}
