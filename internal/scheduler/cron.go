package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// CronScheduler runs rotation passes on a cron schedule.
//
// Common expressions:
//   - "0 3 * * *"   - daily at 3 AM
//   - "0 */6 * * *" - every 6 hours
//   - "0 0 * * 0"   - weekly on Sunday at midnight
type CronScheduler struct {
	config Config
	runner Runner
	cron   *cron.Cron

	// Runtime state
	mu       sync.RWMutex
	running  bool
	stopped  bool      // Track if stopped to prevent restart
	stopOnce sync.Once // Ensure Stop() is idempotent
	stopChan chan struct{}

	// Statistics
	stats struct {
		lastRunTime    time.Time
		nextRunTime    time.Time
		totalRuns      int
		successfulRuns int
		failedRuns     int
		lastError      string
	}
}

// NewCronScheduler creates a new cron-based scheduler
func NewCronScheduler(config Config, runner Runner) (*CronScheduler, error) {
	if config.Schedule == "" {
		return nil, fmt.Errorf("cron schedule cannot be empty")
	}

	// Validate the expression up front so a bad schedule fails at
	// startup instead of silently never firing
	if _, err := cron.ParseStandard(config.Schedule); err != nil {
		return nil, fmt.Errorf("invalid cron schedule %q: %w", config.Schedule, err)
	}

	if runner == nil {
		return nil, fmt.Errorf("rotation runner cannot be nil")
	}

	return &CronScheduler{
		config:   config,
		runner:   runner,
		cron:     cron.New(),
		stopChan: make(chan struct{}),
	}, nil
}

// Start begins the scheduling loop
func (s *CronScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	if s.stopped {
		return fmt.Errorf("scheduler cannot be restarted after stop")
	}

	if _, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.executeRotation(ctx)
	}); err != nil {
		return fmt.Errorf("scheduling rotation: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.stats.nextRunTime = s.nextEntryTime()

	// Stop with the context so daemon shutdown drains a running pass
	go func() {
		select {
		case <-ctx.Done():
			s.Stop() //nolint:errcheck
		case <-s.stopChan:
		}
	}()

	return nil
}

// executeRotation runs a single rotation pass and records the outcome
func (s *CronScheduler) executeRotation(ctx context.Context) {
	s.mu.Lock()
	s.stats.lastRunTime = time.Now()
	s.stats.totalRuns++
	s.mu.Unlock()

	err := s.runner.RunRotation(ctx, ModeCron)

	s.mu.Lock()
	if err != nil {
		s.stats.failedRuns++
		s.stats.lastError = err.Error()
	} else {
		s.stats.successfulRuns++
		s.stats.lastError = ""
	}
	s.stats.nextRunTime = s.nextEntryTime()
	s.mu.Unlock()
}

// Stop gracefully stops the scheduler and waits for a running pass to finish
func (s *CronScheduler) Stop() error {
	s.mu.RLock()
	if !s.running {
		s.mu.RUnlock()
		return fmt.Errorf("scheduler is not running")
	}
	s.mu.RUnlock()

	s.stopOnce.Do(func() {
		close(s.stopChan)
		drained := s.cron.Stop()
		<-drained.Done()
	})

	s.mu.Lock()
	s.running = false
	s.stopped = true
	s.mu.Unlock()

	return nil
}

// Status returns the current scheduler status
func (s *CronScheduler) Status() *Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return &Status{
		Running:        s.running,
		LastRunTime:    s.stats.lastRunTime,
		NextRunTime:    s.stats.nextRunTime,
		TotalRuns:      s.stats.totalRuns,
		SuccessfulRuns: s.stats.successfulRuns,
		FailedRuns:     s.stats.failedRuns,
		LastError:      s.stats.lastError,
	}
}

// nextEntryTime reports when the cron entry fires next. The cron
// instance has its own lock, so this is safe to call with s.mu held.
func (s *CronScheduler) nextEntryTime() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}
