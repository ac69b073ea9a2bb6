package scheduler

import (
	"context"
	"fmt"
	"time"
)

// Scheduling modes. The mode string doubles as the trigger name recorded
// with each run it starts.
const (
	ModeInterval = "interval"
	ModeCron     = "cron"
	ModeWatch    = "watch"
)

// Scheduler defines the interface for rotation schedulers
type Scheduler interface {
	// Start begins the scheduling loop
	Start(ctx context.Context) error

	// Stop gracefully stops the scheduler
	Stop() error

	// Status returns the current scheduler status
	Status() *Status
}

// Status represents the current state of a scheduler
type Status struct {
	Running        bool
	LastRunTime    time.Time
	NextRunTime    time.Time
	TotalRuns      int
	SuccessfulRuns int
	FailedRuns     int
	LastError      string
}

// Config contains scheduler configuration
type Config struct {
	// Mode specifies the scheduling mode ("interval", "cron" or "watch")
	Mode string

	// Interval specifies the duration between rotation passes (interval mode)
	Interval time.Duration

	// Schedule is a standard five-field cron expression (cron mode)
	Schedule string

	// WatchPath is the directory whose changes trigger a pass (watch mode)
	WatchPath string

	// Debounce is the quiet period after a filesystem event before a
	// pass starts (watch mode)
	Debounce time.Duration
}

// Runner is the interface that schedulers use to execute rotation passes
type Runner interface {
	// RunRotation executes one full rotation pass. The trigger names
	// what started the pass and ends up in the run history.
	RunRotation(ctx context.Context, trigger string) error
}

// New creates the scheduler selected by config.Mode.
func New(config Config, runner Runner) (Scheduler, error) {
	switch config.Mode {
	case ModeInterval:
		return NewIntervalScheduler(config, runner)
	case ModeCron:
		return NewCronScheduler(config, runner)
	case ModeWatch:
		return NewWatchScheduler(config, runner)
	default:
		return nil, fmt.Errorf("unknown scheduler mode %q", config.Mode)
	}
}
