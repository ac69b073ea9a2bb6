package scheduler

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchScheduler starts a rotation pass when new files land in the
// watched folder. Events are debounced so a batch of uploads triggers a
// single pass. The watch path must exist when the scheduler starts.
type WatchScheduler struct {
	config  Config
	runner  Runner
	watcher *fsnotify.Watcher

	// Runtime state
	mu          sync.RWMutex
	running     bool
	stopped     bool      // Track if stopped to prevent restart
	stopOnce    sync.Once // Ensure Stop() is idempotent
	closeOnce   sync.Once // Ensure stoppedChan is closed exactly once
	stopChan    chan struct{}
	stoppedChan chan struct{}
	timer       *time.Timer // Pending debounced pass, nil when idle

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

// NewWatchScheduler creates a new filesystem-event scheduler
func NewWatchScheduler(config Config, runner Runner) (*WatchScheduler, error) {
	if config.WatchPath == "" {
		return nil, fmt.Errorf("watch path cannot be empty")
	}

	if config.Debounce <= 0 {
		return nil, fmt.Errorf("debounce must be positive, got %v", config.Debounce)
	}

	if runner == nil {
		return nil, fmt.Errorf("rotation runner cannot be nil")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating filesystem watcher: %w", err)
	}

	return &WatchScheduler{
		config:      config,
		runner:      runner,
		watcher:     watcher,
		stopChan:    make(chan struct{}),
		stoppedChan: make(chan struct{}),
	}, nil
}

// Start begins watching for filesystem events
func (s *WatchScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	if s.stopped {
		return fmt.Errorf("scheduler cannot be restarted after stop")
	}

	if err := s.watcher.Add(s.config.WatchPath); err != nil {
		return fmt.Errorf("watching %s: %w", s.config.WatchPath, err)
	}

	s.running = true

	// Start the event loop in a goroutine
	go s.run(ctx)

	return nil
}

// run is the main event loop
func (s *WatchScheduler) run(ctx context.Context) {
	// Ensure stoppedChan is closed exactly once and stopped flag is set
	defer s.closeOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		s.running = false
		s.mu.Unlock()
		close(s.stoppedChan)
	})

	for {
		select {
		case <-ctx.Done():
			// Context cancelled - return gracefully
			return
		case <-s.stopChan:
			// Stop requested - return gracefully
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if !s.shouldProcess(event) {
				continue
			}
			s.scheduleRotation(ctx)
		case _, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are transient, keep watching
		}
	}
}

// shouldProcess filters filesystem events down to ones worth a pass
func (s *WatchScheduler) shouldProcess(event fsnotify.Event) bool {
	// A rotation pass renames files out of the watched folder. Only
	// creations and writes may start a new pass, or every pass would
	// retrigger itself through its own renames.
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return false
	}

	// Skip hidden files
	return !strings.HasPrefix(filepath.Base(event.Name), ".")
}

// scheduleRotation arms the debounce timer. Each qualifying event resets
// it, so the pass starts one quiet period after the last event.
func (s *WatchScheduler) scheduleRotation(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}

	s.timer = time.AfterFunc(s.config.Debounce, func() {
		select {
		case <-s.stopChan:
			return
		default:
		}
		s.executeRotation(ctx)
	})
	s.stats.nextRunTime = time.Now().Add(s.config.Debounce)
}

// executeRotation runs a single rotation pass and records the outcome
func (s *WatchScheduler) executeRotation(ctx context.Context) {
	s.mu.Lock()
	s.stats.lastRunTime = time.Now()
	s.stats.totalRuns++
	s.stats.nextRunTime = time.Time{}
	s.mu.Unlock()

	err := s.runner.RunRotation(ctx, ModeWatch)

	// Update statistics
	s.mu.Lock()
	if err != nil {
		s.stats.failedRuns++
		s.stats.lastError = err.Error()
	} else {
		s.stats.successfulRuns++
		s.stats.lastError = ""
	}
	s.mu.Unlock()
}

// Stop gracefully stops the scheduler
func (s *WatchScheduler) Stop() error {
	s.mu.RLock()
	if !s.running {
		s.mu.RUnlock()
		return fmt.Errorf("scheduler is not running")
	}
	s.mu.RUnlock()

	// Closing the watcher also closes its event channels, which
	// unblocks the run loop
	s.stopOnce.Do(func() {
		close(s.stopChan)
		s.watcher.Close() //nolint:errcheck
	})

	// Wait for scheduler to stop
	<-s.stoppedChan

	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.stopped = true
	s.mu.Unlock()

	return nil
}

// Status returns the current scheduler status
func (s *WatchScheduler) Status() *Status {
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
