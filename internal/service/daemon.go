package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/backrot/backrot/internal/config"
	"github.com/backrot/backrot/internal/daemon"
	"github.com/backrot/backrot/internal/domain"
	"github.com/backrot/backrot/internal/logger"
	"github.com/backrot/backrot/internal/scheduler"
	"github.com/backrot/backrot/internal/state"
)

// DaemonService keeps rotation passes running on the configured trigger
type DaemonService struct {
	mu        sync.RWMutex
	config    *config.Config
	rotation  *Service
	scheduler scheduler.Scheduler
	pidFile   *daemon.PIDFile
	log       logger.Logger
}

// DaemonStatus represents the current daemon status
type DaemonStatus struct {
	Running        bool
	SchedulerStats *scheduler.Status
	LastRun        *state.RunRecord
}

// PIDPath returns where a daemon serving the given root writes its pid file
func PIDPath(root string) string {
	return filepath.Join(config.HouseDir(root, ""), "daemon.pid")
}

// NewDaemonService creates a daemon around a new rotation service
func NewDaemonService(cfg *config.Config, log logger.Logger) (*DaemonService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	rotation, err := New(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("creating rotation service: %w", err)
	}

	return &DaemonService{
		config:   cfg,
		rotation: rotation,
		pidFile:  daemon.NewPIDFile(PIDPath(rotation.Root())),
		log:      log.With("component", "daemon"),
	}, nil
}

// Start writes the pid file, runs a catch-up pass, and starts the
// scheduler in the background
func (d *DaemonService) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.scheduler != nil {
		return fmt.Errorf("daemon is already running")
	}

	if err := d.pidFile.Write(); err != nil {
		return fmt.Errorf("writing pid file: %w", err)
	}

	// Files keep aging while the daemon is down; one pass up front
	// clears the backlog before the first scheduled trigger
	if err := d.rotation.RunRotation(ctx, "startup"); err != nil {
		d.log.Warn("startup rotation pass failed", "error", err)
	}

	schedConfig := scheduler.Config{
		Mode:      d.config.Daemon.Mode,
		Interval:  d.config.Daemon.Interval,
		Schedule:  d.config.Daemon.Schedule,
		WatchPath: d.rotation.store.TierPath(domain.TierDaily),
		Debounce:  d.config.Daemon.Debounce,
	}

	sched, err := scheduler.New(schedConfig, d.rotation)
	if err != nil {
		d.pidFile.Remove()
		return fmt.Errorf("creating scheduler: %w", err)
	}

	if err := sched.Start(ctx); err != nil {
		d.pidFile.Remove()
		return fmt.Errorf("starting scheduler: %w", err)
	}

	d.scheduler = sched
	d.log.Info("daemon started",
		"mode", d.config.Daemon.Mode,
		"root", d.rotation.Root())
	return nil
}

// Stop stops the scheduler and removes the pid file
func (d *DaemonService) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.scheduler == nil {
		return fmt.Errorf("daemon is not running")
	}

	if err := d.scheduler.Stop(); err != nil {
		return fmt.Errorf("stopping scheduler: %w", err)
	}
	d.scheduler = nil

	if err := d.pidFile.Remove(); err != nil {
		d.log.Warn("failed to remove pid file", "error", err)
	}

	d.log.Info("daemon stopped")
	return nil
}

// Status returns the current daemon status
func (d *DaemonService) Status() *DaemonStatus {
	d.mu.RLock()
	defer d.mu.RUnlock()

	status := &DaemonStatus{
		Running: d.scheduler != nil,
	}

	if d.scheduler != nil {
		status.SchedulerStats = d.scheduler.Status()
	}

	// Run history is optional; without it LastRun stays nil
	if rec, err := d.rotation.LastRun(); err == nil {
		status.LastRun = rec
	}

	return status
}

// Close releases all resources
func (d *DaemonService) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var lastErr error

	if d.scheduler != nil {
		if err := d.scheduler.Stop(); err != nil {
			lastErr = err
		}
		d.scheduler = nil

		if err := d.pidFile.Remove(); err != nil && lastErr == nil {
			lastErr = err
		}
	}

	if d.rotation != nil {
		if err := d.rotation.Close(); err != nil {
			lastErr = err
		}
	}

	return lastErr
}
