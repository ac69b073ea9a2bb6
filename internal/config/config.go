package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/backrot/backrot/internal/domain"
	"github.com/backrot/backrot/internal/scheduler"
)

// Config represents the complete configuration for backrot
type Config struct {
	// Root is the rotation root holding the tier folders.
	// Empty selects the executable's directory, matching an install where
	// the binary sits next to its backup folders.
	Root string `mapstructure:"root"`

	// Thresholds are the per-tier minimum ages in whole days
	Thresholds ThresholdConfig `mapstructure:"thresholds"`

	// Log configures the process logger
	Log LogConfig `mapstructure:"log"`

	// Lock configures whole-run serialization
	Lock LockConfig `mapstructure:"lock"`

	// State configures run-history recording
	State StateConfig `mapstructure:"state"`

	// Daemon configures the long-running mode
	Daemon DaemonConfig `mapstructure:"daemon"`

	// StrictExit makes a pass that absorbed errors exit non-zero.
	// Off by default: the stock behavior reports errors in the summary
	// line only and always exits zero.
	StrictExit bool `mapstructure:"strict_exit"`
}

// ThresholdConfig holds the minimum ages, in whole days, before a file may
// leave its tier.
type ThresholdConfig struct {
	Daily      int `mapstructure:"daily"`
	Weekly     int `mapstructure:"weekly"`
	Monthly    int `mapstructure:"monthly"`
	Quarantine int `mapstructure:"quarantine"`
}

// LogConfig configures the process logger
type LogConfig struct {
	// Level is the minimum severity; the -v flag overrides it
	Level string `mapstructure:"level"`

	// Format is "text" or "json"
	Format string `mapstructure:"format"`

	// File configures the optional rotating log file
	File LogFileConfig `mapstructure:"file"`
}

// LogFileConfig configures the rotating log file
type LogFileConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// LockConfig configures the instance lock
type LockConfig struct {
	// Enabled serializes whole runs through a lock file. Disable to allow
	// overlapping invocations, as the stock tool did.
	Enabled bool `mapstructure:"enabled"`

	// Dir holds the lock file; empty means <root>/.backrot
	Dir string `mapstructure:"dir"`

	// StaleTimeout ages out locks from unreachable hosts
	StaleTimeout time.Duration `mapstructure:"stale_timeout"`
}

// StateConfig configures run-history recording
type StateConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Dir holds the history database; empty means <root>/.backrot
	Dir string `mapstructure:"dir"`
}

// DaemonConfig configures the long-running mode
type DaemonConfig struct {
	// Mode selects the trigger: interval, cron, or watch
	Mode string `mapstructure:"mode"`

	// Interval between passes (interval mode)
	Interval time.Duration `mapstructure:"interval"`

	// Schedule is a standard five-field cron expression (cron mode)
	Schedule string `mapstructure:"schedule"`

	// Debounce is the quiet window after the last folder event before a
	// pass triggers (watch mode)
	Debounce time.Duration `mapstructure:"debounce"`
}

// Validate checks if the configuration is complete and consistent
func (c *Config) Validate() error {
	if c.Thresholds.Daily < 0 || c.Thresholds.Weekly < 0 ||
		c.Thresholds.Monthly < 0 || c.Thresholds.Quarantine < 0 {
		return fmt.Errorf("%w: thresholds cannot be negative", domain.ErrConfigInvalid)
	}

	switch c.Daemon.Mode {
	case scheduler.ModeInterval:
		if c.Daemon.Interval <= 0 {
			return fmt.Errorf("%w: daemon interval must be positive, got %v",
				domain.ErrConfigInvalid, c.Daemon.Interval)
		}
	case scheduler.ModeCron:
		if c.Daemon.Schedule == "" {
			return fmt.Errorf("%w: daemon mode cron needs a schedule", domain.ErrConfigInvalid)
		}
	case scheduler.ModeWatch:
		if c.Daemon.Debounce <= 0 {
			return fmt.Errorf("%w: watch debounce must be positive, got %v",
				domain.ErrConfigInvalid, c.Daemon.Debounce)
		}
	default:
		return fmt.Errorf("%w: unknown daemon mode: %q", domain.ErrConfigInvalid, c.Daemon.Mode)
	}

	if c.Lock.StaleTimeout < 0 {
		return fmt.Errorf("%w: lock stale_timeout cannot be negative", domain.ErrConfigInvalid)
	}

	if c.Log.File.Enabled && c.Log.File.Path == "" {
		return fmt.Errorf("%w: log file enabled without a path", domain.ErrConfigInvalid)
	}

	return nil
}

// RootDir resolves the rotation root. An explicit setting wins; otherwise
// the executable's directory is used.
func (c *Config) RootDir() (string, error) {
	if c.Root != "" {
		return ExpandPath(c.Root), nil
	}

	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolving default root: %w", err)
	}
	return filepath.Dir(exe), nil
}

// HouseDir returns the housekeeping directory for lock, state, and pidfile,
// defaulting to .backrot under the root. The housekeeping dir sits outside
// every tier folder, so scans never see it.
func HouseDir(root, override string) string {
	if override != "" {
		return ExpandPath(override)
	}
	return filepath.Join(root, ".backrot")
}

// ExpandPath expands ~ and environment variables in a path
func ExpandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			if len(path) > 1 && (path[1] == '/' || path[1] == filepath.Separator) {
				path = filepath.Join(home, path[2:])
			} else if len(path) == 1 {
				path = home
			}
		}
	}
	path = os.ExpandEnv(path)
	return filepath.Clean(path)
}
