package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/backrot/backrot/internal/testutil"
)

// mockRunner is a mock implementation of Runner for testing
type mockRunner struct {
	mu        sync.Mutex
	triggers  []string
	shouldErr bool
	delay     time.Duration
}

func (m *mockRunner) RunRotation(ctx context.Context, trigger string) error {
	m.mu.Lock()
	m.triggers = append(m.triggers, trigger)
	m.mu.Unlock()

	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if m.shouldErr {
		return context.DeadlineExceeded
	}
	return nil
}

func (m *mockRunner) Triggers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, len(m.triggers))
	copy(out, m.triggers)
	return out
}

func TestNew_SelectsMode(t *testing.T) {
	runner := &mockRunner{}

	s, err := New(Config{Mode: ModeInterval, Interval: time.Second}, runner)
	if err != nil {
		t.Fatalf("Failed to create interval scheduler: %v", err)
	}
	if _, ok := s.(*IntervalScheduler); !ok {
		t.Errorf("Expected *IntervalScheduler, got %T", s)
	}

	s, err = New(Config{Mode: ModeCron, Schedule: "0 3 * * *"}, runner)
	if err != nil {
		t.Fatalf("Failed to create cron scheduler: %v", err)
	}
	if _, ok := s.(*CronScheduler); !ok {
		t.Errorf("Expected *CronScheduler, got %T", s)
	}

	dir, cleanup := testutil.TempDir(t)
	defer cleanup()

	s, err = New(Config{Mode: ModeWatch, WatchPath: dir, Debounce: time.Second}, runner)
	if err != nil {
		t.Fatalf("Failed to create watch scheduler: %v", err)
	}
	if _, ok := s.(*WatchScheduler); !ok {
		t.Errorf("Expected *WatchScheduler, got %T", s)
	}

	if _, err := New(Config{Mode: "hourly"}, runner); err == nil {
		t.Error("Expected error for unknown mode, got nil")
	}
}

func TestNewIntervalScheduler(t *testing.T) {
	runner := &mockRunner{}

	// Valid configuration
	config := Config{
		Mode:     ModeInterval,
		Interval: 1 * time.Second,
	}

	scheduler, err := NewIntervalScheduler(config, runner)
	if err != nil {
		t.Fatalf("Failed to create scheduler: %v", err)
	}

	if scheduler == nil {
		t.Fatal("Scheduler is nil")
	}
}

func TestNewIntervalScheduler_InvalidInterval(t *testing.T) {
	runner := &mockRunner{}

	config := Config{
		Mode:     ModeInterval,
		Interval: 0, // Invalid
	}

	_, err := NewIntervalScheduler(config, runner)
	if err == nil {
		t.Error("Expected error for zero interval, got nil")
	}
}

func TestNewIntervalScheduler_NilRunner(t *testing.T) {
	config := Config{
		Mode:     ModeInterval,
		Interval: 1 * time.Second,
	}

	_, err := NewIntervalScheduler(config, nil)
	if err == nil {
		t.Error("Expected error for nil runner, got nil")
	}
}

func TestIntervalScheduler_Start(t *testing.T) {
	runner := &mockRunner{}
	config := Config{
		Mode:     ModeInterval,
		Interval: 100 * time.Millisecond,
	}

	scheduler, err := NewIntervalScheduler(config, runner)
	if err != nil {
		t.Fatalf("Failed to create scheduler: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = scheduler.Start(ctx)
	if err != nil {
		t.Fatalf("Failed to start scheduler: %v", err)
	}

	// Check status
	status := scheduler.Status()
	if !status.Running {
		t.Error("Scheduler should be running")
	}

	// Wait for at least 2 runs
	time.Sleep(250 * time.Millisecond)

	status = scheduler.Status()
	if status.TotalRuns < 2 {
		t.Errorf("Expected at least 2 runs, got %d", status.TotalRuns)
	}

	// Stop scheduler
	cancel()
	time.Sleep(50 * time.Millisecond)
}

func TestIntervalScheduler_TriggerName(t *testing.T) {
	runner := &mockRunner{}
	config := Config{
		Mode:     ModeInterval,
		Interval: 50 * time.Millisecond,
	}

	scheduler, err := NewIntervalScheduler(config, runner)
	if err != nil {
		t.Fatalf("Failed to create scheduler: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := scheduler.Start(ctx); err != nil {
		t.Fatalf("Failed to start scheduler: %v", err)
	}

	testutil.AssertEventually(t, time.Second, func() bool {
		return len(runner.Triggers()) > 0
	}, "expected at least one rotation pass")

	triggers := runner.Triggers()
	if triggers[0] != ModeInterval {
		t.Errorf("Expected trigger %q, got %q", ModeInterval, triggers[0])
	}

	cancel()
	time.Sleep(50 * time.Millisecond)
}

func TestIntervalScheduler_Stop(t *testing.T) {
	runner := &mockRunner{}
	config := Config{
		Mode:     ModeInterval,
		Interval: 100 * time.Millisecond,
	}

	scheduler, err := NewIntervalScheduler(config, runner)
	if err != nil {
		t.Fatalf("Failed to create scheduler: %v", err)
	}

	ctx := context.Background()

	err = scheduler.Start(ctx)
	if err != nil {
		t.Fatalf("Failed to start scheduler: %v", err)
	}

	// Wait a bit
	time.Sleep(150 * time.Millisecond)

	// Stop scheduler
	err = scheduler.Stop()
	if err != nil {
		t.Fatalf("Failed to stop scheduler: %v", err)
	}

	// Check status
	status := scheduler.Status()
	if status.Running {
		t.Error("Scheduler should not be running after stop")
	}
}

func TestIntervalScheduler_DoubleStart(t *testing.T) {
	runner := &mockRunner{}
	config := Config{
		Mode:     ModeInterval,
		Interval: 1 * time.Second,
	}

	scheduler, err := NewIntervalScheduler(config, runner)
	if err != nil {
		t.Fatalf("Failed to create scheduler: %v", err)
	}

	ctx := context.Background()

	err = scheduler.Start(ctx)
	if err != nil {
		t.Fatalf("Failed to start scheduler: %v", err)
	}
	defer scheduler.Stop()

	// Try to start again
	err = scheduler.Start(ctx)
	if err == nil {
		t.Error("Expected error when starting already running scheduler")
	}
}

func TestIntervalScheduler_StopNotRunning(t *testing.T) {
	runner := &mockRunner{}
	config := Config{
		Mode:     ModeInterval,
		Interval: 1 * time.Second,
	}

	scheduler, err := NewIntervalScheduler(config, runner)
	if err != nil {
		t.Fatalf("Failed to create scheduler: %v", err)
	}

	// Try to stop without starting
	err = scheduler.Stop()
	if err == nil {
		t.Error("Expected error when stopping non-running scheduler")
	}
}

func TestIntervalScheduler_ContextCancellation(t *testing.T) {
	runner := &mockRunner{}
	config := Config{
		Mode:     ModeInterval,
		Interval: 100 * time.Millisecond,
	}

	scheduler, err := NewIntervalScheduler(config, runner)
	if err != nil {
		t.Fatalf("Failed to create scheduler: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	err = scheduler.Start(ctx)
	if err != nil {
		t.Fatalf("Failed to start scheduler: %v", err)
	}

	// Wait a bit
	time.Sleep(150 * time.Millisecond)

	// Cancel context
	cancel()

	// Wait for scheduler to stop
	time.Sleep(100 * time.Millisecond)

	// Check status
	status := scheduler.Status()
	if status.Running {
		t.Error("Scheduler should stop when context is cancelled")
	}
}

func TestIntervalScheduler_ErrorHandling(t *testing.T) {
	runner := &mockRunner{shouldErr: true}
	config := Config{
		Mode:     ModeInterval,
		Interval: 100 * time.Millisecond,
	}

	scheduler, err := NewIntervalScheduler(config, runner)
	if err != nil {
		t.Fatalf("Failed to create scheduler: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = scheduler.Start(ctx)
	if err != nil {
		t.Fatalf("Failed to start scheduler: %v", err)
	}

	// Wait for at least 2 runs
	time.Sleep(250 * time.Millisecond)

	status := scheduler.Status()
	if status.FailedRuns == 0 {
		t.Error("Expected failed runs when runner returns error")
	}

	if status.LastError == "" {
		t.Error("Expected last error to be set")
	}

	cancel()
	time.Sleep(50 * time.Millisecond)
}

func TestIntervalScheduler_Statistics(t *testing.T) {
	runner := &mockRunner{}
	config := Config{
		Mode:     ModeInterval,
		Interval: 50 * time.Millisecond,
	}

	scheduler, err := NewIntervalScheduler(config, runner)
	if err != nil {
		t.Fatalf("Failed to create scheduler: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = scheduler.Start(ctx)
	if err != nil {
		t.Fatalf("Failed to start scheduler: %v", err)
	}

	// Wait for multiple runs
	time.Sleep(150 * time.Millisecond)

	status := scheduler.Status()

	if status.TotalRuns == 0 {
		t.Error("Expected total runs > 0")
	}

	if status.SuccessfulRuns == 0 {
		t.Error("Expected successful runs > 0")
	}

	if !status.LastRunTime.IsZero() {
		// Last run time should be recent
		if time.Since(status.LastRunTime) > 200*time.Millisecond {
			t.Error("Last run time seems too old")
		}
	}

	if status.NextRunTime.IsZero() {
		t.Error("Next run time should be set")
	}

	cancel()
	time.Sleep(50 * time.Millisecond)
}
