package service

import (
	"context"
	"fmt"
	"time"

	"github.com/backrot/backrot/internal/config"
	"github.com/backrot/backrot/internal/core/rotate"
	"github.com/backrot/backrot/internal/domain"
	"github.com/backrot/backrot/internal/lock"
	"github.com/backrot/backrot/internal/logger"
	"github.com/backrot/backrot/internal/scheduler"
	"github.com/backrot/backrot/internal/state"
	"github.com/backrot/backrot/internal/store"
)

// Service orchestrates rotation passes: bootstrap, the three tier
// rotators in order, then the quarantine reaper.
type Service struct {
	config *config.Config
	store  store.Store
	lock   *lock.FileLock // nil when disabled
	state  *state.Manager // nil when disabled

	log    logger.Logger // base logger, components derive their own
	runLog logger.Logger

	now func() time.Time
}

// RunReport summarizes one rotation pass.
type RunReport struct {
	Trigger   string
	StartTime time.Time
	EndTime   time.Time

	// Tiers holds per-tier results in run order
	Tiers []TierResult

	// Reaped counts quarantined files deleted for good
	Reaped int

	// Errors is the run-level tally: absorbed per-file failures plus one
	// for a propagating failure
	Errors int

	// LastError carries the propagating failure, if any
	LastError string

	// Skipped reports that the intake folder was missing and the whole
	// pass found nothing to do
	Skipped bool
}

// TierResult pairs a tier with its pass result
type TierResult struct {
	Tier   domain.Tier
	Result rotate.Result
}

// Promoted counts files moved up a tier across the whole run
func (r *RunReport) Promoted() int {
	n := 0
	for _, t := range r.Tiers {
		n += t.Result.Promoted
	}
	return n
}

// Quarantined counts files evicted to quarantine across the whole run
func (r *RunReport) Quarantined() int {
	n := 0
	for _, t := range r.Tiers {
		n += t.Result.Quarantined
	}
	return n
}

// Status maps the report to a run-history status
func (r *RunReport) Status() string {
	switch {
	case r.Skipped:
		return state.StatusSkipped
	case r.Errors > 0:
		return state.StatusErrors
	default:
		return state.StatusSuccess
	}
}

// New creates a rotation service from configuration
func New(cfg *config.Config, log logger.Logger) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if log == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	root, err := cfg.RootDir()
	if err != nil {
		return nil, err
	}

	st, err := store.NewLocal(root)
	if err != nil {
		return nil, fmt.Errorf("opening rotation root: %w", err)
	}

	s := &Service{
		config: cfg,
		store:  st,
		log:    log,
		runLog: log.With("component", "run"),
		now:    time.Now,
	}

	if cfg.Lock.Enabled {
		fileLock, err := lock.NewFileLock(config.HouseDir(root, cfg.Lock.Dir))
		if err != nil {
			return nil, fmt.Errorf("creating run lock: %w", err)
		}
		if cfg.Lock.StaleTimeout > 0 {
			fileLock.SetStaleTimeout(cfg.Lock.StaleTimeout)
		}
		s.lock = fileLock
	}

	if cfg.State.Enabled {
		stateMgr, err := state.NewManager(config.HouseDir(root, cfg.State.Dir))
		if err != nil {
			return nil, fmt.Errorf("opening run history: %w", err)
		}
		s.state = stateMgr
	}

	return s, nil
}

// Run performs one full rotation pass. Per-file failures and stage
// failures are absorbed into the report's error tally; the returned
// error only covers not being able to start the pass at all.
func (s *Service) Run(ctx context.Context, trigger string) (*RunReport, error) {
	if s.lock != nil {
		if err := s.lock.Acquire("rotate"); err != nil {
			if lock.IsLockError(err) {
				return nil, fmt.Errorf("%w: %s", domain.ErrRunInProgress, err)
			}
			return nil, fmt.Errorf("acquiring run lock: %w", err)
		}
		defer func() {
			if err := s.lock.Release(); err != nil {
				s.runLog.Error("failed to release run lock", "error", err)
			}
		}()
	}

	report := s.runPass(ctx, trigger)
	s.record(report)
	return report, nil
}

// runPass executes the orchestrated sequence. It never returns an error:
// a stage failure is logged, counted once, and ends the sequence early,
// but the summary line is always reached.
func (s *Service) runPass(ctx context.Context, trigger string) *RunReport {
	report := &RunReport{
		Trigger:   trigger,
		StartTime: s.now(),
	}
	today := domain.DateOnly(s.now())

	s.runLog.Debug("rotation pass starting", "trigger", trigger, "root", s.store.Root())

	dailyExists, err := s.store.TierExists(ctx, domain.TierDaily)
	if err != nil {
		return s.abort(report, "checking intake folder", err)
	}

	if dailyExists {
		if err := s.bootstrap(ctx); err != nil {
			return s.abort(report, "bootstrapping tier folders", err)
		}
	} else {
		// Not an error: without the intake folder every scan comes up
		// empty and the pass degrades to a no-op
		s.runLog.Debug("intake folder missing, scans will find nothing",
			"path", s.store.TierPath(domain.TierDaily))
	}

	for _, policy := range s.policies() {
		rotator := rotate.NewRotator(s.store, policy, s.log)
		res, err := rotator.Run(ctx, today)
		report.Tiers = append(report.Tiers, TierResult{Tier: policy.Source, Result: res})
		report.Errors += res.Errors
		if err != nil {
			return s.abort(report, fmt.Sprintf("rotating %s", policy.Source), err)
		}
	}

	reaper := rotate.NewReaper(s.store, s.config.Thresholds.Quarantine, s.log)
	reaped, err := reaper.Run(ctx, today)
	report.Reaped = reaped
	if err != nil {
		return s.abort(report, "reaping quarantine", err)
	}

	report.Skipped = !dailyExists &&
		report.Promoted()+report.Quarantined()+report.Reaped+report.Errors == 0

	return s.finalize(report)
}

// abort records a propagating stage failure as exactly one error and
// finalizes the report; later stages do not run.
func (s *Service) abort(report *RunReport, stage string, err error) *RunReport {
	report.Errors++
	report.LastError = err.Error()
	s.runLog.Error("rotation stage failed", "stage", stage, "error", err)
	return s.finalize(report)
}

// finalize stamps the end time and logs the terminal status line.
func (s *Service) finalize(report *RunReport) *RunReport {
	report.EndTime = s.now()
	duration := report.EndTime.Sub(report.StartTime).Round(time.Millisecond)

	if report.Errors > 0 {
		s.runLog.Warn("rotation completed with errors",
			"errors", report.Errors,
			"promoted", report.Promoted(),
			"quarantined", report.Quarantined(),
			"reaped", report.Reaped,
			"duration", duration.String())
	} else {
		s.runLog.Info("rotation completed successfully",
			"promoted", report.Promoted(),
			"quarantined", report.Quarantined(),
			"reaped", report.Reaped,
			"duration", duration.String())
	}
	return report
}

// bootstrap creates any missing tier folders besides the intake folder.
func (s *Service) bootstrap(ctx context.Context) error {
	for _, tier := range []domain.Tier{
		domain.TierWeekly,
		domain.TierMonthly,
		domain.TierYearly,
		domain.TierQuarantine,
	} {
		if err := s.store.EnsureTier(ctx, tier); err != nil {
			return fmt.Errorf("creating %s folder: %w", tier, err)
		}
	}
	return nil
}

func (s *Service) policies() []rotate.Policy {
	return rotate.Policies(
		s.config.Thresholds.Daily,
		s.config.Thresholds.Weekly,
		s.config.Thresholds.Monthly,
	)
}

// record saves the pass to run history. History is advisory: a save
// failure is logged and does not change the run's outcome.
func (s *Service) record(report *RunReport) {
	if s.state == nil {
		return
	}

	rec := state.RunRecord{
		Trigger:     report.Trigger,
		StartTime:   report.StartTime,
		EndTime:     report.EndTime,
		Status:      report.Status(),
		Promoted:    report.Promoted(),
		Quarantined: report.Quarantined(),
		Reaped:      report.Reaped,
		Errors:      report.Errors,
		Error:       report.LastError,
	}

	if err := s.state.SaveRun(rec); err != nil {
		s.runLog.Warn("failed to record run history", "error", err)
	}
}

// Plan lists every action a pass would take right now without moving,
// creating, or deleting anything.
func (s *Service) Plan(ctx context.Context) ([]rotate.Action, error) {
	today := domain.DateOnly(s.now())

	var actions []rotate.Action
	for _, policy := range s.policies() {
		rotator := rotate.NewRotator(s.store, policy, s.log)
		acts, err := rotator.Plan(ctx, today)
		if err != nil {
			return nil, fmt.Errorf("planning %s: %w", policy.Source, err)
		}
		actions = append(actions, acts...)
	}

	reaper := rotate.NewReaper(s.store, s.config.Thresholds.Quarantine, s.log)
	acts, err := reaper.Plan(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("planning quarantine: %w", err)
	}
	actions = append(actions, acts...)

	return actions, nil
}

// RunRotation implements scheduler.Runner. A pass that absorbed errors
// counts as a failed run in scheduler statistics.
func (s *Service) RunRotation(ctx context.Context, trigger string) error {
	report, err := s.Run(ctx, trigger)
	if err != nil {
		return err
	}
	if report.Errors > 0 {
		return fmt.Errorf("rotation completed with %d error(s)", report.Errors)
	}
	return nil
}

// History returns recent runs, most recent first
func (s *Service) History(limit int) ([]state.RunRecord, error) {
	if s.state == nil {
		return nil, fmt.Errorf("run history is disabled")
	}
	return s.state.GetHistory(limit)
}

// LastRun returns the most recent run, or nil if none exist
func (s *Service) LastRun() (*state.RunRecord, error) {
	if s.state == nil {
		return nil, fmt.Errorf("run history is disabled")
	}
	return s.state.GetLastRun()
}

// Root returns the resolved rotation root
func (s *Service) Root() string {
	return s.store.Root()
}

// Close releases held resources
func (s *Service) Close() error {
	if s.state != nil {
		return s.state.Close()
	}
	return nil
}

var _ scheduler.Runner = (*Service)(nil)
