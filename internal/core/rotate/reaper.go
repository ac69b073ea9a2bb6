package rotate

import (
	"context"
	"fmt"
	"time"

	"github.com/backrot/backrot/internal/domain"
	"github.com/backrot/backrot/internal/logger"
	"github.com/backrot/backrot/internal/store"
)

// Reaper permanently deletes quarantined files that have sat out their
// retention. It is fixed to the quarantine tier and to FailurePolicyAbort:
// the first delete failure ends the pass and propagates to the caller. The
// store refuses deletes outside quarantine outright, so a misrouted reap
// cannot destroy retained files.
type Reaper struct {
	store  store.Store
	minAge int
	log    logger.Logger
}

// NewReaper creates a reaper with the given minimum age in days.
func NewReaper(st store.Store, minAge int, log logger.Logger) *Reaper {
	return &Reaper{
		store:  st,
		minAge: minAge,
		log:    log.With("component", "reap"),
	}
}

// Plan lists the deletions a pass would perform without touching anything.
func (p *Reaper) Plan(ctx context.Context, today time.Time) ([]Action, error) {
	files, err := Collect(ctx, p.store, domain.TierQuarantine, p.minAge, today)
	if err != nil {
		return nil, err
	}

	actions := make([]Action, 0, len(files))
	for _, f := range files {
		actions = append(actions, Action{
			Type:   ActionReap,
			File:   f,
			Source: domain.TierQuarantine,
			Reason: fmt.Sprintf("quarantined %d days", f.Age),
		})
	}
	return actions, nil
}

// Run deletes every planned file, stopping at the first failure.
// Returns the number of files actually deleted alongside any error.
func (p *Reaper) Run(ctx context.Context, today time.Time) (int, error) {
	actions, err := p.Plan(ctx, today)
	if err != nil {
		return 0, err
	}

	reaped := 0
	for _, a := range actions {
		if err := p.store.Remove(ctx, domain.TierQuarantine, a.File.Name); err != nil {
			return reaped, fmt.Errorf("deleting %s: %w", a.File.Name, err)
		}
		reaped++
		p.log.Info("reaped", "file", a.File.Name, "age", a.File.Age)
	}

	p.log.Debug("quarantine pass done", "reaped", reaped)
	return reaped, nil
}
