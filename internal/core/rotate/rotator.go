package rotate

import (
	"context"
	"fmt"
	"time"

	"github.com/backrot/backrot/internal/domain"
	"github.com/backrot/backrot/internal/logger"
	"github.com/backrot/backrot/internal/store"
)

// Rotator moves aged files out of one tier: promotion into the next tier on
// a calendar boundary, eviction to quarantine otherwise.
type Rotator struct {
	store  store.Store
	policy Policy
	log    logger.Logger
}

// Result summarizes one rotation pass over a tier.
type Result struct {
	// Promoted counts files moved into the target tier
	Promoted int

	// Quarantined counts files evicted to quarantine
	Quarantined int

	// Errors counts per-file failures that were absorbed
	Errors int
}

// NewRotator creates a rotator bound to one tier policy.
func NewRotator(st store.Store, policy Policy, log logger.Logger) *Rotator {
	return &Rotator{
		store:  st,
		policy: policy,
		log:    log.With("component", "rotate", "tier", policy.Source.String()),
	}
}

// Plan decides the disposition of every eligible file without touching the
// filesystem.
func (r *Rotator) Plan(ctx context.Context, today time.Time) ([]Action, error) {
	files, err := Collect(ctx, r.store, r.policy.Source, r.policy.MinAge, today)
	if err != nil {
		return nil, err
	}

	actions := make([]Action, 0, len(files))
	for _, f := range files {
		actions = append(actions, r.decide(f, today))
	}
	return actions, nil
}

// decide maps one file to its action under the bound policy.
func (r *Rotator) decide(f domain.DatedFile, today time.Time) Action {
	if r.policy.Promote(f) {
		return Action{
			Type:       ActionPromote,
			File:       f,
			Source:     r.policy.Source,
			Target:     r.policy.Target,
			TargetName: f.Name,
			Reason:     boundaryName(f),
		}
	}
	return Action{
		Type:       ActionQuarantine,
		File:       f,
		Source:     r.policy.Source,
		Target:     domain.TierQuarantine,
		TargetName: QuarantineName(today, f.Name),
		Reason:     fmt.Sprintf("age %d, no calendar boundary", f.Age),
	}
}

// boundaryName picks the most specific boundary the file sits on.
func boundaryName(f domain.DatedFile) string {
	switch {
	case f.FirstOfYear():
		return "first of year"
	case f.FirstOfMonth():
		return "first of month"
	case f.FirstOfWeek():
		return "first of week"
	}
	return ""
}

// Run plans and applies one pass over the bound tier. Under
// FailurePolicyContinue a per-file failure is logged and counted and the
// remaining files still get their turn; under FailurePolicyAbort the first
// failure propagates.
func (r *Rotator) Run(ctx context.Context, today time.Time) (Result, error) {
	actions, err := r.Plan(ctx, today)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, a := range actions {
		if err := r.store.Move(ctx, a.Source, a.File.Name, a.Target, a.TargetName); err != nil {
			wrapped := fmt.Errorf("moving %s to %s: %w", a.File.Name, a.Target, err)
			if r.policy.OnFailure == FailurePolicyAbort {
				return res, wrapped
			}
			res.Errors++
			r.log.Error("move failed",
				"file", a.File.Name,
				"target", a.Target.String(),
				"error", wrapped)
			continue
		}

		switch a.Type {
		case ActionPromote:
			res.Promoted++
			r.log.Info("promoted",
				"file", a.File.Name,
				"to", a.Target.String(),
				"age", a.File.Age,
				"boundary", a.Reason)
		case ActionQuarantine:
			res.Quarantined++
			r.log.Info("quarantined",
				"file", a.File.Name,
				"as", a.TargetName,
				"age", a.File.Age)
		}
	}

	r.log.Debug("tier pass done",
		"promoted", res.Promoted,
		"quarantined", res.Quarantined,
		"errors", res.Errors)
	return res, nil
}
