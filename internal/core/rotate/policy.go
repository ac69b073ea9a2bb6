package rotate

import (
	"time"

	"github.com/backrot/backrot/internal/domain"
)

// Default minimum ages, in whole days, before a file is eligible to leave
// its tier.
const (
	DefaultDailyMinAge   = 7
	DefaultWeeklyMinAge  = 31
	DefaultMonthlyMinAge = 365
	DefaultReapMinAge    = 31
)

// FailurePolicy decides what a per-file failure does to the rest of a pass.
type FailurePolicy int

const (
	// FailurePolicyContinue logs and counts the failure, then moves on to
	// the next file. Tier rotators use this: one stuck file never blocks
	// the rest of its tier.
	FailurePolicyContinue FailurePolicy = iota

	// FailurePolicyAbort stops the pass at the first failure and propagates
	// it. The reaper uses this: deletes are irreversible, so the pass stops
	// rather than plowing on.
	FailurePolicyAbort
)

// Policy binds a source tier to its promotion rule.
type Policy struct {
	// Source tier this policy rotates
	Source domain.Tier

	// Target tier promoted files move to
	Target domain.Tier

	// MinAge in whole days before a file is considered at all
	MinAge int

	// Promote decides promotion; files it rejects are evicted to quarantine
	Promote func(domain.DatedFile) bool

	// OnFailure governs per-file failures during the pass
	OnFailure FailurePolicy
}

// Policies returns the three tier policies with the given minimum ages.
// Promotion predicates are fixed calendar semantics; only the ages vary.
func Policies(dailyAge, weeklyAge, monthlyAge int) []Policy {
	return []Policy{
		{
			Source:    domain.TierDaily,
			Target:    domain.TierWeekly,
			MinAge:    dailyAge,
			Promote:   promoteFromDaily,
			OnFailure: FailurePolicyContinue,
		},
		{
			Source:    domain.TierWeekly,
			Target:    domain.TierMonthly,
			MinAge:    weeklyAge,
			Promote:   promoteFromWeekly,
			OnFailure: FailurePolicyContinue,
		},
		{
			Source:    domain.TierMonthly,
			Target:    domain.TierYearly,
			MinAge:    monthlyAge,
			Promote:   promoteFromMonthly,
			OnFailure: FailurePolicyContinue,
		},
	}
}

// DefaultPolicies returns Policies with the default minimum ages.
func DefaultPolicies() []Policy {
	return Policies(DefaultDailyMinAge, DefaultWeeklyMinAge, DefaultMonthlyMinAge)
}

func promoteFromDaily(f domain.DatedFile) bool {
	return f.FirstOfWeek() || f.FirstOfMonth()
}

func promoteFromWeekly(f domain.DatedFile) bool {
	return f.FirstOfMonth()
}

func promoteFromMonthly(f domain.DatedFile) bool {
	return f.FirstOfYear()
}

// quarantineSeparator joins the eviction date to the original name.
const quarantineSeparator = "_____"

// QuarantineName prefixes a filename with the eviction date. The prefix
// itself parses as a date, so a quarantined file's age restarts from the day
// it was evicted.
func QuarantineName(today time.Time, name string) string {
	return today.Format("2006-01-02") + quarantineSeparator + name
}
