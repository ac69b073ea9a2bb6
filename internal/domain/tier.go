package domain

// Tier identifies one of the rotation folders under the root.
type Tier string

const (
	// TierDaily is the intake folder new backups arrive in
	TierDaily Tier = "daily"

	// TierWeekly holds files promoted on week boundaries
	TierWeekly Tier = "weekly"

	// TierMonthly holds files promoted on month boundaries
	TierMonthly Tier = "monthly"

	// TierYearly holds files promoted on year boundaries
	TierYearly Tier = "yearly"

	// TierQuarantine holds evicted files awaiting deletion
	TierQuarantine Tier = "quarantine"
)

// IsValid checks if the tier is a known value
func (t Tier) IsValid() bool {
	switch t {
	case TierDaily, TierWeekly, TierMonthly, TierYearly, TierQuarantine:
		return true
	}
	return false
}

// String returns the tier's folder name.
func (t Tier) String() string {
	return string(t)
}

// Tiers lists every tier in promotion order, quarantine last.
func Tiers() []Tier {
	return []Tier{TierDaily, TierWeekly, TierMonthly, TierYearly, TierQuarantine}
}
