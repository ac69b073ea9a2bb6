package store

import (
	"context"

	"github.com/backrot/backrot/internal/domain"
)

// Store defines filesystem access to the rotation tiers under one root.
// Implementations resolve tier folders internally and return domain-level
// errors for consistent error handling.
type Store interface {
	// List returns the names of every entry directly inside the tier
	// folder, directories and specials included. A missing tier folder
	// yields an empty result, not an error.
	List(ctx context.Context, tier domain.Tier) ([]string, error)

	// Move renames an entry from one tier folder into another.
	// newName == "" keeps the original name.
	// Returns domain.ErrNotFound if the entry doesn't exist.
	Move(ctx context.Context, from domain.Tier, name string, to domain.Tier, newName string) error

	// Remove permanently deletes an entry. Deletion is only ever allowed in
	// quarantine; any other tier returns domain.ErrNotQuarantine before the
	// filesystem is touched.
	Remove(ctx context.Context, tier domain.Tier, name string) error

	// TierExists checks if the tier folder is present.
	TierExists(ctx context.Context, tier domain.Tier) (bool, error)

	// EnsureTier creates the tier folder and any necessary parents.
	// No error if it already exists.
	EnsureTier(ctx context.Context, tier domain.Tier) error

	// TierPath returns the absolute path of the tier folder.
	TierPath(tier domain.Tier) string

	// Root returns the absolute rotation root.
	Root() string
}
