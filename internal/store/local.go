package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/backrot/backrot/internal/domain"
)

// Local implements the Store interface on the local filesystem.
type Local struct {
	root string
}

// NewLocal creates a local store rooted at root.
// root must be an existing directory.
func NewLocal(root string) (*Local, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, domain.ErrNotDirectory
	}

	return &Local{root: absRoot}, nil
}

// entryPath resolves a tier-local name to an absolute path.
// Names never leave their tier folder: separators and dot entries are
// rejected rather than resolved.
func (l *Local) entryPath(tier domain.Tier, name string) (string, error) {
	if !tier.IsValid() {
		return "", domain.ErrInvalidTier
	}
	if name == "" || name == "." || name == ".." ||
		strings.ContainsRune(name, '/') || strings.ContainsRune(name, os.PathSeparator) {
		return "", domain.ErrInvalidName
	}
	return filepath.Join(l.root, tier.String(), name), nil
}

// List returns the names of every entry inside the tier folder.
func (l *Local) List(ctx context.Context, tier domain.Tier) ([]string, error) {
	if !tier.IsValid() {
		return nil, domain.ErrInvalidTier
	}

	entries, err := os.ReadDir(l.TierPath(tier))
	if err != nil {
		if os.IsNotExist(err) {
			// A missing tier folder reads as empty so a bare root
			// degrades to a no-op run instead of failing.
			return nil, nil
		}
		return nil, mapError(err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		names = append(names, entry.Name())
	}

	return names, nil
}

// Move renames an entry from one tier folder into another.
func (l *Local) Move(ctx context.Context, from domain.Tier, name string, to domain.Tier, newName string) error {
	oldPath, err := l.entryPath(from, name)
	if err != nil {
		return err
	}
	if newName == "" {
		newName = name
	}
	newPath, err := l.entryPath(to, newName)
	if err != nil {
		return err
	}

	return mapError(os.Rename(oldPath, newPath))
}

// Remove permanently deletes a quarantine entry.
func (l *Local) Remove(ctx context.Context, tier domain.Tier, name string) error {
	if tier != domain.TierQuarantine {
		return domain.ErrNotQuarantine
	}

	path, err := l.entryPath(tier, name)
	if err != nil {
		return err
	}

	return mapError(os.Remove(path))
}

// TierExists checks if the tier folder is present.
func (l *Local) TierExists(ctx context.Context, tier domain.Tier) (bool, error) {
	if !tier.IsValid() {
		return false, domain.ErrInvalidTier
	}

	info, err := os.Stat(l.TierPath(tier))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if !info.IsDir() {
		return false, domain.ErrNotDirectory
	}
	return true, nil
}

// EnsureTier creates the tier folder and any necessary parents.
func (l *Local) EnsureTier(ctx context.Context, tier domain.Tier) error {
	if !tier.IsValid() {
		return domain.ErrInvalidTier
	}

	return mapError(os.MkdirAll(l.TierPath(tier), 0755))
}

// TierPath returns the absolute path of the tier folder.
func (l *Local) TierPath(tier domain.Tier) string {
	return filepath.Join(l.root, tier.String())
}

// Root returns the absolute rotation root.
func (l *Local) Root() string {
	return l.root
}

// mapError converts OS errors to domain errors
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if os.IsNotExist(err) {
		return domain.ErrNotFound
	}
	if os.IsPermission(err) {
		return domain.ErrPermissionDenied
	}
	if os.IsExist(err) {
		return domain.ErrAlreadyExists
	}
	return err
}
