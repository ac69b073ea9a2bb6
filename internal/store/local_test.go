package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/backrot/backrot/internal/domain"
	"github.com/backrot/backrot/internal/testutil"
)

func newTestStore(t *testing.T) (*Local, string) {
	t.Helper()
	root, cleanup := testutil.TempDir(t)
	t.Cleanup(cleanup)

	st, err := NewLocal(root)
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}
	return st, root
}

func TestNewLocal_MissingRoot(t *testing.T) {
	_, err := NewLocal("/nonexistent/backrot/root")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestNewLocal_RootIsFile(t *testing.T) {
	dir, cleanup := testutil.TempDir(t)
	defer cleanup()
	path := testutil.CreateTestFile(t, dir, "afile", "x")

	_, err := NewLocal(path)
	if !errors.Is(err, domain.ErrNotDirectory) {
		t.Errorf("Expected ErrNotDirectory, got %v", err)
	}
}

func TestList_MissingTierReadsEmpty(t *testing.T) {
	st, _ := newTestStore(t)

	names, err := st.List(context.Background(), domain.TierDaily)
	if err != nil {
		t.Fatalf("Expected no error for missing tier, got %v", err)
	}
	if len(names) != 0 {
		t.Errorf("Expected empty list, got %v", names)
	}
}

func TestList_ReturnsAllEntryKinds(t *testing.T) {
	st, root := newTestStore(t)
	daily := filepath.Join(root, "daily")
	if err := os.MkdirAll(filepath.Join(daily, "2018-01-01_dir"), 0755); err != nil {
		t.Fatal(err)
	}
	testutil.CreateTestFile(t, daily, "2018-01-02_file.tar", "data")

	names, err := st.List(context.Background(), domain.TierDaily)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(names) != 2 {
		t.Errorf("Expected directories and files listed alike, got %v", names)
	}
}

func TestMove_PreservesName(t *testing.T) {
	st, root := newTestStore(t)
	for _, tier := range []string{"daily", "weekly"} {
		if err := os.MkdirAll(filepath.Join(root, tier), 0755); err != nil {
			t.Fatal(err)
		}
	}
	testutil.CreateTestFile(t, filepath.Join(root, "daily"), "2018-03-26_backup.tar", "data")

	err := st.Move(context.Background(), domain.TierDaily, "2018-03-26_backup.tar", domain.TierWeekly, "")
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, "weekly", "2018-03-26_backup.tar")); err != nil {
		t.Errorf("Expected file in weekly: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "daily", "2018-03-26_backup.tar")); !os.IsNotExist(err) {
		t.Error("Expected file gone from daily")
	}
}

func TestMove_Rename(t *testing.T) {
	st, root := newTestStore(t)
	for _, tier := range []string{"daily", "quarantine"} {
		if err := os.MkdirAll(filepath.Join(root, tier), 0755); err != nil {
			t.Fatal(err)
		}
	}
	testutil.CreateTestFile(t, filepath.Join(root, "daily"), "2018-03-22_backup.tar", "data")

	err := st.Move(context.Background(), domain.TierDaily, "2018-03-22_backup.tar",
		domain.TierQuarantine, "2018-03-29_____2018-03-22_backup.tar")
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, "quarantine", "2018-03-29_____2018-03-22_backup.tar")); err != nil {
		t.Errorf("Expected renamed file in quarantine: %v", err)
	}
}

func TestMove_MissingSource(t *testing.T) {
	st, root := newTestStore(t)
	for _, tier := range []string{"daily", "weekly"} {
		if err := os.MkdirAll(filepath.Join(root, tier), 0755); err != nil {
			t.Fatal(err)
		}
	}

	err := st.Move(context.Background(), domain.TierDaily, "ghost.tar", domain.TierWeekly, "")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRemove_OutsideQuarantineRefused(t *testing.T) {
	st, root := newTestStore(t)
	daily := filepath.Join(root, "daily")
	if err := os.MkdirAll(daily, 0755); err != nil {
		t.Fatal(err)
	}
	testutil.CreateTestFile(t, daily, "2018-03-22_backup.tar", "data")

	for _, tier := range []domain.Tier{domain.TierDaily, domain.TierWeekly, domain.TierMonthly, domain.TierYearly} {
		err := st.Remove(context.Background(), tier, "2018-03-22_backup.tar")
		if !errors.Is(err, domain.ErrNotQuarantine) {
			t.Errorf("Remove(%s): expected ErrNotQuarantine, got %v", tier, err)
		}
	}

	// The guard must fire before any filesystem access.
	if _, err := os.Stat(filepath.Join(daily, "2018-03-22_backup.tar")); err != nil {
		t.Errorf("Expected file untouched: %v", err)
	}
}

func TestRemove_Quarantine(t *testing.T) {
	st, root := newTestStore(t)
	quarantine := filepath.Join(root, "quarantine")
	if err := os.MkdirAll(quarantine, 0755); err != nil {
		t.Fatal(err)
	}
	testutil.CreateTestFile(t, quarantine, "2018-02-01_____x.tar", "data")

	if err := st.Remove(context.Background(), domain.TierQuarantine, "2018-02-01_____x.tar"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(quarantine, "2018-02-01_____x.tar")); !os.IsNotExist(err) {
		t.Error("Expected file deleted")
	}
}

func TestEntryPath_RejectsEscapes(t *testing.T) {
	st, _ := newTestStore(t)

	tests := []string{"", ".", "..", "a/b", "../escape"}
	for _, name := range tests {
		if _, err := st.entryPath(domain.TierDaily, name); !errors.Is(err, domain.ErrInvalidName) {
			t.Errorf("entryPath(%q): expected ErrInvalidName, got %v", name, err)
		}
	}
}

func TestTierExists_And_EnsureTier(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	exists, err := st.TierExists(ctx, domain.TierDaily)
	if err != nil || exists {
		t.Fatalf("Expected daily missing, got exists=%v err=%v", exists, err)
	}

	if err := st.EnsureTier(ctx, domain.TierDaily); err != nil {
		t.Fatalf("EnsureTier failed: %v", err)
	}

	exists, err = st.TierExists(ctx, domain.TierDaily)
	if err != nil || !exists {
		t.Errorf("Expected daily present, got exists=%v err=%v", exists, err)
	}

	// Idempotent.
	if err := st.EnsureTier(ctx, domain.TierDaily); err != nil {
		t.Errorf("Expected EnsureTier idempotent, got %v", err)
	}
}

func TestInvalidTier(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := st.List(ctx, domain.Tier("hourly")); !errors.Is(err, domain.ErrInvalidTier) {
		t.Errorf("List: expected ErrInvalidTier, got %v", err)
	}
	if err := st.EnsureTier(ctx, domain.Tier("hourly")); !errors.Is(err, domain.ErrInvalidTier) {
		t.Errorf("EnsureTier: expected ErrInvalidTier, got %v", err)
	}
}
