package rotate

import (
	"context"
	"fmt"
	"time"

	"github.com/backrot/backrot/internal/core/dateparse"
	"github.com/backrot/backrot/internal/domain"
	"github.com/backrot/backrot/internal/store"
)

// Collect scans one tier folder and returns the dated entries at least
// minAge days old. Undated and too-young entries are skipped without
// comment; directories and other specials are considered like any entry.
func Collect(ctx context.Context, st store.Store, tier domain.Tier, minAge int, today time.Time) ([]domain.DatedFile, error) {
	names, err := st.List(ctx, tier)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", tier, err)
	}

	files := make([]domain.DatedFile, 0, len(names))
	for _, name := range names {
		d, ok := dateparse.Parse(name)
		if !ok {
			continue
		}
		f := domain.NewDatedFile(name, d, today)
		if f.Age < minAge {
			continue
		}
		files = append(files, f)
	}

	return files, nil
}
