package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Shreyansh-Bordia/Leetcode-Progress-Tracker/internal/dateutil"
	"github.com/Shreyansh-Bordia/Leetcode-Progress-Tracker/internal/ledger"
	"github.com/Shreyansh-Bordia/Leetcode-Progress-Tracker/internal/store"
)

// DailyProgressPath is the store path holding per-user daily counts.
const DailyProgressPath = "dailyProgress"

// DailyProgressRepository reads and writes the sparse per-day solved
// counts at dailyProgress/{username}/{date}. Entries are only ever
// overwritten, never deleted.
type DailyProgressRepository struct {
	store store.Store
}

// NewDailyProgressRepository creates a new daily-progress repository.
func NewDailyProgressRepository(s store.Store) *DailyProgressRepository {
	return &DailyProgressRepository{store: s}
}

// LoadAll returns the user's full daily-count map. Entries whose key is
// not a canonical date or whose value is not an integer are skipped.
func (r *DailyProgressRepository) LoadAll(ctx context.Context, username string) (ledger.DailyCounts, error) {
	entries, err := r.store.Children(ctx, DailyProgressPath+"/"+username)
	if err != nil {
		return nil, fmt.Errorf("load daily progress for %s: %w", username, err)
	}
	return DecodeDailyCounts(entries), nil
}

// DecodeDailyCounts converts raw store entries keyed by date into a
// count map. Entries with a non-date key or non-integer value are
// skipped.
func DecodeDailyCounts(entries []store.Entry) ledger.DailyCounts {
	counts := make(ledger.DailyCounts, len(entries))
	for _, e := range entries {
		d, err := dateutil.Parse(e.ID)
		if err != nil {
			continue
		}
		var count int
		if err := json.Unmarshal(e.Value, &count); err != nil {
			continue
		}
		counts[d] = count
	}
	return counts
}

// GetCount returns the count stored for one date; a missing entry is 0.
func (r *DailyProgressRepository) GetCount(ctx context.Context, username string, d dateutil.Date) (int, error) {
	raw, err := r.store.Get(ctx, r.path(username, d))
	if err != nil {
		return 0, fmt.Errorf("get daily count for %s on %s: %w", username, d, err)
	}
	if raw == nil {
		return 0, nil
	}
	var count int
	if err := json.Unmarshal(raw, &count); err != nil {
		return 0, fmt.Errorf("decode daily count for %s on %s: %w", username, d, err)
	}
	return count, nil
}

// SetCount overwrites the count for one date (full replace).
func (r *DailyProgressRepository) SetCount(ctx context.Context, username string, d dateutil.Date, count int) error {
	if err := r.store.Set(ctx, r.path(username, d), count); err != nil {
		return fmt.Errorf("set daily count for %s on %s: %w", username, d, err)
	}
	return nil
}

func (r *DailyProgressRepository) path(username string, d dateutil.Date) string {
	return DailyProgressPath + "/" + username + "/" + d.String()
}
