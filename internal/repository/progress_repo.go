package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Shreyansh-Bordia/Leetcode-Progress-Tracker/internal/store"
)

// ProgressPath is the store path holding per-user completion sets.
const ProgressPath = "progress"

// ProgressRepository reads and writes per-user completion sets: the
// array of completed question ids at progress/{username}. The array is
// always written whole, never patched element-wise.
type ProgressRepository struct {
	store store.Store
}

// NewProgressRepository creates a new progress repository.
func NewProgressRepository(s store.Store) *ProgressRepository {
	return &ProgressRepository{store: s}
}

// Get returns the user's completed question ids. A missing entry is an
// empty set.
func (r *ProgressRepository) Get(ctx context.Context, username string) ([]string, error) {
	raw, err := r.store.Get(ctx, ProgressPath+"/"+username)
	if err != nil {
		return nil, fmt.Errorf("get progress for %s: %w", username, err)
	}
	if raw == nil {
		return []string{}, nil
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("decode progress for %s: %w", username, err)
	}
	return ids, nil
}

// Set replaces the user's completion set.
func (r *ProgressRepository) Set(ctx context.Context, username string, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	if err := r.store.Set(ctx, ProgressPath+"/"+username, ids); err != nil {
		return fmt.Errorf("set progress for %s: %w", username, err)
	}
	return nil
}

// All returns every user's completion set.
func (r *ProgressRepository) All(ctx context.Context) (map[string][]string, error) {
	entries, err := r.store.Children(ctx, ProgressPath)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	all := make(map[string][]string, len(entries))
	for _, e := range entries {
		var ids []string
		if err := json.Unmarshal(e.Value, &ids); err != nil {
			continue
		}
		all[e.ID] = ids
	}
	return all, nil
}

// ReplaceAll rewrites several users' completion sets in one atomic
// patch. Used by the delete-question cascade.
func (r *ProgressRepository) ReplaceAll(ctx context.Context, sets map[string][]string) error {
	if len(sets) == 0 {
		return nil
	}
	patch := make(map[string]any, len(sets))
	for username, ids := range sets {
		if ids == nil {
			ids = []string{}
		}
		patch[ProgressPath+"/"+username] = ids
	}
	if err := r.store.Update(ctx, patch); err != nil {
		return fmt.Errorf("replace progress sets: %w", err)
	}
	return nil
}
