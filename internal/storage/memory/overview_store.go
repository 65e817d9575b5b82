package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/brandworks/siteprofiler/internal/profile"
)

// OverviewStore provides an in-memory implementation for development/testing.
type OverviewStore struct {
	mu       sync.RWMutex
	byTarget map[string]profile.BrandOverview
}

// NewOverviewStore constructs an OverviewStore.
func NewOverviewStore() *OverviewStore {
	return &OverviewStore{
		byTarget: make(map[string]profile.BrandOverview),
	}
}

// Get fetches the overview for a target.
func (s *OverviewStore) Get(_ context.Context, targetID string) (profile.BrandOverview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byTarget[targetID]
	if !ok {
		return profile.BrandOverview{}, profile.ErrNotFound
	}
	return rec, nil
}

// TryStart transitions a target into running status under the store lock.
// A target already running, or complete without force, keeps its record and
// the caller learns it did not acquire the run.
func (s *OverviewStore) TryStart(
	_ context.Context,
	targetID string,
	id string,
	force bool,
	now time.Time,
) (profile.BrandOverview, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byTarget[targetID]
	if ok {
		if rec.Status == profile.StatusRunning {
			return rec, false, nil
		}
		if rec.Status == profile.StatusComplete && !force {
			return rec, false, nil
		}
		rec.Status = profile.StatusRunning
		rec.ErrorText = ""
		rec.Warnings = nil
		rec.UpdatedAt = now
		s.byTarget[targetID] = rec
		return rec, true, nil
	}

	rec = profile.BrandOverview{
		ID:        id,
		TargetID:  targetID,
		Status:    profile.StatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.byTarget[targetID] = rec
	return rec, true, nil
}

// Finish records the terminal outcome of a run.
func (s *OverviewStore) Finish(
	_ context.Context,
	targetID string,
	status profile.OverviewStatus,
	summary string,
	structured json.RawMessage,
	warnings []string,
	errText string,
	now time.Time,
) (profile.BrandOverview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byTarget[targetID]
	if !ok {
		return profile.BrandOverview{}, profile.ErrNotFound
	}
	rec.Status = status
	rec.Summary = summary
	rec.StructuredProfile = append(json.RawMessage(nil), structured...)
	rec.Warnings = append([]string(nil), warnings...)
	rec.ErrorText = errText
	rec.UpdatedAt = now
	s.byTarget[targetID] = rec
	return rec, nil
}

// List returns overviews, most recently updated first, with optional status
// filtering.
func (s *OverviewStore) List(
	_ context.Context,
	status *profile.OverviewStatus,
	limit,
	offset int,
) ([]profile.BrandOverview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := make([]profile.BrandOverview, 0, len(s.byTarget))
	for _, rec := range s.byTarget {
		if status != nil && rec.Status != *status {
			continue
		}
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].UpdatedAt.After(recs[j].UpdatedAt)
	})

	if offset >= len(recs) {
		return nil, nil
	}
	recs = recs[offset:]
	if limit > 0 && limit < len(recs) {
		recs = recs[:limit]
	}
	return recs, nil
}
