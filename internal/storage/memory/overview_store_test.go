package memory

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/brandworks/siteprofiler/internal/profile"
)

func TestOverviewStoreStateMachine(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewOverviewStore()
	now := time.Unix(1700000000, 0).UTC()

	_, err := store.Get(ctx, "tgt-1")
	require.ErrorIs(t, err, profile.ErrNotFound)

	rec, acquired, err := store.TryStart(ctx, "tgt-1", "ov-1", false, now)
	require.NoError(t, err)
	require.True(t, acquired)
	require.Equal(t, profile.StatusRunning, rec.Status)

	// A running target never starts a second run.
	rec, acquired, err = store.TryStart(ctx, "tgt-1", "ov-2", true, now)
	require.NoError(t, err)
	require.False(t, acquired)
	require.Equal(t, "ov-1", rec.ID)

	rec, err = store.Finish(ctx, "tgt-1", profile.StatusComplete, "summary", json.RawMessage(`{"name":"Acme"}`), nil, "", now.Add(time.Second))
	require.NoError(t, err)
	require.Equal(t, profile.StatusComplete, rec.Status)
	require.Equal(t, "summary", rec.Summary)

	// Complete blocks new runs unless forced.
	_, acquired, err = store.TryStart(ctx, "tgt-1", "ov-1", false, now.Add(2*time.Second))
	require.NoError(t, err)
	require.False(t, acquired)

	rec, acquired, err = store.TryStart(ctx, "tgt-1", "ov-1", true, now.Add(3*time.Second))
	require.NoError(t, err)
	require.True(t, acquired)
	require.Equal(t, profile.StatusRunning, rec.Status)

	rec, err = store.Finish(ctx, "tgt-1", profile.StatusFailed, "", nil, nil, "summarize: boom", now.Add(4*time.Second))
	require.NoError(t, err)
	require.Equal(t, profile.StatusFailed, rec.Status)
	require.Equal(t, "summarize: boom", rec.ErrorText)

	// Failed targets retry without force.
	_, acquired, err = store.TryStart(ctx, "tgt-1", "ov-1", false, now.Add(5*time.Second))
	require.NoError(t, err)
	require.True(t, acquired)
}

func TestOverviewStoreTryStartClearsPriorRunState(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewOverviewStore()
	now := time.Unix(1700000000, 0).UTC()

	_, _, err := store.TryStart(ctx, "tgt-1", "ov-1", false, now)
	require.NoError(t, err)
	_, err = store.Finish(ctx, "tgt-1", profile.StatusFailed, "", nil,
		[]string{"crawl failed: boom; profile generated without site content"},
		"summarize: boom", now.Add(time.Second))
	require.NoError(t, err)

	// Restarting after a failure wipes the previous run's error and warnings.
	rec, acquired, err := store.TryStart(ctx, "tgt-1", "ov-1", false, now.Add(2*time.Second))
	require.NoError(t, err)
	require.True(t, acquired)
	require.Equal(t, profile.StatusRunning, rec.Status)
	require.Empty(t, rec.Warnings)
	require.Empty(t, rec.ErrorText)

	_, err = store.Finish(ctx, "tgt-1", profile.StatusComplete, "summary", nil,
		[]string{"crawl failed: boom; profile generated without site content"}, "", now.Add(3*time.Second))
	require.NoError(t, err)

	// A forced re-run of a complete record clears its warnings too.
	rec, acquired, err = store.TryStart(ctx, "tgt-1", "ov-1", true, now.Add(4*time.Second))
	require.NoError(t, err)
	require.True(t, acquired)
	require.Empty(t, rec.Warnings)
}

func TestOverviewStoreFinishUnknownTarget(t *testing.T) {
	t.Parallel()

	store := NewOverviewStore()
	_, err := store.Finish(context.Background(), "nope", profile.StatusComplete, "", nil, nil, "", time.Now())
	require.ErrorIs(t, err, profile.ErrNotFound)
}

func TestOverviewStoreList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewOverviewStore()
	now := time.Unix(1700000000, 0).UTC()

	_, _, err := store.TryStart(ctx, "tgt-a", "ov-a", false, now)
	require.NoError(t, err)
	_, _, err = store.TryStart(ctx, "tgt-b", "ov-b", false, now.Add(time.Second))
	require.NoError(t, err)
	_, err = store.Finish(ctx, "tgt-a", profile.StatusComplete, "done", nil, nil, "", now.Add(2*time.Second))
	require.NoError(t, err)

	all, err := store.List(ctx, nil, 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "tgt-a", all[0].TargetID, "most recently updated first")

	running := profile.StatusRunning
	recs, err := store.List(ctx, &running, 10, 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "tgt-b", recs[0].TargetID)

	recs, err = store.List(ctx, nil, 10, 5)
	require.NoError(t, err)
	require.Empty(t, recs)
}
