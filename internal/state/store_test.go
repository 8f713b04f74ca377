package state

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRecordBuild_RoundTrip(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	rec := BuildRecord{
		ID:        uuid.NewString(),
		StartedAt: time.Now().Truncate(time.Second),
		Duration:  1500 * time.Millisecond,
		Pages:     3,
		Assets:    2,
		Outcome:   OutcomeSuccess,
	}
	require.NoError(t, store.RecordBuild(ctx, rec))

	records, err := store.RecentBuilds(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, rec.ID, records[0].ID)
	require.Equal(t, rec.Pages, records[0].Pages)
	require.Equal(t, rec.Duration, records[0].Duration)
	require.Equal(t, OutcomeSuccess, records[0].Outcome)
}

func TestRecentBuilds_NewestFirstWithLimit(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.RecordBuild(ctx, BuildRecord{
			ID:        uuid.NewString(),
			StartedAt: base.Add(time.Duration(i) * time.Minute),
			Outcome:   OutcomeSuccess,
		}))
	}

	records, err := store.RecentBuilds(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.True(t, records[0].StartedAt.After(records[1].StartedAt))
}

func TestFingerprints_SaveAndReload(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "state", "state.db")
	store, err := Open(dbPath)
	require.NoError(t, err)

	ctx := context.Background()
	fps := map[string]string{
		"a.md": Fingerprint([]byte("alpha")),
		"b.md": Fingerprint([]byte("beta")),
	}
	require.NoError(t, store.SaveFingerprints(ctx, fps))
	require.NoError(t, store.Close())

	reopened, err := Open(dbPath)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	loaded, err := reopened.Fingerprints(ctx)
	require.NoError(t, err)
	require.Equal(t, fps, loaded)
}

func TestChanged(t *testing.T) {
	a := map[string]string{"x": "1", "y": "2"}
	require.False(t, Changed(a, map[string]string{"x": "1", "y": "2"}))
	require.True(t, Changed(a, map[string]string{"x": "1", "y": "3"}))
	require.True(t, Changed(a, map[string]string{"x": "1"}))
	require.True(t, Changed(a, map[string]string{"x": "1", "y": "2", "z": "3"}))
}

func TestFingerprint_Deterministic(t *testing.T) {
	require.Equal(t, Fingerprint([]byte("same")), Fingerprint([]byte("same")))
	require.NotEqual(t, Fingerprint([]byte("one")), Fingerprint([]byte("two")))
}
