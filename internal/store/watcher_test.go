package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"fieldops/internal/types"
)

func TestWatcherAppliesExternalWrite(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	s, err := Open(dir, Defaults{}, nil)
	require.NoError(t, err)
	defer s.Close()

	w, err := NewWatcher(s, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	// Another process rewrites the activities snapshot.
	incoming, err := json.Marshal([]types.Activity{
		{ID: "ext1", PromoterID: "p9", Objective: "from another session"},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "activities.json"), incoming, 0644))

	require.Eventually(t, func() bool {
		activities := s.Activities()
		return len(activities) == 1 && activities[0].ID == "ext1"
	}, 3*time.Second, 20*time.Millisecond, "watcher should fold the external write into memory")
}

func TestWatcherBurstSettlesToLatestWrite(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	s, err := Open(dir, Defaults{}, nil)
	require.NoError(t, err)
	defer s.Close()

	w, err := NewWatcher(s, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	path := filepath.Join(dir, "activities.json")
	write := func(id string) {
		raw, err := json.Marshal([]types.Activity{{ID: id, PromoterID: "p9"}})
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(path, raw, 0644))
	}

	write("v1")
	require.Eventually(t, func() bool {
		activities := s.Activities()
		return len(activities) == 1 && activities[0].ID == "v1"
	}, 3*time.Second, 20*time.Millisecond)

	// Rewrite within the debounce window of the previous apply, then again
	// back to back. Only the final content matters.
	write("v2")
	write("v3")

	require.Eventually(t, func() bool {
		activities := s.Activities()
		return len(activities) == 1 && activities[0].ID == "v3"
	}, 3*time.Second, 20*time.Millisecond, "rapid rewrites must settle to the latest content")
}

func TestWatcherIgnoresForeignFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	s, err := Open(dir, Defaults{}, nil)
	require.NoError(t, err)
	defer s.Close()

	w, err := NewWatcher(s, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "scratch.txt"), []byte("noise"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("[]"), 0644))

	time.Sleep(100 * time.Millisecond)
	require.Empty(t, s.Activities())
	w.Stop()
}

func TestWatcherStopIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	s, err := Open(t.TempDir(), Defaults{}, nil)
	require.NoError(t, err)
	defer s.Close()

	w, err := NewWatcher(s, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	w.Stop()
	w.Stop()
}

func TestCollectionForFile(t *testing.T) {
	cases := map[string]struct {
		collection Collection
		ok         bool
	}{
		"/state/activities.json": {CollectionActivities, true},
		"/state/session.json":    {CollectionSession, true},
		"/state/journal.db":      {"", false},
		"/state/random.json":     {"", false},
	}
	for path, want := range cases {
		c, ok := collectionForFile(path)
		require.Equal(t, want.ok, ok, path)
		require.Equal(t, want.collection, c, path)
	}
}
