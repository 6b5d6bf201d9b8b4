package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"fieldops/internal/types"
)

func TestBroadcasterConvergesTwoStores(t *testing.T) {
	mr := miniredis.RunT(t)

	storeA, err := Open(t.TempDir(), Defaults{}, nil)
	require.NoError(t, err)
	defer storeA.Close()
	storeB, err := Open(t.TempDir(), Defaults{}, nil)
	require.NoError(t, err)
	defer storeB.Close()

	ctx := context.Background()
	a := NewBroadcaster(mr.Addr(), "fieldops:test", storeA, nil)
	require.NoError(t, a.Start(ctx))
	defer a.Stop()
	b := NewBroadcaster(mr.Addr(), "fieldops:test", storeB, nil)
	require.NoError(t, b.Start(ctx))
	defer b.Stop()

	require.NoError(t, storeA.ReplaceActivities([]types.Activity{
		{ID: "a1", PromoterID: "p1", Objective: "shared"},
	}))

	require.Eventually(t, func() bool {
		activities := storeB.Activities()
		return len(activities) == 1 && activities[0].ID == "a1"
	}, 3*time.Second, 20*time.Millisecond, "store B should converge on store A's commit")
}

func TestBroadcasterIgnoresOwnMessages(t *testing.T) {
	mr := miniredis.RunT(t)

	s, err := Open(t.TempDir(), Defaults{}, nil)
	require.NoError(t, err)
	defer s.Close()

	b := NewBroadcaster(mr.Addr(), "fieldops:test", s, nil)
	require.NoError(t, b.Start(context.Background()))
	defer b.Stop()

	var external int
	s.Subscribe(func(Collection) { external++ })
	require.NoError(t, s.ReplaceActivities([]types.Activity{{ID: "a1"}}))

	// The local commit fires one notification; the echoed pub/sub message
	// must not produce a second.
	time.Sleep(150 * time.Millisecond)
	require.Equal(t, 1, external)
}
