package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournalRecordAndRecent(t *testing.T) {
	j, err := OpenJournal(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer j.Close()

	require.NoError(t, j.Record("refresh", "12 activities", true))
	require.NoError(t, j.Record("create", "network error", false))
	require.NoError(t, j.Record("import", "3 created, 1 skipped", true))

	entries, err := j.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Newest first.
	assert.Equal(t, "import", entries[0].Op)
	assert.Equal(t, "create", entries[1].Op)
	assert.False(t, entries[1].OK)
	assert.Equal(t, "refresh", entries[2].Op)
	assert.True(t, entries[2].OK)
}

func TestJournalLimit(t *testing.T) {
	j, err := OpenJournal(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer j.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, j.Record("refresh", "", true))
	}
	entries, err := j.Recent(2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestJournalSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := OpenJournal(path)
	require.NoError(t, err)
	require.NoError(t, j.Record("refresh", "", true))
	require.NoError(t, j.Close())

	reopened, err := OpenJournal(path)
	require.NoError(t, err)
	defer reopened.Close()
	entries, err := reopened.Recent(10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
