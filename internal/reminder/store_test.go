package reminder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reminders.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store, _ := newTestSQLiteStore(t)

	later := NewReminder("join standup", testClock.Add(time.Hour), testClock)
	sooner := NewReminder("call mom", testClock.Add(30*time.Minute), testClock)
	require.NoError(t, store.Append(later))
	require.NoError(t, store.Append(sooner))

	got, err := store.LoadAll()
	require.NoError(t, err)
	require.Len(t, got, 2)

	// LoadAll orders by due time regardless of insertion order.
	assert.Equal(t, sooner.ID, got[0].ID)
	assert.Equal(t, "call mom", got[0].Text)
	assert.Equal(t, StatusPending, got[0].Status)
	assert.True(t, got[0].DueAt.Equal(sooner.DueAt))
	assert.True(t, got[0].CreatedAt.Equal(sooner.CreatedAt))
	assert.Equal(t, later.ID, got[1].ID)
}

func TestSQLiteStoreUpdateStatus(t *testing.T) {
	store, _ := newTestSQLiteStore(t)

	r := NewReminder("call mom", testClock.Add(30*time.Minute), testClock)
	require.NoError(t, store.Append(r))

	require.NoError(t, store.UpdateStatus(r.ID, StatusTriggered))

	got, err := store.LoadAll()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, StatusTriggered, got[0].Status)

	err = store.UpdateStatus("rem_missing", StatusTriggered)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStoreRemove(t *testing.T) {
	store, _ := newTestSQLiteStore(t)

	r := NewReminder("call mom", testClock.Add(30*time.Minute), testClock)
	require.NoError(t, store.Append(r))

	require.NoError(t, store.Remove(r.ID))

	got, err := store.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, got)

	err = store.Remove(r.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reminders.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)

	r := NewReminder("call mom", testClock.Add(30*time.Minute), testClock)
	require.NoError(t, store.Append(r))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.LoadAll()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, r.ID, got[0].ID)
	assert.Equal(t, "call mom", got[0].Text)
	assert.True(t, got[0].DueAt.Equal(r.DueAt))
}
