package memory

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// TestSQLiteStore_EmptyLoad tests a store with no saved row.
func TestSQLiteStore_EmptyLoad(t *testing.T) {
	store := newTestSQLiteStore(t)

	snap, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, snap)
	assert.NotNil(t, snap)
}

// TestSQLiteStore_RoundTrip tests save followed by load.
func TestSQLiteStore_RoundTrip(t *testing.T) {
	store := newTestSQLiteStore(t)

	require.NoError(t, store.Save(Snapshot{
		"last_query": "q",
		"final_note": "summary",
	}))

	snap, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "q", snap["last_query"])
	assert.Equal(t, "summary", snap["final_note"])
}

// TestSQLiteStore_SaveReplacesWholesale tests the single-row upsert.
func TestSQLiteStore_SaveReplacesWholesale(t *testing.T) {
	store := newTestSQLiteStore(t)

	require.NoError(t, store.Save(Snapshot{"old": "value"}))
	require.NoError(t, store.Save(Snapshot{"new": "value"}))

	snap, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, Snapshot{"new": "value"}, snap)
}

// TestSQLiteStore_PersistsAcrossReopen tests durability on a real file.
func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.db")

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(Snapshot{"k": "v"}))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	snap, err := reopened.Load()
	require.NoError(t, err)
	assert.Equal(t, "v", snap["k"])
}

// TestSQLiteStore_Closed tests operations after Close.
func TestSQLiteStore_Closed(t *testing.T) {
	store := newTestSQLiteStore(t)
	require.NoError(t, store.Close())

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrStoreClosed)
	assert.ErrorIs(t, store.Save(Snapshot{}), ErrStoreClosed)

	// Close is idempotent.
	assert.NoError(t, store.Close())
}
