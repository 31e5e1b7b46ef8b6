package state

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevisionStore_EmptyOnFirstOpen(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer store.Close()

	has, err := store.Has()
	require.NoError(t, err)
	assert.False(t, has)

	_, err = store.Get()
	assert.ErrorIs(t, err, ErrNoRevision)
}

func TestRevisionStore_InsertThenGet(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Insert(5))

	has, err := store.Has()
	require.NoError(t, err)
	assert.True(t, has)

	rev, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, 5, rev)
}

func TestRevisionStore_SetOverwrites(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Insert(5))
	require.NoError(t, store.Set(7))

	rev, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, 7, rev)
}

func TestRevisionStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(42))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	rev, err := reopened.Get()
	require.NoError(t, err)
	assert.Equal(t, 42, rev)
}

func TestRevisionStore_CreatesMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "state.db")

	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Set(1))
}
