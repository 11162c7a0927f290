package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cocbot-go/domain/calibration"
	"cocbot-go/domain/coords"
	"cocbot-go/domain/prefs"
)

func openTestDB(t *testing.T) *SQLitePrefsRepository {
	t.Helper()
	repo, err := OpenSQLiteInMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSQLite_GetPutDelete(t *testing.T) {
	ctx := context.Background()
	repo := openTestDB(t)

	_, ok, err := repo.Get(ctx, "ns", "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Put(ctx, "ns", "k", "1"))
	require.NoError(t, repo.Put(ctx, "ns", "k", "2"))

	v, ok, err := repo.Get(ctx, "ns", "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", v)

	_, ok, err = repo.Get(ctx, "other", "k")
	require.NoError(t, err)
	assert.False(t, ok, "namespaces are independent")

	require.NoError(t, repo.Delete(ctx, "ns", "k"))
	require.NoError(t, repo.Delete(ctx, "ns", "k"))
	_, ok, _ = repo.Get(ctx, "ns", "k")
	assert.False(t, ok)
}

func TestSQLite_PutAllAndList(t *testing.T) {
	ctx := context.Background()
	repo := openTestDB(t)

	require.NoError(t, repo.Put(ctx, "ns", "a", "old"))
	require.NoError(t, repo.PutAll(ctx, "ns", map[string]string{"a": "1", "b": "2"}))
	require.NoError(t, repo.Put(ctx, "other", "c", "3"))

	all, err := repo.List(ctx, "ns")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, all)

	empty, err := repo.List(ctx, "nothing")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSQLite_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "prefs.db")

	repo, err := OpenSQLite(path, nil)
	require.NoError(t, err)
	buttons := calibration.NewButtonStore(repo)
	require.NoError(t, buttons.Save(ctx, calibration.ButtonAttack, coords.Point{X: 1200, Y: 540}))
	require.NoError(t, repo.Close())

	repo, err = OpenSQLite(path, nil)
	require.NoError(t, err)
	defer repo.Close()

	p, ok, err := calibration.NewButtonStore(repo).Get(ctx, calibration.ButtonAttack)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, coords.Point{X: 1200, Y: 540}, p)
}

func TestSQLite_BacksTypedStore(t *testing.T) {
	ctx := context.Background()
	store := prefs.NewStore(openTestDB(t), prefs.NamespaceSettings)

	v, err := store.Int(ctx, "gold_threshold", 100000)
	require.NoError(t, err)
	assert.Equal(t, 100000, v)

	require.NoError(t, store.SetBool(ctx, "enable_wall_upgrade", false))
	b, err := store.Bool(ctx, "enable_wall_upgrade", true)
	require.NoError(t, err)
	assert.False(t, b)
}
