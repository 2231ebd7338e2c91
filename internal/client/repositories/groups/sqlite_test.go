package groups

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/storagesync/internal/client/models"
	"github.com/dmitrijs2005/storagesync/internal/client/storage"
)

func newRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	db, err := storage.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLiteRepository(db)
}

func TestGroupIDs(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	gid := []byte{1, 2, 3}

	ok, err := r.HasGroupID(ctx, gid)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.AddGroupID(ctx, gid))
	require.NoError(t, r.AddGroupID(ctx, gid))
	ok, err = r.HasGroupID(ctx, gid)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPendingRestores(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	k1, k2 := []byte{0x01}, []byte{0x02}
	disabled := models.StoryViewModeDisabled

	got, err := r.PendingRestore(ctx, k1)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, r.SavePendingRestore(ctx, models.PendingGroupRestore{MasterKey: k1}))
	require.NoError(t, r.SavePendingRestore(ctx, models.PendingGroupRestore{MasterKey: k2, StoryViewMode: &disabled}))

	got, err = r.PendingRestore(ctx, k2)
	require.NoError(t, err)
	assert.Equal(t, &models.PendingGroupRestore{MasterKey: k2, StoryViewMode: &disabled}, got)

	all, err := r.PendingRestores(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.PendingGroupRestore{
		{MasterKey: k1},
		{MasterKey: k2, StoryViewMode: &disabled},
	}, all)

	require.NoError(t, r.DeletePendingRestore(ctx, k1))
	all, err = r.PendingRestores(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
