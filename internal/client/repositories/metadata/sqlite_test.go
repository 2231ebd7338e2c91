package metadata

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/storagesync/internal/client/storage"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := storage.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSetAndGet_InsertThenGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k1", []byte{0x01, 0x02}))

	v, err := r.Get(ctx, "k1")
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x02}, v)
}

func TestGet_NotExists_ReturnsNilNil(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestSet_UpsertOverwritesValue(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", []byte("old")))
	require.NoError(t, r.Set(ctx, "k", []byte("new")))

	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("new"), v)
}

func TestDelete_RemovesKey_AndIsIdempotent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "x", []byte{0x01}))
	require.NoError(t, r.Delete(ctx, "x"))

	v, err := r.Get(ctx, "x")
	require.NoError(t, err)
	require.Nil(t, v)

	require.NoError(t, r.Delete(ctx, "x"))
}

func TestDeletePrefix(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "sync.version", []byte("1")))
	require.NoError(t, r.Set(ctx, "sync.unknown_ids", []byte("[]")))
	require.NoError(t, r.Set(ctx, "syncx", []byte("keep")))
	require.NoError(t, r.Set(ctx, "account.settings", []byte("{}")))

	require.NoError(t, r.DeletePrefix(ctx, "sync."))

	for key, kept := range map[string]bool{
		"sync.version":     false,
		"sync.unknown_ids": false,
		"syncx":            true,
		"account.settings": true,
	} {
		v, err := r.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, kept, v != nil, key)
	}
}

func TestJSONHelpers(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	type state struct {
		Version uint64   `json:"version"`
		Keys    []string `json:"keys"`
	}

	var got state
	found, err := GetJSON(ctx, r, "state", &got)
	require.NoError(t, err)
	assert.False(t, found)

	want := state{Version: 7, Keys: []string{"a", "b"}}
	require.NoError(t, SetJSON(ctx, r, "state", want))

	found, err = GetJSON(ctx, r, "state", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)

	require.NoError(t, r.Set(ctx, "state", []byte("{not json")))
	_, err = GetJSON(ctx, r, "state", &got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode metadata[state]")
}

func TestGet_DBErrorWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	require.NoError(t, db.Close())

	v, err := r.Get(context.Background(), "k")
	require.Error(t, err)
	require.Nil(t, v)
	require.Contains(t, err.Error(), "failed to get metadata[k]")
}

func TestSet_DBErrorWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	require.NoError(t, db.Close())

	err := r.Set(context.Background(), "k", []byte("v"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to set metadata[k]")
}
