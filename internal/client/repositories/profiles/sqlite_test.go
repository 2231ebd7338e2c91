package profiles

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"github.com/dmitrijs2005/storagesync/internal/client/models"
	"github.com/dmitrijs2005/storagesync/internal/client/storage"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := storage.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestGet_Missing(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	p, err := r.Get(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestProfileKeyAndNamesAreIndependent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	key := []byte("0123456789abcdef0123456789abcdef")
	require.NoError(t, r.SetProfileKey(ctx, "r1", key))
	require.NoError(t, r.SetNames(ctx, "r1", proto.String("Bob"), nil))

	p, err := r.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, &models.Profile{ProfileKey: key, GivenName: proto.String("Bob")}, p)

	require.NoError(t, r.SetNamesAndAvatar(ctx, models.LocalProfileRecipientID,
		proto.String("Me"), proto.String("Self"), proto.String("avatars/1")))
	p, err = r.Get(ctx, models.LocalProfileRecipientID)
	require.NoError(t, err)
	assert.Nil(t, p.ProfileKey)
	assert.Equal(t, "avatars/1", *p.AvatarURL)
	assert.Equal(t, "Self", *p.FamilyName)
}

func TestWhitelists(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	ok, err := r.IsRecipientWhitelisted(ctx, "r1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.SetRecipientWhitelisted(ctx, "r1", true))
	require.NoError(t, r.SetRecipientWhitelisted(ctx, "r1", true))
	ok, err = r.IsRecipientWhitelisted(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, r.SetRecipientWhitelisted(ctx, "r1", false))
	ok, err = r.IsRecipientWhitelisted(ctx, "r1")
	require.NoError(t, err)
	assert.False(t, ok)

	gid := []byte{1, 2, 3}
	require.NoError(t, r.SetGroupWhitelisted(ctx, gid, true))
	ok, err = r.IsGroupWhitelisted(ctx, gid)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = r.IsGroupWhitelisted(ctx, []byte{9})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClosedDB_ErrorsWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	require.NoError(t, db.Close())

	_, err := r.Get(context.Background(), "r1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get profile r1")

	err = r.SetGroupWhitelisted(context.Background(), []byte{1}, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to update whitelist")
}
