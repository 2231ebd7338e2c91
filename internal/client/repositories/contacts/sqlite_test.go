package contacts

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/storagesync/internal/client/models"
	"github.com/dmitrijs2005/storagesync/internal/client/storage"
)

func TestInsertGetRemove(t *testing.T) {
	ctx := context.Background()
	db, err := storage.InitDatabase(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()
	r := NewSQLiteRepository(db)

	c := &models.SystemContact{
		PhoneNumber: "+15550001111",
		GivenName:   "Alice",
		FamilyName:  "Smith",
		FullName:    "Alice Smith",
	}
	require.NoError(t, r.Insert(ctx, c))
	assert.Error(t, r.Insert(ctx, c), "duplicate phone number")

	got, err := r.Get(ctx, c.PhoneNumber)
	require.NoError(t, err)
	assert.Equal(t, c, got)

	require.NoError(t, r.Remove(ctx, c.PhoneNumber))
	got, err = r.Get(ctx, c.PhoneNumber)
	require.NoError(t, err)
	assert.Nil(t, got)
}
