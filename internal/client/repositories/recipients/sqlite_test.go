package recipients

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"github.com/dmitrijs2005/storagesync/internal/client/models"
	"github.com/dmitrijs2005/storagesync/internal/client/storage"
	"github.com/dmitrijs2005/storagesync/internal/common"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := storage.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestInsertAndLookups(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	aci, pni := uuid.New(), uuid.New()
	rec := &models.Recipient{ACI: &aci, PNI: &pni, PhoneNumber: proto.String("+15550001111"), IsRegistered: true}
	require.NoError(t, r.Insert(ctx, rec))
	require.NotEmpty(t, rec.ID)

	for name, get := range map[string]func() (*models.Recipient, error){
		"id":    func() (*models.Recipient, error) { return r.GetByID(ctx, rec.ID) },
		"aci":   func() (*models.Recipient, error) { return r.GetByACI(ctx, aci) },
		"pni":   func() (*models.Recipient, error) { return r.GetByPNI(ctx, pni) },
		"phone": func() (*models.Recipient, error) { return r.GetByPhoneNumber(ctx, "+15550001111") },
	} {
		got, err := get()
		require.NoError(t, err, name)
		assert.Equal(t, rec, got, name)
	}

	got, err := r.GetByACI(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)

	ids, err := r.ListIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{rec.ID}, ids)
}

func TestUniqueIdentifiers(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	aci := uuid.New()
	require.NoError(t, r.Insert(ctx, &models.Recipient{ACI: &aci}))
	assert.Error(t, r.Insert(ctx, &models.Recipient{ACI: &aci}))
}

func TestUpdateAndRegistration(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	aci := uuid.New()
	rec := &models.Recipient{ACI: &aci, IsRegistered: true}
	require.NoError(t, r.Insert(ctx, rec))

	rec.PhoneNumber = proto.String("+15550002222")
	require.NoError(t, r.Update(ctx, rec))

	require.NoError(t, r.SetUnregistered(ctx, rec.ID, 1234))
	got, err := r.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.False(t, got.IsRegistered)
	assert.Equal(t, uint64(1234), *got.UnregisteredAt)
	assert.Equal(t, "+15550002222", *got.PhoneNumber)

	require.NoError(t, r.SetRegistered(ctx, rec.ID))
	got, err = r.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, got.IsRegistered)
	assert.Nil(t, got.UnregisteredAt)

	err = r.SetRegistered(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, r.Delete(ctx, rec.ID))
	got, err = r.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestHiddenAndUsernames(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	rec := &models.Recipient{PhoneNumber: proto.String("+15550003333")}
	require.NoError(t, r.Insert(ctx, rec))

	hidden, err := r.IsHidden(ctx, rec.ID)
	require.NoError(t, err)
	assert.False(t, hidden)
	require.NoError(t, r.SetHidden(ctx, rec.ID, true))
	hidden, err = r.IsHidden(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, hidden)

	aci := uuid.New()
	u, err := r.Username(ctx, aci)
	require.NoError(t, err)
	assert.Nil(t, u)

	require.NoError(t, r.SetUsername(ctx, aci, proto.String("bob.01")))
	require.NoError(t, r.SetUsername(ctx, aci, proto.String("bob.02")))
	u, err = r.Username(ctx, aci)
	require.NoError(t, err)
	assert.Equal(t, "bob.02", *u)

	require.NoError(t, r.SetUsername(ctx, aci, nil))
	u, err = r.Username(ctx, aci)
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestSQLErrorsAreWrapped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("boom")
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT id, aci").WillReturnError(boom)
	_, err = r.GetByID(ctx, "x")
	assert.ErrorIs(t, err, boom)

	mock.ExpectExec("INSERT INTO recipients").WillReturnError(boom)
	assert.ErrorIs(t, r.Insert(ctx, &models.Recipient{}), boom)

	mock.ExpectExec("UPDATE recipients SET hidden").WillReturnResult(sqlmock.NewErrorResult(boom))
	assert.ErrorIs(t, r.SetHidden(ctx, "x", true), boom)

	require.NoError(t, mock.ExpectationsWereMet())
}
