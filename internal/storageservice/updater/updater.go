package updater

import (
	"context"

	"github.com/dmitrijs2005/storagesync/internal/dbx"
	"github.com/dmitrijs2005/storagesync/internal/storageservice/records"
)

// Updater builds and merges records of type R for local entities keyed by ID.
type Updater[ID any, R any] interface {
	// UnknownFields returns the passthrough bytes of record.
	UnknownFields(record *R) []byte

	// BuildRecord returns the record to upload for id, or nil when id no
	// longer exists, is invalid, or should not be synced. unknownFields
	// are attached to the result unchanged.
	BuildRecord(ctx context.Context, id ID, unknownFields []byte, tx dbx.DBTX) (*R, error)

	// BuildStorageItem wraps record under a freshly generated identifier.
	BuildStorageItem(record *R) records.StorageItem

	// MergeRecord applies record to local state. Errors are reserved for
	// collaborator failures; the caller should roll back and retry later.
	MergeRecord(ctx context.Context, record *R, tx dbx.DBTX) (MergeResult[ID], error)
}

// AccountID is the identifier of the singleton account record.
type AccountID = struct{}

var (
	_ Updater[string, records.Contact]               = (*ContactUpdater)(nil)
	_ Updater[[]byte, records.GroupV1]               = (*GroupV1Updater)(nil)
	_ Updater[[]byte, records.GroupV2]               = (*GroupV2Updater)(nil)
	_ Updater[AccountID, records.Account]            = (*AccountUpdater)(nil)
	_ Updater[[]byte, records.StoryDistributionList] = (*StoryDistributionListUpdater)(nil)
)
