// Package remote holds the storage service side of a sync: a versioned
// manifest plus one encoded object per storage item.
package remote

import (
	"context"

	"github.com/dmitrijs2005/storagesync/internal/storageservice/records"
)

// ChangeSet replaces the remote manifest and adds or removes the items it
// references.
type ChangeSet struct {
	Manifest records.Manifest
	Inserts  []records.StorageItem
	Deletes  []records.StorageIdentifier
}

// Store is a remote storage service.
type Store interface {
	// FetchManifest returns the current manifest, or nil when its version
	// is not greater than greaterThan.
	FetchManifest(ctx context.Context, greaterThan uint64) (*records.Manifest, error)

	// FetchItems returns the items for ids that exist. Missing ids are
	// skipped.
	FetchItems(ctx context.Context, ids []records.StorageIdentifier) ([]records.StorageItem, error)

	// WriteChanges applies changes if the remote manifest is still at
	// previousVersion, and fails with common.ErrVersionConflict otherwise.
	WriteChanges(ctx context.Context, previousVersion uint64, changes ChangeSet) error
}
