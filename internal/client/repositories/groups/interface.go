// Package groups stores the known group id mappings and groups waiting to
// be created locally.
package groups

import (
	"context"

	"github.com/dmitrijs2005/storagesync/internal/client/models"
)

type Repository interface {
	// AddGroupID is a no-op for a known id.
	AddGroupID(ctx context.Context, groupID []byte) error
	HasGroupID(ctx context.Context, groupID []byte) (bool, error)

	// PendingRestore returns nil, nil when nothing is pending for the key.
	PendingRestore(ctx context.Context, masterKey []byte) (*models.PendingGroupRestore, error)
	// SavePendingRestore replaces any pending entry for the same key.
	SavePendingRestore(ctx context.Context, restore models.PendingGroupRestore) error
	DeletePendingRestore(ctx context.Context, masterKey []byte) error
	PendingRestores(ctx context.Context) ([]models.PendingGroupRestore, error)
}
