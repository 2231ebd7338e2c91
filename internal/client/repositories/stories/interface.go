// Package stories stores story distribution lists, their deletion
// tombstones, and per-sender story contexts.
package stories

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/storagesync/internal/client/models"
)

type Repository interface {
	// Get returns nil, nil when the list does not exist.
	Get(ctx context.Context, id uuid.UUID) (*models.PrivateStoryList, error)
	Insert(ctx context.Context, list *models.PrivateStoryList) error
	Update(ctx context.Context, list *models.PrivateStoryList) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListIDs(ctx context.Context) ([]uuid.UUID, error)

	// DeletedAt returns 0 when no tombstone is recorded.
	DeletedAt(ctx context.Context, id uuid.UUID) (uint64, error)
	RecordDeletion(ctx context.Context, id uuid.UUID, deletedAt uint64) error

	// ContactStoryHidden and GroupStoryHidden return nil when no context
	// has been recorded.
	ContactStoryHidden(ctx context.Context, aci uuid.UUID) (*bool, error)
	SetContactStoryHidden(ctx context.Context, aci uuid.UUID, hidden bool) error
	GroupStoryHidden(ctx context.Context, groupID []byte) (*bool, error)
	SetGroupStoryHidden(ctx context.Context, groupID []byte, hidden bool) error
}
