// Package threads stores conversations, their per-thread modes, and the
// associated data that can exist before the thread itself does.
package threads

import (
	"context"

	"github.com/dmitrijs2005/storagesync/internal/client/models"
)

type Repository interface {
	// ContactThread returns nil, nil when the recipient has no thread.
	ContactThread(ctx context.Context, recipientID string) (*models.Thread, error)
	GetOrCreateContactThread(ctx context.Context, recipientID string) (*models.Thread, error)

	// GroupThread returns nil, nil when the group has no thread.
	GroupThread(ctx context.Context, groupID []byte) (*models.GroupThread, error)
	// CreateGroupThread is a no-op when the thread already exists.
	CreateGroupThread(ctx context.Context, groupID, masterKey []byte, mode models.StoryViewMode) (*models.GroupThread, error)

	SetStoryViewMode(ctx context.Context, threadID string, mode models.StoryViewMode) error
	SetMentionMode(ctx context.Context, threadID string, mode models.MentionMode) error

	// AssociatedData returns the zero value when nothing is stored.
	AssociatedData(ctx context.Context, threadID string) (models.ThreadAssociatedData, error)
	SetAssociatedData(ctx context.Context, threadID string, data models.ThreadAssociatedData) error
}
