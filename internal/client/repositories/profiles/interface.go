package profiles

import (
	"context"

	"github.com/dmitrijs2005/storagesync/internal/client/models"
)

type Repository interface {
	// Get returns nil, nil when no profile is stored.
	Get(ctx context.Context, recipientID string) (*models.Profile, error)
	SetProfileKey(ctx context.Context, recipientID string, key []byte) error
	SetNames(ctx context.Context, recipientID string, given, family *string) error
	SetNamesAndAvatar(ctx context.Context, recipientID string, given, family, avatarURL *string) error

	IsRecipientWhitelisted(ctx context.Context, recipientID string) (bool, error)
	SetRecipientWhitelisted(ctx context.Context, recipientID string, whitelisted bool) error
	IsGroupWhitelisted(ctx context.Context, groupID []byte) (bool, error)
	SetGroupWhitelisted(ctx context.Context, groupID []byte, whitelisted bool) error
}
