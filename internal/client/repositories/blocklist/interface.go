// Package blocklist stores blocked recipients and groups.
package blocklist

import "context"

type Repository interface {
	IsRecipientBlocked(ctx context.Context, recipientID string) (bool, error)
	SetRecipientBlocked(ctx context.Context, recipientID string, blocked bool) error
	IsGroupBlocked(ctx context.Context, groupID []byte) (bool, error)
	SetGroupBlocked(ctx context.Context, groupID []byte, blocked bool) error
	BlockedRecipientIDs(ctx context.Context) ([]string, error)
}
