// Package identities stores recipients' public identity keys together with
// their verification state.
package identities

import (
	"context"

	"github.com/dmitrijs2005/storagesync/internal/client/models"
)

type Repository interface {
	// Get returns nil, nil when no key is stored.
	Get(ctx context.Context, recipientID string) (*models.IdentityRecord, error)
	// SaveKey stores key. A changed key resets the verification state to
	// default; saving the same key again is a no-op.
	SaveKey(ctx context.Context, recipientID string, key []byte) error
	// SetVerificationState fails with common.ErrorNotFound when no key is
	// stored for the recipient.
	SetVerificationState(ctx context.Context, recipientID string, state models.VerificationState) error
}
