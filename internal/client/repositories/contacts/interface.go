// Package contacts stores address-book entries keyed by phone number.
package contacts

import (
	"context"

	"github.com/dmitrijs2005/storagesync/internal/client/models"
)

type Repository interface {
	// Get returns nil, nil when there is no entry for the number.
	Get(ctx context.Context, phoneNumber string) (*models.SystemContact, error)
	// Insert fails when an entry for the number already exists.
	Insert(ctx context.Context, c *models.SystemContact) error
	Remove(ctx context.Context, phoneNumber string) error
}
