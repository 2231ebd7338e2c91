package recipients

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/storagesync/internal/client/models"
)

// Repository stores recipients and the per-recipient flags that live on
// the recipient row. Lookups return nil, nil when nothing matches.
type Repository interface {
	GetByID(ctx context.Context, id string) (*models.Recipient, error)
	GetByACI(ctx context.Context, aci uuid.UUID) (*models.Recipient, error)
	GetByPNI(ctx context.Context, pni uuid.UUID) (*models.Recipient, error)
	GetByPhoneNumber(ctx context.Context, phoneNumber string) (*models.Recipient, error)

	// Insert assigns an id when r.ID is empty.
	Insert(ctx context.Context, r *models.Recipient) error
	// Update overwrites the identifiers and registration state of r.
	Update(ctx context.Context, r *models.Recipient) error
	Delete(ctx context.Context, id string) error
	ListIDs(ctx context.Context) ([]string, error)

	SetRegistered(ctx context.Context, id string) error
	SetUnregistered(ctx context.Context, id string, unregisteredAt uint64) error

	IsHidden(ctx context.Context, id string) (bool, error)
	SetHidden(ctx context.Context, id string, hidden bool) error

	// Username and SetUsername cache other accounts' usernames by ACI.
	Username(ctx context.Context, aci uuid.UUID) (*string, error)
	SetUsername(ctx context.Context, aci uuid.UUID, username *string) error
}
