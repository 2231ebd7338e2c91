// Package preferences keeps the local account's synced preferences in the
// metadata table: account settings, username state and pinned
// conversations.
package preferences

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/storagesync/internal/client/models"
	"github.com/dmitrijs2005/storagesync/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/storagesync/internal/dbx"
)

const (
	keySettings               = "account.settings"
	keySubscriberID           = "account.subscriber_id"
	keySubscriberCurrencyCode = "account.subscriber_currency_code"
	keyUsernameState          = "account.username_state"
	keyUsernameLinkColor      = "account.username_link_color"
	keyPinnedConversations    = "account.pinned_conversations"
)

type Repository struct {
	meta metadata.Repository
}

func NewRepository(meta metadata.Repository) *Repository {
	return &Repository{meta: meta}
}

// NewSQLiteRepository is a Repository over the metadata table reachable
// through db.
func NewSQLiteRepository(db dbx.DBTX) *Repository {
	return NewRepository(metadata.NewSQLiteRepository(db))
}

// AccountSettings returns DefaultAccountSettings until settings are saved.
// The subscriber id and currency code live under their own keys.
func (r *Repository) AccountSettings(ctx context.Context) (models.AccountSettings, error) {
	s := models.DefaultAccountSettings()
	if _, err := metadata.GetJSON(ctx, r.meta, keySettings, &s); err != nil {
		return s, err
	}

	id, err := r.meta.Get(ctx, keySubscriberID)
	if err != nil {
		return s, err
	}
	s.SubscriberID = nil
	if len(id) > 0 {
		s.SubscriberID = id
	}

	code, err := r.meta.Get(ctx, keySubscriberCurrencyCode)
	if err != nil {
		return s, err
	}
	s.SubscriberCurrencyCode = nil
	if code != nil {
		c := string(code)
		s.SubscriberCurrencyCode = &c
	}
	return s, nil
}

func (r *Repository) SaveAccountSettings(ctx context.Context, s models.AccountSettings) error {
	subscriberID, currency := s.SubscriberID, s.SubscriberCurrencyCode
	s.SubscriberID, s.SubscriberCurrencyCode = nil, nil
	if err := metadata.SetJSON(ctx, r.meta, keySettings, s); err != nil {
		return fmt.Errorf("save account settings: %w", err)
	}

	if len(subscriberID) == 0 {
		if err := r.meta.Delete(ctx, keySubscriberID); err != nil {
			return err
		}
	} else if err := r.meta.Set(ctx, keySubscriberID, subscriberID); err != nil {
		return err
	}

	if currency == nil {
		return r.meta.Delete(ctx, keySubscriberCurrencyCode)
	}
	return r.meta.Set(ctx, keySubscriberCurrencyCode, []byte(*currency))
}

func (r *Repository) UsernameState(ctx context.Context) (models.LocalUsernameState, error) {
	var state models.LocalUsernameState
	_, err := metadata.GetJSON(ctx, r.meta, keyUsernameState, &state)
	return state, err
}

func (r *Repository) SetUsernameState(ctx context.Context, state models.LocalUsernameState) error {
	if state.Kind == models.UsernameStateUnset {
		return r.meta.Delete(ctx, keyUsernameState)
	}
	return metadata.SetJSON(ctx, r.meta, keyUsernameState, state)
}

func (r *Repository) UsernameLinkColor(ctx context.Context) (models.UsernameLinkColor, error) {
	var color models.UsernameLinkColor
	_, err := metadata.GetJSON(ctx, r.meta, keyUsernameLinkColor, &color)
	return color, err
}

func (r *Repository) SetUsernameLinkColor(ctx context.Context, color models.UsernameLinkColor) error {
	return metadata.SetJSON(ctx, r.meta, keyUsernameLinkColor, color)
}

func (r *Repository) PinnedConversations(ctx context.Context) ([]models.PinnedConversation, error) {
	var pinned []models.PinnedConversation
	_, err := metadata.GetJSON(ctx, r.meta, keyPinnedConversations, &pinned)
	return pinned, err
}

func (r *Repository) SetPinnedConversations(ctx context.Context, pinned []models.PinnedConversation) error {
	if len(pinned) == 0 {
		return r.meta.Delete(ctx, keyPinnedConversations)
	}
	return metadata.SetJSON(ctx, r.meta, keyPinnedConversations, pinned)
}
