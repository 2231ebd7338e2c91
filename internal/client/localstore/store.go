// Package localstore exposes the SQLite repositories as the collaborators
// the record updaters work against. Every call runs on the transaction it
// is given; Store itself holds no database handle.
package localstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/storagesync/internal/client/groups"
	"github.com/dmitrijs2005/storagesync/internal/client/models"
	"github.com/dmitrijs2005/storagesync/internal/client/repositories/blocklist"
	"github.com/dmitrijs2005/storagesync/internal/client/repositories/contacts"
	"github.com/dmitrijs2005/storagesync/internal/client/repositories/identities"
	"github.com/dmitrijs2005/storagesync/internal/client/repositories/preferences"
	"github.com/dmitrijs2005/storagesync/internal/client/repositories/profiles"
	"github.com/dmitrijs2005/storagesync/internal/client/repositories/recipients"
	"github.com/dmitrijs2005/storagesync/internal/client/repositories/stories"
	"github.com/dmitrijs2005/storagesync/internal/client/repositories/threads"
	"github.com/dmitrijs2005/storagesync/internal/dbx"
	"github.com/dmitrijs2005/storagesync/internal/logging"
	"github.com/dmitrijs2005/storagesync/internal/storageservice/updater"
)

type Store struct {
	logger logging.Logger
}

var (
	_ updater.RecipientStore          = (*Store)(nil)
	_ updater.RecipientMerger         = (*Store)(nil)
	_ updater.BlockingStore           = (*Store)(nil)
	_ updater.HiddenRecipientStore    = (*Store)(nil)
	_ updater.ProfileStore            = (*Store)(nil)
	_ updater.IdentityStore           = (*Store)(nil)
	_ updater.ThreadStore             = (*Store)(nil)
	_ updater.StoryContextStore       = (*Store)(nil)
	_ updater.StoryListStore          = (*Store)(nil)
	_ updater.SystemContactStore      = (*Store)(nil)
	_ updater.UsernameLookupStore     = (*Store)(nil)
	_ updater.LocalUsernameStore      = (*Store)(nil)
	_ updater.AccountSettingsStore    = (*Store)(nil)
	_ updater.PinnedConversationStore = (*Store)(nil)
)

func New(logger logging.Logger) *Store {
	return &Store{logger: logger}
}

// Deps wires s and the given group collaborator and profile fetcher into
// an updater dependency set.
func (s *Store) Deps(local models.LocalIdentifiers, isPrimary bool, g *groups.Manager, fetcher updater.ProfileFetcher) updater.Deps {
	return updater.Deps{
		Local:               local,
		IsPrimaryDevice:     isPrimary,
		Logger:              s.logger,
		Recipients:          s,
		Merger:              s,
		Blocking:            s,
		Hidden:              s,
		Profiles:            s,
		ProfileFetcher:      fetcher,
		Identities:          s,
		Threads:             s,
		StoryContexts:       s,
		StoryLists:          s,
		SystemContacts:      s,
		Usernames:           s,
		LocalUsername:       s,
		Groups:              g,
		AccountSettings:     s,
		PinnedConversations: s,
	}
}

// RecipientStore

func (s *Store) RecipientByID(ctx context.Context, tx dbx.DBTX, id string) (*models.Recipient, error) {
	return recipients.NewSQLiteRepository(tx).GetByID(ctx, id)
}

func (s *Store) MarkRegistered(ctx context.Context, tx dbx.DBTX, id string) error {
	return recipients.NewSQLiteRepository(tx).SetRegistered(ctx, id)
}

func (s *Store) MarkUnregistered(ctx context.Context, tx dbx.DBTX, id string, unregisteredAt uint64) error {
	return recipients.NewSQLiteRepository(tx).SetUnregistered(ctx, id, unregisteredAt)
}

// BlockingStore

func (s *Store) IsRecipientBlocked(ctx context.Context, tx dbx.DBTX, recipientID string) (bool, error) {
	return blocklist.NewSQLiteRepository(tx).IsRecipientBlocked(ctx, recipientID)
}

func (s *Store) SetRecipientBlocked(ctx context.Context, tx dbx.DBTX, recipientID string, blocked bool) error {
	return blocklist.NewSQLiteRepository(tx).SetRecipientBlocked(ctx, recipientID, blocked)
}

func (s *Store) IsGroupBlocked(ctx context.Context, tx dbx.DBTX, groupID []byte) (bool, error) {
	return blocklist.NewSQLiteRepository(tx).IsGroupBlocked(ctx, groupID)
}

func (s *Store) SetGroupBlocked(ctx context.Context, tx dbx.DBTX, groupID []byte, blocked bool) error {
	return blocklist.NewSQLiteRepository(tx).SetGroupBlocked(ctx, groupID, blocked)
}

// HiddenRecipientStore

func (s *Store) IsHidden(ctx context.Context, tx dbx.DBTX, recipientID string) (bool, error) {
	return recipients.NewSQLiteRepository(tx).IsHidden(ctx, recipientID)
}

func (s *Store) SetHidden(ctx context.Context, tx dbx.DBTX, recipientID string, hidden bool) error {
	return recipients.NewSQLiteRepository(tx).SetHidden(ctx, recipientID, hidden)
}

// ProfileStore

func (s *Store) UserProfile(ctx context.Context, tx dbx.DBTX, recipientID string) (*models.Profile, error) {
	return profiles.NewSQLiteRepository(tx).Get(ctx, recipientID)
}

func (s *Store) SetProfileKey(ctx context.Context, tx dbx.DBTX, recipientID string, key []byte) error {
	return profiles.NewSQLiteRepository(tx).SetProfileKey(ctx, recipientID, key)
}

func (s *Store) SetProfileNames(ctx context.Context, tx dbx.DBTX, recipientID string, given, family *string) error {
	return profiles.NewSQLiteRepository(tx).SetNames(ctx, recipientID, given, family)
}

func (s *Store) LocalProfile(ctx context.Context, tx dbx.DBTX) (*models.Profile, error) {
	return profiles.NewSQLiteRepository(tx).Get(ctx, models.LocalProfileRecipientID)
}

func (s *Store) SetLocalProfileKey(ctx context.Context, tx dbx.DBTX, key []byte) error {
	return profiles.NewSQLiteRepository(tx).SetProfileKey(ctx, models.LocalProfileRecipientID, key)
}

func (s *Store) SetLocalProfileNames(ctx context.Context, tx dbx.DBTX, given, family, avatarURL *string) error {
	return profiles.NewSQLiteRepository(tx).SetNamesAndAvatar(ctx, models.LocalProfileRecipientID, given, family, avatarURL)
}

func (s *Store) IsRecipientWhitelisted(ctx context.Context, tx dbx.DBTX, recipientID string) (bool, error) {
	return profiles.NewSQLiteRepository(tx).IsRecipientWhitelisted(ctx, recipientID)
}

func (s *Store) SetRecipientWhitelisted(ctx context.Context, tx dbx.DBTX, recipientID string, whitelisted bool) error {
	return profiles.NewSQLiteRepository(tx).SetRecipientWhitelisted(ctx, recipientID, whitelisted)
}

func (s *Store) IsGroupWhitelisted(ctx context.Context, tx dbx.DBTX, groupID []byte) (bool, error) {
	return profiles.NewSQLiteRepository(tx).IsGroupWhitelisted(ctx, groupID)
}

func (s *Store) SetGroupWhitelisted(ctx context.Context, tx dbx.DBTX, groupID []byte, whitelisted bool) error {
	return profiles.NewSQLiteRepository(tx).SetGroupWhitelisted(ctx, groupID, whitelisted)
}

// IdentityStore

func (s *Store) Identity(ctx context.Context, tx dbx.DBTX, recipientID string) (*models.IdentityRecord, error) {
	return identities.NewSQLiteRepository(tx).Get(ctx, recipientID)
}

func (s *Store) SaveIdentityKey(ctx context.Context, tx dbx.DBTX, recipientID string, key []byte) error {
	return identities.NewSQLiteRepository(tx).SaveKey(ctx, recipientID, key)
}

func (s *Store) SetVerificationState(ctx context.Context, tx dbx.DBTX, recipientID string, state models.VerificationState) error {
	return identities.NewSQLiteRepository(tx).SetVerificationState(ctx, recipientID, state)
}

// ThreadStore

func (s *Store) ContactThread(ctx context.Context, tx dbx.DBTX, recipientID string) (*models.Thread, error) {
	return threads.NewSQLiteRepository(tx).ContactThread(ctx, recipientID)
}

func (s *Store) GetOrCreateContactThread(ctx context.Context, tx dbx.DBTX, recipientID string) (*models.Thread, error) {
	return threads.NewSQLiteRepository(tx).GetOrCreateContactThread(ctx, recipientID)
}

// NoteToSelfThread returns nil while the local recipient or its thread
// does not exist.
func (s *Store) NoteToSelfThread(ctx context.Context, tx dbx.DBTX, local models.LocalIdentifiers) (*models.Thread, error) {
	self, err := recipients.NewSQLiteRepository(tx).GetByACI(ctx, local.ACI)
	if err != nil || self == nil {
		return nil, err
	}
	return threads.NewSQLiteRepository(tx).ContactThread(ctx, self.ID)
}

func (s *Store) GetOrCreateNoteToSelfThread(ctx context.Context, tx dbx.DBTX, local models.LocalIdentifiers) (*models.Thread, error) {
	self, err := s.localRecipient(ctx, tx, local)
	if err != nil {
		return nil, err
	}
	return threads.NewSQLiteRepository(tx).GetOrCreateContactThread(ctx, self.ID)
}

func (s *Store) localRecipient(ctx context.Context, tx dbx.DBTX, local models.LocalIdentifiers) (*models.Recipient, error) {
	repo := recipients.NewSQLiteRepository(tx)
	self, err := repo.GetByACI(ctx, local.ACI)
	if err != nil || self != nil {
		return self, err
	}
	aci := local.ACI
	self = &models.Recipient{ACI: &aci, IsRegistered: true}
	if err := repo.Insert(ctx, self); err != nil {
		return nil, err
	}
	return self, nil
}

func (s *Store) GroupThread(ctx context.Context, tx dbx.DBTX, groupID []byte) (*models.GroupThread, error) {
	return threads.NewSQLiteRepository(tx).GroupThread(ctx, groupID)
}

func (s *Store) SetStoryViewMode(ctx context.Context, tx dbx.DBTX, threadID string, mode models.StoryViewMode) error {
	return threads.NewSQLiteRepository(tx).SetStoryViewMode(ctx, threadID, mode)
}

func (s *Store) SetMentionMode(ctx context.Context, tx dbx.DBTX, threadID string, mode models.MentionMode) error {
	return threads.NewSQLiteRepository(tx).SetMentionMode(ctx, threadID, mode)
}

func (s *Store) AssociatedData(ctx context.Context, tx dbx.DBTX, threadID string) (models.ThreadAssociatedData, error) {
	return threads.NewSQLiteRepository(tx).AssociatedData(ctx, threadID)
}

func (s *Store) SetAssociatedData(ctx context.Context, tx dbx.DBTX, threadID string, data models.ThreadAssociatedData) error {
	return threads.NewSQLiteRepository(tx).SetAssociatedData(ctx, threadID, data)
}

// StoryContextStore

func (s *Store) ContactStoryHidden(ctx context.Context, tx dbx.DBTX, aci uuid.UUID) (*bool, error) {
	return stories.NewSQLiteRepository(tx).ContactStoryHidden(ctx, aci)
}

func (s *Store) SetContactStoryHidden(ctx context.Context, tx dbx.DBTX, aci uuid.UUID, hidden bool) error {
	return stories.NewSQLiteRepository(tx).SetContactStoryHidden(ctx, aci, hidden)
}

func (s *Store) GroupStoryHidden(ctx context.Context, tx dbx.DBTX, groupID []byte) (*bool, error) {
	return stories.NewSQLiteRepository(tx).GroupStoryHidden(ctx, groupID)
}

func (s *Store) SetGroupStoryHidden(ctx context.Context, tx dbx.DBTX, groupID []byte, hidden bool) error {
	return stories.NewSQLiteRepository(tx).SetGroupStoryHidden(ctx, groupID, hidden)
}

// StoryListStore

func (s *Store) StoryList(ctx context.Context, tx dbx.DBTX, id uuid.UUID) (*models.PrivateStoryList, error) {
	return stories.NewSQLiteRepository(tx).Get(ctx, id)
}

func (s *Store) InsertStoryList(ctx context.Context, tx dbx.DBTX, list *models.PrivateStoryList) error {
	return stories.NewSQLiteRepository(tx).Insert(ctx, list)
}

func (s *Store) UpdateStoryList(ctx context.Context, tx dbx.DBTX, list *models.PrivateStoryList) error {
	return stories.NewSQLiteRepository(tx).Update(ctx, list)
}

func (s *Store) DeleteStoryList(ctx context.Context, tx dbx.DBTX, id uuid.UUID) error {
	return stories.NewSQLiteRepository(tx).Delete(ctx, id)
}

func (s *Store) DeletedAt(ctx context.Context, tx dbx.DBTX, id uuid.UUID) (uint64, error) {
	return stories.NewSQLiteRepository(tx).DeletedAt(ctx, id)
}

func (s *Store) RecordDeletion(ctx context.Context, tx dbx.DBTX, id uuid.UUID, deletedAt uint64) error {
	return stories.NewSQLiteRepository(tx).RecordDeletion(ctx, id, deletedAt)
}

// SystemContactStore

func (s *Store) SystemContact(ctx context.Context, tx dbx.DBTX, phoneNumber string) (*models.SystemContact, error) {
	return contacts.NewSQLiteRepository(tx).Get(ctx, phoneNumber)
}

func (s *Store) InsertSystemContact(ctx context.Context, tx dbx.DBTX, contact *models.SystemContact) error {
	return contacts.NewSQLiteRepository(tx).Insert(ctx, contact)
}

func (s *Store) RemoveSystemContact(ctx context.Context, tx dbx.DBTX, phoneNumber string) error {
	return contacts.NewSQLiteRepository(tx).Remove(ctx, phoneNumber)
}

// UsernameLookupStore

func (s *Store) Username(ctx context.Context, tx dbx.DBTX, aci uuid.UUID) (*string, error) {
	return recipients.NewSQLiteRepository(tx).Username(ctx, aci)
}

func (s *Store) SetUsername(ctx context.Context, tx dbx.DBTX, aci uuid.UUID, username *string) error {
	return recipients.NewSQLiteRepository(tx).SetUsername(ctx, aci, username)
}

// LocalUsernameStore, AccountSettingsStore, PinnedConversationStore

func (s *Store) UsernameState(ctx context.Context, tx dbx.DBTX) (models.LocalUsernameState, error) {
	return preferences.NewSQLiteRepository(tx).UsernameState(ctx)
}

func (s *Store) SetUsernameState(ctx context.Context, tx dbx.DBTX, state models.LocalUsernameState) error {
	return preferences.NewSQLiteRepository(tx).SetUsernameState(ctx, state)
}

func (s *Store) UsernameLinkColor(ctx context.Context, tx dbx.DBTX) (models.UsernameLinkColor, error) {
	return preferences.NewSQLiteRepository(tx).UsernameLinkColor(ctx)
}

func (s *Store) SetUsernameLinkColor(ctx context.Context, tx dbx.DBTX, color models.UsernameLinkColor) error {
	return preferences.NewSQLiteRepository(tx).SetUsernameLinkColor(ctx, color)
}

func (s *Store) AccountSettings(ctx context.Context, tx dbx.DBTX) (models.AccountSettings, error) {
	return preferences.NewSQLiteRepository(tx).AccountSettings(ctx)
}

func (s *Store) SaveAccountSettings(ctx context.Context, tx dbx.DBTX, settings models.AccountSettings) error {
	return preferences.NewSQLiteRepository(tx).SaveAccountSettings(ctx, settings)
}

func (s *Store) PinnedConversations(ctx context.Context, tx dbx.DBTX) ([]models.PinnedConversation, error) {
	return preferences.NewSQLiteRepository(tx).PinnedConversations(ctx)
}

func (s *Store) SetPinnedConversations(ctx context.Context, tx dbx.DBTX, pinned []models.PinnedConversation) error {
	return preferences.NewSQLiteRepository(tx).SetPinnedConversations(ctx, pinned)
}
