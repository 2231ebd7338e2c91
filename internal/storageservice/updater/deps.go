package updater

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/storagesync/internal/client/models"
	"github.com/dmitrijs2005/storagesync/internal/dbx"
	"github.com/dmitrijs2005/storagesync/internal/logging"
)

// RecipientStore reads and updates recipients.
type RecipientStore interface {
	RecipientByID(ctx context.Context, tx dbx.DBTX, id string) (*models.Recipient, error)
	MarkRegistered(ctx context.Context, tx dbx.DBTX, id string) error
	MarkUnregistered(ctx context.Context, tx dbx.DBTX, id string, unregisteredAt uint64) error
}

// RecipientMerger resolves service identifiers and phone numbers to one
// canonical recipient, moving identifiers between recipients as needed.
type RecipientMerger interface {
	MergeFromStorageService(ctx context.Context, tx dbx.DBTX, local models.LocalIdentifiers, aci, pni *uuid.UUID, phoneNumber *string) (*models.Recipient, error)
	SplitUnregisteredRecipient(ctx context.Context, tx dbx.DBTX, local models.LocalIdentifiers, recipient *models.Recipient) (*models.Recipient, error)
}

type BlockingStore interface {
	IsRecipientBlocked(ctx context.Context, tx dbx.DBTX, recipientID string) (bool, error)
	SetRecipientBlocked(ctx context.Context, tx dbx.DBTX, recipientID string, blocked bool) error
	IsGroupBlocked(ctx context.Context, tx dbx.DBTX, groupID []byte) (bool, error)
	SetGroupBlocked(ctx context.Context, tx dbx.DBTX, groupID []byte, blocked bool) error
}

type HiddenRecipientStore interface {
	IsHidden(ctx context.Context, tx dbx.DBTX, recipientID string) (bool, error)
	SetHidden(ctx context.Context, tx dbx.DBTX, recipientID string, hidden bool) error
}

// ProfileStore holds user profiles, the local profile, and the profile
// sharing whitelist.
type ProfileStore interface {
	UserProfile(ctx context.Context, tx dbx.DBTX, recipientID string) (*models.Profile, error)
	SetProfileKey(ctx context.Context, tx dbx.DBTX, recipientID string, key []byte) error
	SetProfileNames(ctx context.Context, tx dbx.DBTX, recipientID string, given, family *string) error

	LocalProfile(ctx context.Context, tx dbx.DBTX) (*models.Profile, error)
	SetLocalProfileKey(ctx context.Context, tx dbx.DBTX, key []byte) error
	SetLocalProfileNames(ctx context.Context, tx dbx.DBTX, given, family, avatarURL *string) error

	IsRecipientWhitelisted(ctx context.Context, tx dbx.DBTX, recipientID string) (bool, error)
	SetRecipientWhitelisted(ctx context.Context, tx dbx.DBTX, recipientID string, whitelisted bool) error
	IsGroupWhitelisted(ctx context.Context, tx dbx.DBTX, groupID []byte) (bool, error)
	SetGroupWhitelisted(ctx context.Context, tx dbx.DBTX, groupID []byte, whitelisted bool) error
}

// ProfileFetcher schedules a profile refresh. FetchProfile must return
// immediately; the fetch happens outside the caller's transaction.
type ProfileFetcher interface {
	FetchProfile(serviceID models.ServiceID)
}

type IdentityStore interface {
	Identity(ctx context.Context, tx dbx.DBTX, recipientID string) (*models.IdentityRecord, error)
	SaveIdentityKey(ctx context.Context, tx dbx.DBTX, recipientID string, key []byte) error
	SetVerificationState(ctx context.Context, tx dbx.DBTX, recipientID string, state models.VerificationState) error
}

type ThreadStore interface {
	ContactThread(ctx context.Context, tx dbx.DBTX, recipientID string) (*models.Thread, error)
	GetOrCreateContactThread(ctx context.Context, tx dbx.DBTX, recipientID string) (*models.Thread, error)
	NoteToSelfThread(ctx context.Context, tx dbx.DBTX, local models.LocalIdentifiers) (*models.Thread, error)
	GetOrCreateNoteToSelfThread(ctx context.Context, tx dbx.DBTX, local models.LocalIdentifiers) (*models.Thread, error)
	GroupThread(ctx context.Context, tx dbx.DBTX, groupID []byte) (*models.GroupThread, error)
	SetStoryViewMode(ctx context.Context, tx dbx.DBTX, threadID string, mode models.StoryViewMode) error
	SetMentionMode(ctx context.Context, tx dbx.DBTX, threadID string, mode models.MentionMode) error
	AssociatedData(ctx context.Context, tx dbx.DBTX, threadID string) (models.ThreadAssociatedData, error)
	SetAssociatedData(ctx context.Context, tx dbx.DBTX, threadID string, data models.ThreadAssociatedData) error
}

// StoryContextStore holds the per-sender "hide story" flag. A nil result
// means no context has been recorded.
type StoryContextStore interface {
	ContactStoryHidden(ctx context.Context, tx dbx.DBTX, aci uuid.UUID) (*bool, error)
	SetContactStoryHidden(ctx context.Context, tx dbx.DBTX, aci uuid.UUID, hidden bool) error
	GroupStoryHidden(ctx context.Context, tx dbx.DBTX, groupID []byte) (*bool, error)
	SetGroupStoryHidden(ctx context.Context, tx dbx.DBTX, groupID []byte, hidden bool) error
}

type StoryListStore interface {
	StoryList(ctx context.Context, tx dbx.DBTX, id uuid.UUID) (*models.PrivateStoryList, error)
	InsertStoryList(ctx context.Context, tx dbx.DBTX, list *models.PrivateStoryList) error
	UpdateStoryList(ctx context.Context, tx dbx.DBTX, list *models.PrivateStoryList) error
	DeleteStoryList(ctx context.Context, tx dbx.DBTX, id uuid.UUID) error
	// DeletedAt returns the tombstone timestamp, or 0.
	DeletedAt(ctx context.Context, tx dbx.DBTX, id uuid.UUID) (uint64, error)
	RecordDeletion(ctx context.Context, tx dbx.DBTX, id uuid.UUID, deletedAt uint64) error
}

type SystemContactStore interface {
	SystemContact(ctx context.Context, tx dbx.DBTX, phoneNumber string) (*models.SystemContact, error)
	InsertSystemContact(ctx context.Context, tx dbx.DBTX, contact *models.SystemContact) error
	RemoveSystemContact(ctx context.Context, tx dbx.DBTX, phoneNumber string) error
}

// UsernameLookupStore caches usernames of other accounts.
type UsernameLookupStore interface {
	Username(ctx context.Context, tx dbx.DBTX, aci uuid.UUID) (*string, error)
	SetUsername(ctx context.Context, tx dbx.DBTX, aci uuid.UUID, username *string) error
}

// LocalUsernameStore holds the local account's username state.
type LocalUsernameStore interface {
	UsernameState(ctx context.Context, tx dbx.DBTX) (models.LocalUsernameState, error)
	SetUsernameState(ctx context.Context, tx dbx.DBTX, state models.LocalUsernameState) error
	UsernameLinkColor(ctx context.Context, tx dbx.DBTX) (models.UsernameLinkColor, error)
	SetUsernameLinkColor(ctx context.Context, tx dbx.DBTX, color models.UsernameLinkColor) error
}

// GroupsV2 validates master keys, derives group ids, and tracks groups that
// still have to be created locally.
type GroupsV2 interface {
	IsValidMasterKey(masterKey []byte) bool
	GroupID(masterKey []byte) ([]byte, error)
	EnsureGroupIDMapping(ctx context.Context, tx dbx.DBTX, groupID []byte) error
	RestoreGroup(ctx context.Context, tx dbx.DBTX, restore models.PendingGroupRestore) error
	PendingRestore(ctx context.Context, tx dbx.DBTX, masterKey []byte) (*models.PendingGroupRestore, error)
}

type AccountSettingsStore interface {
	AccountSettings(ctx context.Context, tx dbx.DBTX) (models.AccountSettings, error)
	SaveAccountSettings(ctx context.Context, tx dbx.DBTX, settings models.AccountSettings) error
}

type PinnedConversationStore interface {
	PinnedConversations(ctx context.Context, tx dbx.DBTX) ([]models.PinnedConversation, error)
	SetPinnedConversations(ctx context.Context, tx dbx.DBTX, pinned []models.PinnedConversation) error
}

// Deps is everything the updaters need. Each updater uses a subset.
type Deps struct {
	Local           models.LocalIdentifiers
	IsPrimaryDevice bool
	// Now defaults to time.Now.
	Now    func() time.Time
	Logger logging.Logger

	Recipients          RecipientStore
	Merger              RecipientMerger
	Blocking            BlockingStore
	Hidden              HiddenRecipientStore
	Profiles            ProfileStore
	ProfileFetcher      ProfileFetcher
	Identities          IdentityStore
	Threads             ThreadStore
	StoryContexts       StoryContextStore
	StoryLists          StoryListStore
	SystemContacts      SystemContactStore
	Usernames           UsernameLookupStore
	LocalUsername       LocalUsernameStore
	Groups              GroupsV2
	AccountSettings     AccountSettingsStore
	PinnedConversations PinnedConversationStore
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
