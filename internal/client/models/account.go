package models

import (
	"bytes"

	"github.com/google/uuid"
)

const (
	UsernameLinkHandleLength  = 16
	UsernameLinkEntropyLength = 32

	// MaxPinnedConversations is the number of pinned conversations a
	// client shows; longer lists are kept but logged.
	MaxPinnedConversations = 4
)

// UsernameLink is the shareable link for a username.
type UsernameLink struct {
	Handle  uuid.UUID
	Entropy []byte
}

// NewUsernameLink validates the raw handle and entropy.
func NewUsernameLink(handle, entropy []byte) (*UsernameLink, bool) {
	if len(handle) != UsernameLinkHandleLength || len(entropy) != UsernameLinkEntropyLength {
		return nil, false
	}
	h, err := uuid.FromBytes(handle)
	if err != nil {
		return nil, false
	}
	return &UsernameLink{Handle: h, Entropy: bytes.Clone(entropy)}, true
}

type UsernameStateKind int

const (
	UsernameStateUnset UsernameStateKind = iota
	UsernameStateAvailable
	UsernameStateLinkCorrupted
)

// LocalUsernameState is the local account's username and link.
type LocalUsernameState struct {
	Kind     UsernameStateKind `json:"kind"`
	Username string            `json:"username,omitempty"`
	Link     *UsernameLink     `json:"link,omitempty"`
}

// UsernameLinkColor is the QR code color shown with a username link.
type UsernameLinkColor int

const (
	UsernameLinkColorUnknown UsernameLinkColor = iota
	UsernameLinkColorBlue
	UsernameLinkColorWhite
	UsernameLinkColorGrey
	UsernameLinkColorOlive
	UsernameLinkColorGreen
	UsernameLinkColorOrange
	UsernameLinkColorPink
	UsernameLinkColorPurple
)

// PaymentsState is enabled only when entropy is present.
type PaymentsState struct {
	Enabled bool   `json:"enabled"`
	Entropy []byte `json:"entropy,omitempty"`
}

func NewPaymentsState(enabled bool, entropy []byte) PaymentsState {
	if entropy == nil {
		return PaymentsState{}
	}
	return PaymentsState{Enabled: enabled, Entropy: bytes.Clone(entropy)}
}

func (p PaymentsState) Equal(o PaymentsState) bool {
	return p.Enabled == o.Enabled && bytes.Equal(p.Entropy, o.Entropy)
}

type PhoneNumberSharingMode int

const (
	PhoneNumberSharingUnset PhoneNumberSharingMode = iota
	PhoneNumberSharingEverybody
	PhoneNumberSharingNobody
)

type PhoneNumberDiscoverability int

const (
	DiscoverabilityUnset PhoneNumberDiscoverability = iota
	DiscoverabilityEverybody
	DiscoverabilityNobody
)

// DisappearingMessagesToken is the universal disappearing message timer.
type DisappearingMessagesToken struct {
	Enabled         bool   `json:"enabled"`
	DurationSeconds uint32 `json:"duration_seconds"`
}

func DisappearingMessagesTokenFromSeconds(seconds uint32) DisappearingMessagesToken {
	return DisappearingMessagesToken{Enabled: seconds > 0, DurationSeconds: seconds}
}

// PinnedConversation points at a contact or a group. GroupID is always set
// for groups; MasterKey only for v2 groups.
type PinnedConversation struct {
	Contact   *Address `json:"contact,omitempty"`
	GroupID   []byte   `json:"group_id,omitempty"`
	MasterKey []byte   `json:"master_key,omitempty"`
}

// AccountSettings are the account-wide preferences synced through the
// account record.
type AccountSettings struct {
	ReadReceipts                  bool                       `json:"read_receipts"`
	StoryViewReceipts             *bool                      `json:"story_view_receipts,omitempty"`
	SealedSenderIndicators        bool                       `json:"sealed_sender_indicators"`
	TypingIndicators              bool                       `json:"typing_indicators"`
	LinkPreviews                  bool                       `json:"link_previews"`
	ProxiedLinkPreviews           bool                       `json:"proxied_link_previews"`
	PhoneNumberSharing            PhoneNumberSharingMode     `json:"phone_number_sharing"`
	Discoverability               PhoneNumberDiscoverability `json:"discoverability"`
	PreferContactAvatars          bool                       `json:"prefer_contact_avatars"`
	Payments                      PaymentsState              `json:"payments"`
	UniversalExpireTimer          DisappearingMessagesToken  `json:"universal_expire_timer"`
	PreferredReactionEmoji        []string                   `json:"preferred_reaction_emoji,omitempty"`
	SubscriberID                  []byte                     `json:"subscriber_id,omitempty"`
	SubscriberCurrencyCode        *string                    `json:"subscriber_currency_code,omitempty"`
	DisplayBadgesOnProfile        bool                       `json:"display_badges_on_profile"`
	SubscriptionManuallyCancelled bool                       `json:"subscription_manually_cancelled"`
	KeepMutedChatsArchived        bool                       `json:"keep_muted_chats_archived"`
	HasSetMyStoryPrivacy          bool                       `json:"has_set_my_story_privacy"`
	HasReadOnboardingStory        bool                       `json:"has_read_onboarding_story"`
	HasViewedOnboardingStory      bool                       `json:"has_viewed_onboarding_story"`
	ShouldShowUsernameEducation   bool                       `json:"should_show_username_education"`
	StoriesEnabled                bool                       `json:"stories_enabled"`
}

// DefaultAccountSettings is what a fresh install starts with.
func DefaultAccountSettings() AccountSettings {
	return AccountSettings{
		ReadReceipts:                true,
		SealedSenderIndicators:      false,
		TypingIndicators:            true,
		LinkPreviews:                true,
		ShouldShowUsernameEducation: true,
		StoriesEnabled:              true,
	}
}
