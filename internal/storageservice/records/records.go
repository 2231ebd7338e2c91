package records

// IdentityState is the verification state carried by a contact record.
type IdentityState int32

const (
	IdentityStateDefault    IdentityState = 0
	IdentityStateVerified   IdentityState = 1
	IdentityStateUnverified IdentityState = 2
)

// Contact describes one recipient.
type Contact struct {
	ACI                     *string
	E164                    *string
	PNI                     *string
	ProfileKey              []byte
	IdentityKey             []byte
	IdentityState           *IdentityState
	GivenName               *string
	FamilyName              *string
	Username                *string
	Blocked                 bool
	Whitelisted             bool
	Archived                bool
	MarkedUnread            bool
	MutedUntilTimestamp     uint64
	HideStory               bool
	UnregisteredAtTimestamp uint64
	SystemGivenName         *string
	SystemFamilyName        *string
	SystemNickname          *string
	Hidden                  bool

	UnknownFields []byte
}

// GroupV1 is a legacy group. Only the id is understood.
type GroupV1 struct {
	ID []byte

	UnknownFields []byte
}

// StorySendMode of a v2 group. Values outside the known range are kept so
// they survive a round trip.
type StorySendMode int32

const (
	StorySendModeDefault  StorySendMode = 0
	StorySendModeDisabled StorySendMode = 1
	StorySendModeEnabled  StorySendMode = 2
)

// GroupV2 describes one v2 group, keyed by its master key.
type GroupV2 struct {
	MasterKey                    []byte
	Blocked                      bool
	Whitelisted                  bool
	Archived                     bool
	MarkedUnread                 bool
	MutedUntilTimestamp          uint64
	DontNotifyForMentionsIfMuted bool
	HideStory                    bool
	StorySendMode                *StorySendMode

	UnknownFields []byte
}

// PhoneNumberSharingMode as carried by the account record.
type PhoneNumberSharingMode int32

const (
	PhoneNumberSharingModeUnknown   PhoneNumberSharingMode = 0
	PhoneNumberSharingModeEverybody PhoneNumberSharingMode = 1
	PhoneNumberSharingModeNobody    PhoneNumberSharingMode = 2
)

// OptionalBool distinguishes unset from an explicit false.
type OptionalBool int32

const (
	OptionalBoolUnset    OptionalBool = 0
	OptionalBoolEnabled  OptionalBool = 1
	OptionalBoolDisabled OptionalBool = 2
)

// OptionalBoolFrom maps a nil-able bool.
func OptionalBoolFrom(b *bool) OptionalBool {
	switch {
	case b == nil:
		return OptionalBoolUnset
	case *b:
		return OptionalBoolEnabled
	default:
		return OptionalBoolDisabled
	}
}

// Bool returns nil for unset and unrecognized values.
func (o OptionalBool) Bool() *bool {
	var v bool
	switch o {
	case OptionalBoolEnabled:
		v = true
	case OptionalBoolDisabled:
		v = false
	default:
		return nil
	}
	return &v
}

// UsernameLinkColor as carried by the account record.
type UsernameLinkColor int32

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

type UsernameLink struct {
	Entropy  []byte
	ServerID []byte
	Color    UsernameLinkColor
}

type Payments struct {
	Enabled bool
	Entropy []byte
}

// PinnedContact is a pinned 1:1 conversation.
type PinnedContact struct {
	ServiceID *string
	E164      *string
}

// PinnedConversation holds exactly one of Contact, GroupMasterKey or
// LegacyGroupID. A decoded entry may hold none when it was malformed.
type PinnedConversation struct {
	Contact        *PinnedContact
	LegacyGroupID  []byte
	GroupMasterKey []byte
}

// Account carries the local account's own settings.
type Account struct {
	ProfileKey                     []byte
	GivenName                      *string
	FamilyName                     *string
	AvatarURL                      *string
	NoteToSelfArchived             bool
	ReadReceipts                   bool
	SealedSenderIndicators         bool
	TypingIndicators               bool
	ProxiedLinkPreviews            bool
	NoteToSelfMarkedUnread         bool
	LinkPreviews                   bool
	PhoneNumberSharingMode         PhoneNumberSharingMode
	NotDiscoverableByPhoneNumber   bool
	PinnedConversations            []PinnedConversation
	PreferContactAvatars           bool
	Payments                       *Payments
	UniversalExpireTimer           uint32
	PreferredReactionEmoji         []string
	SubscriberID                   []byte
	SubscriberCurrencyCode         *string
	DisplayBadgesOnProfile         bool
	SubscriptionManuallyCancelled  bool
	KeepMutedChatsArchived         bool
	HasSetMyStoriesPrivacy         bool
	HasViewedOnboardingStory       bool
	StoriesDisabled                bool
	StoryViewReceiptsEnabled       OptionalBool
	HasReadOnboardingStory         bool
	HasCompletedUsernameOnboarding bool
	Username                       *string
	UsernameLink                   *UsernameLink

	UnknownFields []byte
}

// StoryDistributionList describes a story audience.
type StoryDistributionList struct {
	Identifier          []byte
	Name                *string
	RecipientServiceIDs []string
	DeletedAtTimestamp  uint64
	AllowsReplies       bool
	IsBlockList         bool

	UnknownFields []byte
}

// StorageItem is a record paired with the identifier it is stored under.
// Exactly one record pointer matching Identifier.Type is set. A decoded
// item of an unknown kind carries only Unknown.
type StorageItem struct {
	Identifier StorageIdentifier

	Contact               *Contact
	GroupV1               *GroupV1
	GroupV2               *GroupV2
	Account               *Account
	StoryDistributionList *StoryDistributionList

	// Unknown is the raw payload of a record kind this version does not know.
	Unknown []byte
}

// Manifest lists every identifier that makes up one version of the store.
type Manifest struct {
	Version     uint64
	Identifiers []StorageIdentifier
}
