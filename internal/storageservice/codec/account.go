package codec

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dmitrijs2005/storagesync/internal/storageservice/records"
)

const (
	accountProfileKey                  protowire.Number = 1
	accountGivenName                   protowire.Number = 2
	accountFamilyName                  protowire.Number = 3
	accountAvatarURL                   protowire.Number = 4
	accountNoteToSelfArchived          protowire.Number = 5
	accountReadReceipts                protowire.Number = 6
	accountSealedSenderIndicators      protowire.Number = 7
	accountTypingIndicators            protowire.Number = 8
	accountProxiedLinkPreviews         protowire.Number = 9
	accountNoteToSelfMarkedUnread      protowire.Number = 10
	accountLinkPreviews                protowire.Number = 11
	accountPhoneNumberSharingMode      protowire.Number = 12
	accountNotDiscoverable             protowire.Number = 13
	accountPinnedConversations         protowire.Number = 14
	accountPreferContactAvatars        protowire.Number = 15
	accountPayments                    protowire.Number = 16
	accountUniversalExpireTimer        protowire.Number = 17
	accountPreferredReactionEmoji      protowire.Number = 20
	accountSubscriberID                protowire.Number = 21
	accountSubscriberCurrencyCode      protowire.Number = 22
	accountDisplayBadgesOnProfile      protowire.Number = 23
	accountSubscriptionCancelled       protowire.Number = 24
	accountKeepMutedChatsArchived      protowire.Number = 25
	accountHasSetMyStoriesPrivacy      protowire.Number = 26
	accountHasViewedOnboardingStory    protowire.Number = 27
	accountStoriesDisabled             protowire.Number = 28
	accountStoryViewReceiptsEnabled    protowire.Number = 29
	accountHasReadOnboardingStory      protowire.Number = 30
	accountCompletedUsernameOnboarding protowire.Number = 32
	accountUsername                    protowire.Number = 33
	accountUsernameLink                protowire.Number = 34
)

const (
	paymentsEnabled protowire.Number = 1
	paymentsEntropy protowire.Number = 2
)

const (
	usernameLinkEntropy  protowire.Number = 1
	usernameLinkServerID protowire.Number = 2
	usernameLinkColor    protowire.Number = 3
)

const (
	pinnedContact        protowire.Number = 1
	pinnedLegacyGroupID  protowire.Number = 3
	pinnedGroupMasterKey protowire.Number = 4

	pinnedContactServiceID protowire.Number = 1
	pinnedContactE164      protowire.Number = 2
)

func EncodeAccount(a *records.Account) []byte {
	var w writer
	w.bytes(accountProfileKey, a.ProfileKey)
	w.str(accountGivenName, a.GivenName)
	w.str(accountFamilyName, a.FamilyName)
	w.str(accountAvatarURL, a.AvatarURL)
	w.boolean(accountNoteToSelfArchived, a.NoteToSelfArchived)
	w.boolean(accountReadReceipts, a.ReadReceipts)
	w.boolean(accountSealedSenderIndicators, a.SealedSenderIndicators)
	w.boolean(accountTypingIndicators, a.TypingIndicators)
	w.boolean(accountProxiedLinkPreviews, a.ProxiedLinkPreviews)
	w.boolean(accountNoteToSelfMarkedUnread, a.NoteToSelfMarkedUnread)
	w.boolean(accountLinkPreviews, a.LinkPreviews)
	writeEnum(&w, accountPhoneNumberSharingMode, a.PhoneNumberSharingMode)
	w.boolean(accountNotDiscoverable, a.NotDiscoverableByPhoneNumber)
	for _, p := range a.PinnedConversations {
		w.message(accountPinnedConversations, encodePinned(p))
	}
	w.boolean(accountPreferContactAvatars, a.PreferContactAvatars)
	if a.Payments != nil {
		var pw writer
		pw.boolean(paymentsEnabled, a.Payments.Enabled)
		pw.bytes(paymentsEntropy, a.Payments.Entropy)
		w.message(accountPayments, pw.bytesOut())
	}
	w.uint64(accountUniversalExpireTimer, uint64(a.UniversalExpireTimer))
	w.strs(accountPreferredReactionEmoji, a.PreferredReactionEmoji)
	w.bytes(accountSubscriberID, a.SubscriberID)
	w.str(accountSubscriberCurrencyCode, a.SubscriberCurrencyCode)
	w.boolean(accountDisplayBadgesOnProfile, a.DisplayBadgesOnProfile)
	w.boolean(accountSubscriptionCancelled, a.SubscriptionManuallyCancelled)
	w.boolean(accountKeepMutedChatsArchived, a.KeepMutedChatsArchived)
	w.boolean(accountHasSetMyStoriesPrivacy, a.HasSetMyStoriesPrivacy)
	w.boolean(accountHasViewedOnboardingStory, a.HasViewedOnboardingStory)
	w.boolean(accountStoriesDisabled, a.StoriesDisabled)
	writeEnum(&w, accountStoryViewReceiptsEnabled, a.StoryViewReceiptsEnabled)
	w.boolean(accountHasReadOnboardingStory, a.HasReadOnboardingStory)
	w.boolean(accountCompletedUsernameOnboarding, a.HasCompletedUsernameOnboarding)
	w.str(accountUsername, a.Username)
	if a.UsernameLink != nil {
		var lw writer
		lw.bytes(usernameLinkEntropy, a.UsernameLink.Entropy)
		lw.bytes(usernameLinkServerID, a.UsernameLink.ServerID)
		writeEnum(&lw, usernameLinkColor, a.UsernameLink.Color)
		w.message(accountUsernameLink, lw.bytesOut())
	}
	w.raw(a.UnknownFields)
	return w.bytesOut()
}

func encodePinned(p records.PinnedConversation) []byte {
	var w writer
	switch {
	case p.Contact != nil:
		var cw writer
		cw.str(pinnedContactServiceID, p.Contact.ServiceID)
		cw.str(pinnedContactE164, p.Contact.E164)
		w.message(pinnedContact, cw.bytesOut())
	case p.GroupMasterKey != nil:
		w.bytes(pinnedGroupMasterKey, p.GroupMasterKey)
	case p.LegacyGroupID != nil:
		w.bytes(pinnedLegacyGroupID, p.LegacyGroupID)
	}
	return w.bytesOut()
}

func DecodeAccount(b []byte) (*records.Account, error) {
	fields, err := parseFields(b)
	if err != nil {
		return nil, err
	}

	a := &records.Account{}
	var r reader
	for _, f := range fields {
		switch f.num {
		case accountProfileKey:
			r.bytes(f, &a.ProfileKey)
		case accountGivenName:
			r.str(f, &a.GivenName)
		case accountFamilyName:
			r.str(f, &a.FamilyName)
		case accountAvatarURL:
			r.str(f, &a.AvatarURL)
		case accountNoteToSelfArchived:
			r.boolean(f, &a.NoteToSelfArchived)
		case accountReadReceipts:
			r.boolean(f, &a.ReadReceipts)
		case accountSealedSenderIndicators:
			r.boolean(f, &a.SealedSenderIndicators)
		case accountTypingIndicators:
			r.boolean(f, &a.TypingIndicators)
		case accountProxiedLinkPreviews:
			r.boolean(f, &a.ProxiedLinkPreviews)
		case accountNoteToSelfMarkedUnread:
			r.boolean(f, &a.NoteToSelfMarkedUnread)
		case accountLinkPreviews:
			r.boolean(f, &a.LinkPreviews)
		case accountPhoneNumberSharingMode:
			readEnum(&r, f, &a.PhoneNumberSharingMode)
		case accountNotDiscoverable:
			r.boolean(f, &a.NotDiscoverableByPhoneNumber)
		case accountPinnedConversations:
			if m, ok := r.message(f); ok {
				// A malformed entry is dropped on its own.
				if p, err := decodePinned(m); err == nil {
					a.PinnedConversations = append(a.PinnedConversations, p)
				}
			}
		case accountPreferContactAvatars:
			r.boolean(f, &a.PreferContactAvatars)
		case accountPayments:
			if m, ok := r.message(f); ok {
				p, err := decodePayments(m)
				if err != nil {
					return nil, err
				}
				a.Payments = p
			}
		case accountUniversalExpireTimer:
			r.uint32(f, &a.UniversalExpireTimer)
		case accountPreferredReactionEmoji:
			r.strs(f, &a.PreferredReactionEmoji)
		case accountSubscriberID:
			r.bytes(f, &a.SubscriberID)
		case accountSubscriberCurrencyCode:
			r.str(f, &a.SubscriberCurrencyCode)
		case accountDisplayBadgesOnProfile:
			r.boolean(f, &a.DisplayBadgesOnProfile)
		case accountSubscriptionCancelled:
			r.boolean(f, &a.SubscriptionManuallyCancelled)
		case accountKeepMutedChatsArchived:
			r.boolean(f, &a.KeepMutedChatsArchived)
		case accountHasSetMyStoriesPrivacy:
			r.boolean(f, &a.HasSetMyStoriesPrivacy)
		case accountHasViewedOnboardingStory:
			r.boolean(f, &a.HasViewedOnboardingStory)
		case accountStoriesDisabled:
			r.boolean(f, &a.StoriesDisabled)
		case accountStoryViewReceiptsEnabled:
			readEnum(&r, f, &a.StoryViewReceiptsEnabled)
		case accountHasReadOnboardingStory:
			r.boolean(f, &a.HasReadOnboardingStory)
		case accountCompletedUsernameOnboarding:
			r.boolean(f, &a.HasCompletedUsernameOnboarding)
		case accountUsername:
			r.str(f, &a.Username)
		case accountUsernameLink:
			if m, ok := r.message(f); ok {
				l, err := decodeUsernameLink(m)
				if err != nil {
					return nil, err
				}
				a.UsernameLink = l
			}
		default:
			r.skip(f)
		}
	}
	a.UnknownFields = r.unknownFields()
	return a, nil
}

func decodePayments(b []byte) (*records.Payments, error) {
	fields, err := parseFields(b)
	if err != nil {
		return nil, err
	}
	p := &records.Payments{}
	var r reader
	for _, f := range fields {
		switch f.num {
		case paymentsEnabled:
			r.boolean(f, &p.Enabled)
		case paymentsEntropy:
			r.bytes(f, &p.Entropy)
		}
	}
	return p, nil
}

func decodeUsernameLink(b []byte) (*records.UsernameLink, error) {
	fields, err := parseFields(b)
	if err != nil {
		return nil, err
	}
	l := &records.UsernameLink{}
	var r reader
	for _, f := range fields {
		switch f.num {
		case usernameLinkEntropy:
			r.bytes(f, &l.Entropy)
		case usernameLinkServerID:
			r.bytes(f, &l.ServerID)
		case usernameLinkColor:
			readEnum(&r, f, &l.Color)
		}
	}
	return l, nil
}

func decodePinned(b []byte) (records.PinnedConversation, error) {
	fields, err := parseFields(b)
	if err != nil {
		return records.PinnedConversation{}, err
	}
	var p records.PinnedConversation
	var r reader
	for _, f := range fields {
		switch f.num {
		case pinnedContact:
			m, ok := r.message(f)
			if !ok {
				continue
			}
			contactFields, err := parseFields(m)
			if err != nil {
				return records.PinnedConversation{}, err
			}
			c := &records.PinnedContact{}
			for _, cf := range contactFields {
				switch cf.num {
				case pinnedContactServiceID:
					r.str(cf, &c.ServiceID)
				case pinnedContactE164:
					r.str(cf, &c.E164)
				}
			}
			p.Contact = c
		case pinnedLegacyGroupID:
			r.bytes(f, &p.LegacyGroupID)
		case pinnedGroupMasterKey:
			r.bytes(f, &p.GroupMasterKey)
		}
	}
	return p, nil
}
