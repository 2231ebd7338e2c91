package updater

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"slices"

	"github.com/dmitrijs2005/storagesync/internal/client/models"
	"github.com/dmitrijs2005/storagesync/internal/dbx"
	"github.com/dmitrijs2005/storagesync/internal/storageservice/records"
)

// AccountUpdater syncs the single account record.
type AccountUpdater struct {
	d Deps
}

func NewAccountUpdater(d Deps) *AccountUpdater {
	return &AccountUpdater{d: d}
}

func (u *AccountUpdater) UnknownFields(record *records.Account) []byte {
	return record.UnknownFields
}

func (u *AccountUpdater) BuildStorageItem(record *records.Account) records.StorageItem {
	return records.StorageItem{
		Identifier: records.NewStorageIdentifier(records.KindAccount),
		Account:    record,
	}
}

func (u *AccountUpdater) BuildRecord(ctx context.Context, _ AccountID, unknownFields []byte, tx dbx.DBTX) (*records.Account, error) {
	d := u.d
	rec := &records.Account{UnknownFields: unknownFields}

	profile, err := d.Profiles.LocalProfile(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("load local profile: %w", err)
	}
	if profile != nil {
		rec.ProfileKey = profile.ProfileKey
		rec.GivenName = profile.GivenName
		rec.FamilyName = profile.FamilyName
		rec.AvatarURL = profile.AvatarURL
	}

	thread, err := d.Threads.NoteToSelfThread(ctx, tx, d.Local)
	if err != nil {
		return nil, err
	}
	if thread != nil {
		data, err := d.Threads.AssociatedData(ctx, tx, thread.ID)
		if err != nil {
			return nil, err
		}
		rec.NoteToSelfArchived = data.IsArchived
		rec.NoteToSelfMarkedUnread = data.IsMarkedUnread
	}

	s, err := d.AccountSettings.AccountSettings(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("load account settings: %w", err)
	}
	rec.ReadReceipts = s.ReadReceipts
	rec.StoryViewReceiptsEnabled = records.OptionalBoolFrom(s.StoryViewReceipts)
	rec.SealedSenderIndicators = s.SealedSenderIndicators
	rec.TypingIndicators = s.TypingIndicators
	rec.LinkPreviews = s.LinkPreviews
	rec.ProxiedLinkPreviews = s.ProxiedLinkPreviews
	rec.PhoneNumberSharingMode = phoneNumberSharingToRecord(s.PhoneNumberSharing)
	rec.NotDiscoverableByPhoneNumber = s.Discoverability == models.DiscoverabilityNobody
	rec.PreferContactAvatars = s.PreferContactAvatars
	rec.Payments = &records.Payments{Enabled: s.Payments.Enabled, Entropy: s.Payments.Entropy}
	if s.UniversalExpireTimer.Enabled {
		rec.UniversalExpireTimer = s.UniversalExpireTimer.DurationSeconds
	}
	rec.PreferredReactionEmoji = s.PreferredReactionEmoji
	rec.SubscriberID = s.SubscriberID
	rec.SubscriberCurrencyCode = s.SubscriberCurrencyCode
	rec.DisplayBadgesOnProfile = s.DisplayBadgesOnProfile
	rec.SubscriptionManuallyCancelled = s.SubscriptionManuallyCancelled
	rec.KeepMutedChatsArchived = s.KeepMutedChatsArchived
	rec.HasSetMyStoriesPrivacy = s.HasSetMyStoryPrivacy
	rec.HasReadOnboardingStory = s.HasReadOnboardingStory
	rec.HasViewedOnboardingStory = s.HasViewedOnboardingStory
	rec.HasCompletedUsernameOnboarding = !s.ShouldShowUsernameEducation
	rec.StoriesDisabled = !s.StoriesEnabled

	pinned, err := d.PinnedConversations.PinnedConversations(ctx, tx)
	if err != nil {
		return nil, err
	}
	for _, p := range pinned {
		rec.PinnedConversations = append(rec.PinnedConversations, pinnedToRecord(p))
	}

	state, err := d.LocalUsername.UsernameState(ctx, tx)
	if err != nil {
		return nil, err
	}
	if state.Kind != models.UsernameStateUnset && state.Username != "" {
		rec.Username = stringPtr(state.Username)
		if state.Kind == models.UsernameStateAvailable && state.Link != nil {
			color, err := d.LocalUsername.UsernameLinkColor(ctx, tx)
			if err != nil {
				return nil, err
			}
			handle := state.Link.Handle
			rec.UsernameLink = &records.UsernameLink{
				Entropy:  state.Link.Entropy,
				ServerID: handle[:],
				Color:    records.UsernameLinkColor(color),
			}
		}
	}

	return rec, nil
}

func (u *AccountUpdater) MergeRecord(ctx context.Context, record *records.Account, tx dbx.DBTX) (MergeResult[AccountID], error) {
	m := accountMerge{u: u, record: record}
	steps := []func(context.Context, dbx.DBTX) (bool, error){
		m.profileKey,
		m.profileNames,
		m.username,
		m.noteToSelf,
		m.settings,
		m.pinnedConversations,
	}
	needsUpdate := false
	for _, step := range steps {
		nu, err := step(ctx, tx)
		if err != nil {
			return Invalid[AccountID](), err
		}
		needsUpdate = needsUpdate || nu
	}
	return Merged(needsUpdate, AccountID{}), nil
}

type accountMerge struct {
	u      *AccountUpdater
	record *records.Account
}

func (m *accountMerge) profileKey(ctx context.Context, tx dbx.DBTX) (bool, error) {
	d := m.u.d
	local, err := d.Profiles.LocalProfile(ctx, tx)
	if err != nil {
		return false, err
	}
	var localKey []byte
	if local != nil {
		localKey = local.ProfileKey
	}

	// A primary device owns its profile key once it has a profile.
	if (local == nil || !d.IsPrimaryDevice) && m.record.ProfileKey != nil && !bytes.Equal(localKey, m.record.ProfileKey) {
		return false, d.Profiles.SetLocalProfileKey(ctx, tx, m.record.ProfileKey)
	}
	return localKey != nil && m.record.ProfileKey == nil, nil
}

func (m *accountMerge) profileNames(ctx context.Context, tx dbx.DBTX) (bool, error) {
	d := m.u.d
	local, err := d.Profiles.LocalProfile(ctx, tx)
	if err != nil {
		return false, err
	}
	if local == nil {
		local = &models.Profile{}
	}

	given := normalizeProfileName(m.record.GivenName)
	family := normalizeProfileName(m.record.FamilyName)
	avatar := nonEmpty(m.record.AvatarURL)

	needsUpdate := !equalStringPtr(given, nonEmpty(m.record.GivenName)) ||
		!equalStringPtr(family, nonEmpty(m.record.FamilyName))

	if given != nil {
		if !equalStringPtr(given, nonEmpty(local.GivenName)) || !equalStringPtr(family, nonEmpty(local.FamilyName)) || !equalStringPtr(avatar, nonEmpty(local.AvatarURL)) {
			if err := d.Profiles.SetLocalProfileNames(ctx, tx, given, family, avatar); err != nil {
				return false, err
			}
		}
		return needsUpdate, nil
	}

	if nonEmpty(local.GivenName) != nil || (nonEmpty(local.FamilyName) != nil && family == nil) || (nonEmpty(local.AvatarURL) != nil && avatar == nil) {
		needsUpdate = true
	}
	return needsUpdate, nil
}

func (m *accountMerge) username(ctx context.Context, tx dbx.DBTX) (bool, error) {
	d := m.u.d
	current, err := d.LocalUsername.UsernameState(ctx, tx)
	if err != nil {
		return false, err
	}

	next := models.LocalUsernameState{Kind: models.UsernameStateUnset}
	if username := nonEmpty(m.record.Username); username != nil {
		next = models.LocalUsernameState{Kind: models.UsernameStateLinkCorrupted, Username: *username}
		if l := m.record.UsernameLink; l != nil {
			if link, ok := models.NewUsernameLink(l.ServerID, l.Entropy); ok {
				next.Kind = models.UsernameStateAvailable
				next.Link = link
				if err := m.linkColor(ctx, tx, l.Color); err != nil {
					return false, err
				}
			} else {
				d.Logger.Warn(ctx, "username link is malformed",
					"server_id_len", len(l.ServerID), "entropy_len", len(l.Entropy))
			}
		}
	}

	if !reflect.DeepEqual(current, next) {
		if err := d.LocalUsername.SetUsernameState(ctx, tx, next); err != nil {
			return false, err
		}
	}
	return false, nil
}

func (m *accountMerge) linkColor(ctx context.Context, tx dbx.DBTX, c records.UsernameLinkColor) error {
	d := m.u.d
	switch {
	case c == records.UsernameLinkColorUnknown:
		return nil
	case c > records.UsernameLinkColorPurple || c < 0:
		d.Logger.Warn(ctx, "unknown username link color", "value", int32(c))
		return nil
	}
	return d.LocalUsername.SetUsernameLinkColor(ctx, tx, models.UsernameLinkColor(c))
}

func (m *accountMerge) noteToSelf(ctx context.Context, tx dbx.DBTX) (bool, error) {
	d := m.u.d
	thread, err := d.Threads.GetOrCreateNoteToSelfThread(ctx, tx, d.Local)
	if err != nil {
		return false, err
	}
	data, err := d.Threads.AssociatedData(ctx, tx, thread.ID)
	if err != nil {
		return false, err
	}
	want := data
	want.IsArchived = m.record.NoteToSelfArchived
	want.IsMarkedUnread = m.record.NoteToSelfMarkedUnread
	if want == data {
		return false, nil
	}
	return false, d.Threads.SetAssociatedData(ctx, tx, thread.ID, want)
}

func (m *accountMerge) settings(ctx context.Context, tx dbx.DBTX) (bool, error) {
	d := m.u.d
	r := m.record
	current, err := d.AccountSettings.AccountSettings(ctx, tx)
	if err != nil {
		return false, err
	}
	s := current
	needsUpdate := false

	s.ReadReceipts = r.ReadReceipts
	if v := r.StoryViewReceiptsEnabled.Bool(); v != nil {
		s.StoryViewReceipts = v
	} else {
		needsUpdate = true
	}
	s.SealedSenderIndicators = r.SealedSenderIndicators
	s.TypingIndicators = r.TypingIndicators
	s.LinkPreviews = r.LinkPreviews
	s.ProxiedLinkPreviews = r.ProxiedLinkPreviews

	switch r.PhoneNumberSharingMode {
	case records.PhoneNumberSharingModeEverybody:
		s.PhoneNumberSharing = models.PhoneNumberSharingEverybody
	case records.PhoneNumberSharingModeNobody:
		s.PhoneNumberSharing = models.PhoneNumberSharingNobody
	default:
		d.Logger.Warn(ctx, "ignoring phone number sharing mode", "value", int32(r.PhoneNumberSharingMode))
	}

	if r.NotDiscoverableByPhoneNumber {
		s.Discoverability = models.DiscoverabilityNobody
	} else {
		s.Discoverability = models.DiscoverabilityEverybody
	}

	s.PreferContactAvatars = r.PreferContactAvatars

	var remoteEnabled bool
	var entropy []byte
	if r.Payments != nil {
		remoteEnabled = r.Payments.Enabled
		entropy = r.Payments.Entropy
	}
	if entropy == nil {
		entropy = current.Payments.Entropy
	}
	s.Payments = models.NewPaymentsState(remoteEnabled, entropy)

	s.UniversalExpireTimer = models.DisappearingMessagesTokenFromSeconds(r.UniversalExpireTimer)

	if len(r.PreferredReactionEmoji) > 0 {
		s.PreferredReactionEmoji = slices.Clone(r.PreferredReactionEmoji)
	}
	if r.SubscriberID != nil && nonEmpty(r.SubscriberCurrencyCode) != nil {
		s.SubscriberID = bytes.Clone(r.SubscriberID)
		code := *r.SubscriberCurrencyCode
		s.SubscriberCurrencyCode = &code
	}

	s.DisplayBadgesOnProfile = r.DisplayBadgesOnProfile
	s.SubscriptionManuallyCancelled = r.SubscriptionManuallyCancelled
	s.KeepMutedChatsArchived = r.KeepMutedChatsArchived

	// Latches: once set on any device they stay set.
	s.HasSetMyStoryPrivacy = s.HasSetMyStoryPrivacy || r.HasSetMyStoriesPrivacy
	s.HasReadOnboardingStory = s.HasReadOnboardingStory || r.HasReadOnboardingStory
	s.HasViewedOnboardingStory = s.HasViewedOnboardingStory || r.HasViewedOnboardingStory
	if r.HasCompletedUsernameOnboarding {
		s.ShouldShowUsernameEducation = false
	}

	s.StoriesEnabled = !r.StoriesDisabled

	if !reflect.DeepEqual(current, s) {
		if err := d.AccountSettings.SaveAccountSettings(ctx, tx, s); err != nil {
			return false, fmt.Errorf("save account settings: %w", err)
		}
	}
	return needsUpdate, nil
}

func (m *accountMerge) pinnedConversations(ctx context.Context, tx dbx.DBTX) (bool, error) {
	d := m.u.d
	if n := len(m.record.PinnedConversations); n > models.MaxPinnedConversations {
		d.Logger.Warn(ctx, "too many pinned conversations", "count", n, "max", models.MaxPinnedConversations)
	}

	needsUpdate := false
	var pinned []models.PinnedConversation
	for _, p := range m.record.PinnedConversations {
		switch {
		case p.Contact != nil:
			addr := pinnedContactAddress(p.Contact)
			if !addr.IsValid() {
				d.Logger.Warn(ctx, "dropping pinned contact without a valid address")
				continue
			}
			pinned = append(pinned, models.PinnedConversation{Contact: &addr})
		case p.GroupMasterKey != nil:
			groupID, err := d.Groups.GroupID(p.GroupMasterKey)
			if err != nil {
				d.Logger.Warn(ctx, "dropping pinned group with bad master key", "error", err)
				needsUpdate = true
				continue
			}
			pinned = append(pinned, models.PinnedConversation{
				GroupID:   groupID,
				MasterKey: bytes.Clone(p.GroupMasterKey),
			})
		case p.LegacyGroupID != nil:
			pinned = append(pinned, models.PinnedConversation{GroupID: bytes.Clone(p.LegacyGroupID)})
		default:
			d.Logger.Warn(ctx, "dropping empty pinned conversation")
		}
	}

	current, err := d.PinnedConversations.PinnedConversations(ctx, tx)
	if err != nil {
		return false, err
	}
	if !slices.EqualFunc(current, pinned, equalPinned) {
		if err := d.PinnedConversations.SetPinnedConversations(ctx, tx, pinned); err != nil {
			return false, err
		}
	}
	return needsUpdate, nil
}

func pinnedContactAddress(c *records.PinnedContact) models.Address {
	var addr models.Address
	if c.ServiceID != nil {
		if sid, err := models.ParseServiceID(*c.ServiceID); err == nil {
			addr.ServiceID = &sid
		}
	}
	if c.E164 != nil {
		addr.PhoneNumber, _ = models.ParseE164(*c.E164)
	}
	return addr
}

func pinnedToRecord(p models.PinnedConversation) records.PinnedConversation {
	switch {
	case p.Contact != nil:
		c := &records.PinnedContact{E164: p.Contact.PhoneNumber}
		if p.Contact.ServiceID != nil {
			c.ServiceID = stringPtr(p.Contact.ServiceID.String())
		}
		return records.PinnedConversation{Contact: c}
	case p.MasterKey != nil:
		return records.PinnedConversation{GroupMasterKey: p.MasterKey}
	default:
		return records.PinnedConversation{LegacyGroupID: p.GroupID}
	}
}

func equalPinned(a, b models.PinnedConversation) bool {
	if !bytes.Equal(a.GroupID, b.GroupID) || !bytes.Equal(a.MasterKey, b.MasterKey) {
		return false
	}
	if a.Contact == nil || b.Contact == nil {
		return a.Contact == b.Contact
	}
	if !equalStringPtr(a.Contact.PhoneNumber, b.Contact.PhoneNumber) {
		return false
	}
	if a.Contact.ServiceID == nil || b.Contact.ServiceID == nil {
		return a.Contact.ServiceID == b.Contact.ServiceID
	}
	return *a.Contact.ServiceID == *b.Contact.ServiceID
}

func phoneNumberSharingToRecord(m models.PhoneNumberSharingMode) records.PhoneNumberSharingMode {
	switch m {
	case models.PhoneNumberSharingEverybody:
		return records.PhoneNumberSharingModeEverybody
	case models.PhoneNumberSharingNobody:
		return records.PhoneNumberSharingModeNobody
	default:
		return records.PhoneNumberSharingModeUnknown
	}
}
