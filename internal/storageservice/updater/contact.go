package updater

import (
	"bytes"
	"context"
	"fmt"

	"github.com/dmitrijs2005/storagesync/internal/client/models"
	"github.com/dmitrijs2005/storagesync/internal/dbx"
	"github.com/dmitrijs2005/storagesync/internal/storageservice/records"
)

// ContactUpdater syncs recipients. Its ID is the recipient's unique id.
type ContactUpdater struct {
	d Deps
}

func NewContactUpdater(d Deps) *ContactUpdater {
	return &ContactUpdater{d: d}
}

func (u *ContactUpdater) UnknownFields(record *records.Contact) []byte {
	return record.UnknownFields
}

func (u *ContactUpdater) BuildStorageItem(record *records.Contact) records.StorageItem {
	return records.StorageItem{
		Identifier: records.NewStorageIdentifier(records.KindContact),
		Contact:    record,
	}
}

func (u *ContactUpdater) BuildRecord(ctx context.Context, recipientID string, unknownFields []byte, tx dbx.DBTX) (*records.Contact, error) {
	recipient, err := u.d.Recipients.RecipientByID(ctx, tx, recipientID)
	if err != nil {
		return nil, fmt.Errorf("load recipient %s: %w", recipientID, err)
	}
	if recipient == nil {
		return nil, nil
	}

	contact, ok := ContactFromRecipient(recipient)
	if !ok {
		return nil, nil
	}
	if contact.matchesLocal(u.d.Local) {
		return nil, nil
	}
	if !contact.ShouldBeInStorageService(u.d.now()) {
		return nil, nil
	}

	rec := &records.Contact{UnknownFields: unknownFields}
	if contact.ACI != nil {
		rec.ACI = stringPtr(contact.ACI.String())
	}
	if contact.PhoneNumber != nil {
		rec.E164 = stringPtr(*contact.PhoneNumber)
	}
	if contact.PNI != nil {
		rec.PNI = stringPtr(contact.PNI.String())
	}
	if contact.UnregisteredAt != nil {
		rec.UnregisteredAtTimestamp = *contact.UnregisteredAt
	}

	if rec.Whitelisted, err = u.d.Profiles.IsRecipientWhitelisted(ctx, tx, recipient.ID); err != nil {
		return nil, err
	}
	if rec.Blocked, err = u.d.Blocking.IsRecipientBlocked(ctx, tx, recipient.ID); err != nil {
		return nil, err
	}
	if rec.Hidden, err = u.d.Hidden.IsHidden(ctx, tx, recipient.ID); err != nil {
		return nil, err
	}

	identity, err := u.d.Identities.Identity(ctx, tx, recipient.ID)
	if err != nil {
		return nil, err
	}
	state := records.IdentityStateDefault
	if identity != nil {
		rec.IdentityKey = models.SerializeIdentityKey(identity.Key)
		state = identityStateFromLocal(identity.State)
	}
	rec.IdentityState = &state

	profile, err := u.d.Profiles.UserProfile(ctx, tx, recipient.ID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		rec.ProfileKey = profile.ProfileKey
		rec.GivenName = profile.GivenName
		rec.FamilyName = profile.FamilyName
	}

	if contact.PhoneNumber != nil {
		sc, err := u.d.SystemContacts.SystemContact(ctx, tx, *contact.PhoneNumber)
		if err != nil {
			return nil, err
		}
		// A primary device shares its own address book; a linked device
		// only passes along what the primary uploaded.
		if sc != nil && sc.FromLocalAddressBook == u.d.IsPrimaryDevice {
			rec.SystemGivenName = &sc.GivenName
			rec.SystemFamilyName = &sc.FamilyName
			rec.SystemNickname = &sc.Nickname
		}
	}

	thread, err := u.d.Threads.ContactThread(ctx, tx, recipient.ID)
	if err != nil {
		return nil, err
	}
	if thread != nil {
		data, err := u.d.Threads.AssociatedData(ctx, tx, thread.ID)
		if err != nil {
			return nil, err
		}
		rec.Archived = data.IsArchived
		rec.MarkedUnread = data.IsMarkedUnread
		rec.MutedUntilTimestamp = data.MutedUntil
	}

	if contact.ACI != nil {
		hidden, err := u.d.StoryContexts.ContactStoryHidden(ctx, tx, *contact.ACI)
		if err != nil {
			return nil, err
		}
		if hidden != nil {
			rec.HideStory = *hidden
		}

		if usernameIsBestIdentifier(rec.E164, rec.GivenName, rec.FamilyName, rec.SystemGivenName, rec.SystemFamilyName, rec.SystemNickname) {
			if rec.Username, err = u.d.Usernames.Username(ctx, tx, *contact.ACI); err != nil {
				return nil, err
			}
		}
	}

	return rec, nil
}

func (u *ContactUpdater) MergeRecord(ctx context.Context, record *records.Contact, tx dbx.DBTX) (MergeResult[string], error) {
	contact, ok := ContactFromRecord(record)
	if !ok {
		u.d.Logger.Warn(ctx, "contact record without valid identifiers",
			"has_aci", record.ACI != nil, "has_pni", record.PNI != nil, "has_e164", record.E164 != nil)
		return Invalid[string](), nil
	}
	if contact.matchesLocal(u.d.Local) {
		u.d.Logger.Warn(ctx, "contact record for the local account")
		return Invalid[string](), nil
	}

	recipient, err := u.d.Merger.MergeFromStorageService(ctx, tx, u.d.Local, contact.ACI, contact.PNI, contact.PhoneNumber)
	if err != nil {
		return Invalid[string](), fmt.Errorf("merge recipient: %w", err)
	}

	if contact.UnregisteredAt != nil {
		at := *contact.UnregisteredAt
		if err := u.d.Recipients.MarkUnregistered(ctx, tx, recipient.ID, at); err != nil {
			return Invalid[string](), err
		}
		recipient.IsRegistered = false
		recipient.UnregisteredAt = &at
		// Only ACI-only records split a recipient; recipient carries local
		// state, so check what the record says.
		if contact.PhoneNumber == nil && contact.PNI == nil {
			if recipient, err = u.d.Merger.SplitUnregisteredRecipient(ctx, tx, u.d.Local, recipient); err != nil {
				return Invalid[string](), fmt.Errorf("split recipient: %w", err)
			}
		}
	} else {
		if err := u.d.Recipients.MarkRegistered(ctx, tx, recipient.ID); err != nil {
			return Invalid[string](), err
		}
		recipient.IsRegistered = true
		recipient.UnregisteredAt = nil
	}

	if recipient.ACI == nil && recipient.PNI == nil {
		u.d.Logger.Warn(ctx, "merged recipient has no service id", "recipient_id", recipient.ID)
		return Invalid[string](), nil
	}

	// A recipient that ends up different from the record means we know
	// something the store does not.
	needsUpdate := !equalUUIDPtr(recipient.ACI, contact.ACI) ||
		!equalStringPtr(recipient.PhoneNumber, contact.PhoneNumber) ||
		!equalUUIDPtr(recipient.PNI, contact.PNI)

	m := contactMerge{u: u, record: record, recipient: recipient, contact: contact}
	steps := []func(context.Context, dbx.DBTX) (bool, error){
		m.profile,
		m.systemContactNames,
		m.identity,
		m.flags,
		m.thread,
		m.story,
		m.username,
	}
	for _, step := range steps {
		nu, err := step(ctx, tx)
		if err != nil {
			return Invalid[string](), err
		}
		needsUpdate = needsUpdate || nu
	}

	return Merged(needsUpdate, recipient.ID), nil
}

// contactMerge holds the state of one MergeRecord call. Each step reports
// whether the record should be uploaded again.
type contactMerge struct {
	u         *ContactUpdater
	record    *records.Contact
	recipient *models.Recipient
	contact   *StorageServiceContact
}

func (m *contactMerge) profile(ctx context.Context, tx dbx.DBTX) (bool, error) {
	d := m.u.d
	local, err := d.Profiles.UserProfile(ctx, tx, m.recipient.ID)
	if err != nil {
		return false, err
	}
	if local == nil {
		local = &models.Profile{}
	}

	needsUpdate := false
	if m.record.ProfileKey != nil && !bytes.Equal(local.ProfileKey, m.record.ProfileKey) {
		if err := d.Profiles.SetProfileKey(ctx, tx, m.recipient.ID, m.record.ProfileKey); err != nil {
			return false, err
		}
	} else if local.ProfileKey != nil && m.record.ProfileKey == nil {
		needsUpdate = true
	}

	// The given name is never cleared, so a record without one carries no
	// usable name at all.
	given, family := nonEmpty(m.record.GivenName), nonEmpty(m.record.FamilyName)
	localGiven, localFamily := nonEmpty(local.GivenName), nonEmpty(local.FamilyName)
	switch {
	case given != nil && (!equalStringPtr(localGiven, given) || !equalStringPtr(localFamily, family)):
		if localGiven != nil {
			// The profile itself is authoritative once we have one.
			if sid := m.recipient.ServiceID(); sid != nil {
				d.ProfileFetcher.FetchProfile(*sid)
			}
		} else if err := d.Profiles.SetProfileNames(ctx, tx, m.recipient.ID, given, family); err != nil {
			return false, err
		}
	case (localGiven != nil && given == nil) || (localFamily != nil && family == nil):
		needsUpdate = true
	}

	return needsUpdate, nil
}

// systemContactNames checks the record against the address book on a
// primary device, and mirrors the record into the synced contact cache on
// a linked device.
func (m *contactMerge) systemContactNames(ctx context.Context, tx dbx.DBTX) (bool, error) {
	d := m.u.d
	if m.recipient.PhoneNumber == nil {
		return false, nil
	}
	phone := *m.recipient.PhoneNumber

	existing, err := d.SystemContacts.SystemContact(ctx, tx, phone)
	if err != nil {
		return false, err
	}

	recordGiven := stringValue(m.record.SystemGivenName)
	recordFamily := stringValue(m.record.SystemFamilyName)
	recordNickname := stringValue(m.record.SystemNickname)

	if d.IsPrimaryDevice {
		var local models.SystemContact
		if existing != nil && existing.FromLocalAddressBook {
			local = *existing
		}
		return local.GivenName != recordGiven ||
			local.FamilyName != recordFamily ||
			local.Nickname != recordNickname, nil
	}

	var next *models.SystemContact
	if fullName := models.SystemContactFullName(recordGiven, recordFamily, recordNickname); fullName != "" {
		next = &models.SystemContact{
			PhoneNumber: phone,
			GivenName:   recordGiven,
			FamilyName:  recordFamily,
			Nickname:    recordNickname,
			FullName:    fullName,
		}
	}

	if existing != nil && next != nil && *existing == *next {
		return false, nil
	}
	if existing != nil {
		if err := d.SystemContacts.RemoveSystemContact(ctx, tx, phone); err != nil {
			return false, err
		}
	}
	if next != nil {
		if err := d.SystemContacts.InsertSystemContact(ctx, tx, next); err != nil {
			return false, err
		}
	}
	return false, nil
}

func (m *contactMerge) identity(ctx context.Context, tx dbx.DBTX) (bool, error) {
	d := m.u.d
	local, err := d.Identities.Identity(ctx, tx, m.recipient.ID)
	if err != nil {
		return false, err
	}

	if m.record.IdentityKey != nil && m.record.IdentityState != nil {
		key, err := models.ParseIdentityKey(m.record.IdentityKey)
		if err != nil {
			d.Logger.Warn(ctx, "ignoring malformed identity key", "recipient_id", m.recipient.ID, "error", err)
		} else {
			if local == nil || !bytes.Equal(local.Key, key) {
				if err := d.Identities.SaveIdentityKey(ctx, tx, m.recipient.ID, key); err != nil {
					return false, err
				}
			}
			// Saving a new key may have reset the state.
			current, err := d.Identities.Identity(ctx, tx, m.recipient.ID)
			if err != nil {
				return false, err
			}
			state := verificationStateFromRecord(ctx, d, *m.record.IdentityState)
			if current == nil || current.State != state {
				if err := d.Identities.SetVerificationState(ctx, tx, m.recipient.ID, state); err != nil {
					return false, err
				}
			}
		}
	}

	return local != nil && m.record.IdentityKey == nil, nil
}

func (m *contactMerge) flags(ctx context.Context, tx dbx.DBTX) (bool, error) {
	d := m.u.d
	id := m.recipient.ID

	blocked, err := d.Blocking.IsRecipientBlocked(ctx, tx, id)
	if err != nil {
		return false, err
	}
	if blocked != m.record.Blocked {
		if err := d.Blocking.SetRecipientBlocked(ctx, tx, id, m.record.Blocked); err != nil {
			return false, err
		}
	}

	hidden, err := d.Hidden.IsHidden(ctx, tx, id)
	if err != nil {
		return false, err
	}
	if hidden != m.record.Hidden {
		if err := d.Hidden.SetHidden(ctx, tx, id, m.record.Hidden); err != nil {
			return false, err
		}
	}

	whitelisted, err := d.Profiles.IsRecipientWhitelisted(ctx, tx, id)
	if err != nil {
		return false, err
	}
	if whitelisted != m.record.Whitelisted {
		if err := d.Profiles.SetRecipientWhitelisted(ctx, tx, id, m.record.Whitelisted); err != nil {
			return false, err
		}
	}
	return false, nil
}

func (m *contactMerge) thread(ctx context.Context, tx dbx.DBTX) (bool, error) {
	d := m.u.d
	thread, err := d.Threads.GetOrCreateContactThread(ctx, tx, m.recipient.ID)
	if err != nil {
		return false, err
	}
	return false, mergeAssociatedData(ctx, d, tx, thread.ID, models.ThreadAssociatedData{
		IsArchived:     m.record.Archived,
		IsMarkedUnread: m.record.MarkedUnread,
		MutedUntil:     m.record.MutedUntilTimestamp,
	})
}

func (m *contactMerge) story(ctx context.Context, tx dbx.DBTX) (bool, error) {
	if m.recipient.ACI == nil {
		return false, nil
	}
	d := m.u.d
	hidden, err := d.StoryContexts.ContactStoryHidden(ctx, tx, *m.recipient.ACI)
	if err != nil {
		return false, err
	}
	if hidden == nil || *hidden != m.record.HideStory {
		return false, d.StoryContexts.SetContactStoryHidden(ctx, tx, *m.recipient.ACI, m.record.HideStory)
	}
	return false, nil
}

func (m *contactMerge) username(ctx context.Context, tx dbx.DBTX) (bool, error) {
	if m.recipient.ACI == nil {
		return false, nil
	}
	var username *string
	if usernameIsBestIdentifier(m.record.E164, m.record.GivenName, m.record.FamilyName,
		m.record.SystemGivenName, m.record.SystemFamilyName, m.record.SystemNickname) {
		username = nonEmpty(m.record.Username)
	}
	return false, m.u.d.Usernames.SetUsername(ctx, tx, *m.recipient.ACI, username)
}

// mergeAssociatedData writes want when it differs from what is stored.
func mergeAssociatedData(ctx context.Context, d Deps, tx dbx.DBTX, threadID string, want models.ThreadAssociatedData) error {
	current, err := d.Threads.AssociatedData(ctx, tx, threadID)
	if err != nil {
		return err
	}
	if current == want {
		return nil
	}
	return d.Threads.SetAssociatedData(ctx, tx, threadID, want)
}

func identityStateFromLocal(s models.VerificationState) records.IdentityState {
	switch s {
	case models.VerificationStateVerified:
		return records.IdentityStateVerified
	case models.VerificationStateNoLongerVerified:
		return records.IdentityStateUnverified
	default:
		return records.IdentityStateDefault
	}
}

func verificationStateFromRecord(ctx context.Context, d Deps, s records.IdentityState) models.VerificationState {
	switch s {
	case records.IdentityStateVerified:
		return models.VerificationStateVerified
	case records.IdentityStateUnverified:
		return models.VerificationStateNoLongerVerified
	case records.IdentityStateDefault:
		return models.VerificationStateDefault
	default:
		d.Logger.Warn(ctx, "unknown identity state", "value", int32(s))
		return models.VerificationStateDefault
	}
}
