package updater

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/storagesync/internal/client/models"
	"github.com/dmitrijs2005/storagesync/internal/dbx"
	"github.com/dmitrijs2005/storagesync/internal/logging"
)

var (
	errFake = errors.New("fake failure")

	localACI   = uuid.MustParse("00000000-0000-4000-8000-00000000000a")
	localPNI   = uuid.MustParse("00000000-0000-4000-8000-00000000000b")
	localPhone = "+15550000001"

	testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
)

// fakeStore implements every collaborator interface in memory and records
// the names of mutating calls in writes.
type fakeStore struct {
	recipients map[string]*models.Recipient
	nextID     int
	splits     int

	blockedRecipients     map[string]bool
	blockedGroups         map[string]bool
	hidden                map[string]bool
	profiles              map[string]*models.Profile
	whitelistedRecipients map[string]bool
	whitelistedGroups     map[string]bool
	fetched               []models.ServiceID

	identities map[string]*models.IdentityRecord

	contactThreads map[string]*models.Thread
	groupThreads   map[string]*models.GroupThread
	noteToSelf     *models.Thread
	assoc          map[string]models.ThreadAssociatedData

	contactStories map[uuid.UUID]bool
	groupStories   map[string]bool

	storyLists map[uuid.UUID]*models.PrivateStoryList
	tombstones map[uuid.UUID]uint64

	systemContacts map[string]*models.SystemContact
	usernames      map[uuid.UUID]string
	usernameState  models.LocalUsernameState
	linkColor      models.UsernameLinkColor

	groupMappings map[string]bool
	pending       map[string]*models.PendingGroupRestore

	settings models.AccountSettings
	pinned   []models.PinnedConversation

	// failOn makes the named method return errFake.
	failOn string
	writes []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		recipients:            map[string]*models.Recipient{},
		blockedRecipients:     map[string]bool{},
		blockedGroups:         map[string]bool{},
		hidden:                map[string]bool{},
		profiles:              map[string]*models.Profile{},
		whitelistedRecipients: map[string]bool{},
		whitelistedGroups:     map[string]bool{},
		identities:            map[string]*models.IdentityRecord{},
		contactThreads:        map[string]*models.Thread{},
		groupThreads:          map[string]*models.GroupThread{},
		assoc:                 map[string]models.ThreadAssociatedData{},
		contactStories:        map[uuid.UUID]bool{},
		groupStories:          map[string]bool{},
		storyLists:            map[uuid.UUID]*models.PrivateStoryList{},
		tombstones:            map[uuid.UUID]uint64{},
		systemContacts:        map[string]*models.SystemContact{},
		usernames:             map[uuid.UUID]string{},
		groupMappings:         map[string]bool{},
		pending:               map[string]*models.PendingGroupRestore{},
		settings:              models.DefaultAccountSettings(),
	}
}

func (f *fakeStore) deps(primary bool) Deps {
	pni := localPNI
	return Deps{
		Local:               models.LocalIdentifiers{ACI: localACI, PNI: &pni, PhoneNumber: localPhone},
		IsPrimaryDevice:     primary,
		Now:                 func() time.Time { return testNow },
		Logger:              logging.NewNop(),
		Recipients:          f,
		Merger:              f,
		Blocking:            f,
		Hidden:              f,
		Profiles:            f,
		ProfileFetcher:      f,
		Identities:          f,
		Threads:             f,
		StoryContexts:       f,
		StoryLists:          f,
		SystemContacts:      f,
		Usernames:           f,
		LocalUsername:       f,
		Groups:              f,
		AccountSettings:     f,
		PinnedConversations: f,
	}
}

func (f *fakeStore) write(name string) error {
	f.writes = append(f.writes, name)
	if f.failOn == name {
		return errFake
	}
	return nil
}

func (f *fakeStore) read(name string) error {
	if f.failOn == name {
		return errFake
	}
	return nil
}

func (f *fakeStore) wrote(name string) bool {
	return slices.Contains(f.writes, name)
}

func (f *fakeStore) addRecipient(r models.Recipient) *models.Recipient {
	if r.ID == "" {
		f.nextID++
		r.ID = fmt.Sprintf("r%d", f.nextID)
	}
	f.recipients[r.ID] = &r
	return &r
}

// RecipientStore

func (f *fakeStore) RecipientByID(_ context.Context, _ dbx.DBTX, id string) (*models.Recipient, error) {
	if err := f.read("RecipientByID"); err != nil {
		return nil, err
	}
	return copyRecipient(f.recipients[id]), nil
}

// copyRecipient hands out a detached value, the way a database read does.
func copyRecipient(r *models.Recipient) *models.Recipient {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

func (f *fakeStore) MarkRegistered(_ context.Context, _ dbx.DBTX, id string) error {
	if err := f.write("MarkRegistered"); err != nil {
		return err
	}
	r := f.recipients[id]
	r.IsRegistered = true
	r.UnregisteredAt = nil
	return nil
}

func (f *fakeStore) MarkUnregistered(_ context.Context, _ dbx.DBTX, id string, at uint64) error {
	if err := f.write("MarkUnregistered"); err != nil {
		return err
	}
	r := f.recipients[id]
	r.IsRegistered = false
	r.UnregisteredAt = &at
	return nil
}

// RecipientMerger

func (f *fakeStore) MergeFromStorageService(_ context.Context, _ dbx.DBTX, _ models.LocalIdentifiers, aci, pni *uuid.UUID, phone *string) (*models.Recipient, error) {
	if err := f.write("MergeFromStorageService"); err != nil {
		return nil, err
	}
	var found *models.Recipient
	for _, r := range f.recipients {
		if (aci != nil && equalUUIDPtr(r.ACI, aci)) ||
			(pni != nil && equalUUIDPtr(r.PNI, pni)) ||
			(phone != nil && equalStringPtr(r.PhoneNumber, phone)) {
			found = r
			break
		}
	}
	if found == nil {
		found = f.addRecipient(models.Recipient{IsRegistered: true})
		f.recipients[found.ID] = found
	}
	if aci != nil {
		found.ACI = aci
	}
	if pni != nil {
		found.PNI = pni
	}
	if phone != nil {
		found.PhoneNumber = phone
	}
	return copyRecipient(found), nil
}

func (f *fakeStore) SplitUnregisteredRecipient(_ context.Context, _ dbx.DBTX, _ models.LocalIdentifiers, r *models.Recipient) (*models.Recipient, error) {
	if err := f.write("SplitUnregisteredRecipient"); err != nil {
		return nil, err
	}
	f.splits++
	if r.PhoneNumber == nil && r.PNI == nil {
		return r, nil
	}
	split := f.addRecipient(models.Recipient{ACI: r.ACI, UnregisteredAt: r.UnregisteredAt})
	f.recipients[r.ID].ACI = nil
	r.ACI = nil
	return copyRecipient(split), nil
}

// BlockingStore

func (f *fakeStore) IsRecipientBlocked(_ context.Context, _ dbx.DBTX, id string) (bool, error) {
	return f.blockedRecipients[id], f.read("IsRecipientBlocked")
}

func (f *fakeStore) SetRecipientBlocked(_ context.Context, _ dbx.DBTX, id string, v bool) error {
	f.blockedRecipients[id] = v
	return f.write("SetRecipientBlocked")
}

func (f *fakeStore) IsGroupBlocked(_ context.Context, _ dbx.DBTX, groupID []byte) (bool, error) {
	return f.blockedGroups[string(groupID)], f.read("IsGroupBlocked")
}

func (f *fakeStore) SetGroupBlocked(_ context.Context, _ dbx.DBTX, groupID []byte, v bool) error {
	f.blockedGroups[string(groupID)] = v
	return f.write("SetGroupBlocked")
}

// HiddenRecipientStore

func (f *fakeStore) IsHidden(_ context.Context, _ dbx.DBTX, id string) (bool, error) {
	return f.hidden[id], f.read("IsHidden")
}

func (f *fakeStore) SetHidden(_ context.Context, _ dbx.DBTX, id string, v bool) error {
	f.hidden[id] = v
	return f.write("SetHidden")
}

// ProfileStore

func (f *fakeStore) profile(id string) *models.Profile {
	p, ok := f.profiles[id]
	if !ok {
		p = &models.Profile{}
		f.profiles[id] = p
	}
	return p
}

func (f *fakeStore) UserProfile(_ context.Context, _ dbx.DBTX, id string) (*models.Profile, error) {
	if err := f.read("UserProfile"); err != nil {
		return nil, err
	}
	if p, ok := f.profiles[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStore) SetProfileKey(_ context.Context, _ dbx.DBTX, id string, key []byte) error {
	f.profile(id).ProfileKey = key
	return f.write("SetProfileKey")
}

func (f *fakeStore) SetProfileNames(_ context.Context, _ dbx.DBTX, id string, given, family *string) error {
	p := f.profile(id)
	p.GivenName, p.FamilyName = given, family
	return f.write("SetProfileNames")
}

func (f *fakeStore) LocalProfile(ctx context.Context, tx dbx.DBTX) (*models.Profile, error) {
	return f.UserProfile(ctx, tx, models.LocalProfileRecipientID)
}

func (f *fakeStore) SetLocalProfileKey(_ context.Context, _ dbx.DBTX, key []byte) error {
	f.profile(models.LocalProfileRecipientID).ProfileKey = key
	return f.write("SetLocalProfileKey")
}

func (f *fakeStore) SetLocalProfileNames(_ context.Context, _ dbx.DBTX, given, family, avatar *string) error {
	p := f.profile(models.LocalProfileRecipientID)
	p.GivenName, p.FamilyName, p.AvatarURL = given, family, avatar
	return f.write("SetLocalProfileNames")
}

func (f *fakeStore) IsRecipientWhitelisted(_ context.Context, _ dbx.DBTX, id string) (bool, error) {
	return f.whitelistedRecipients[id], f.read("IsRecipientWhitelisted")
}

func (f *fakeStore) SetRecipientWhitelisted(_ context.Context, _ dbx.DBTX, id string, v bool) error {
	f.whitelistedRecipients[id] = v
	return f.write("SetRecipientWhitelisted")
}

func (f *fakeStore) IsGroupWhitelisted(_ context.Context, _ dbx.DBTX, groupID []byte) (bool, error) {
	return f.whitelistedGroups[string(groupID)], f.read("IsGroupWhitelisted")
}

func (f *fakeStore) SetGroupWhitelisted(_ context.Context, _ dbx.DBTX, groupID []byte, v bool) error {
	f.whitelistedGroups[string(groupID)] = v
	return f.write("SetGroupWhitelisted")
}

// ProfileFetcher

func (f *fakeStore) FetchProfile(sid models.ServiceID) {
	f.fetched = append(f.fetched, sid)
}

// IdentityStore

func (f *fakeStore) Identity(_ context.Context, _ dbx.DBTX, id string) (*models.IdentityRecord, error) {
	if err := f.read("Identity"); err != nil {
		return nil, err
	}
	if r, ok := f.identities[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStore) SaveIdentityKey(_ context.Context, _ dbx.DBTX, id string, key []byte) error {
	// A new key resets verification.
	f.identities[id] = &models.IdentityRecord{Key: key}
	return f.write("SaveIdentityKey")
}

func (f *fakeStore) SetVerificationState(_ context.Context, _ dbx.DBTX, id string, s models.VerificationState) error {
	if r, ok := f.identities[id]; ok {
		r.State = s
	}
	return f.write("SetVerificationState")
}

// ThreadStore

func (f *fakeStore) ContactThread(_ context.Context, _ dbx.DBTX, id string) (*models.Thread, error) {
	return f.contactThreads[id], f.read("ContactThread")
}

func (f *fakeStore) GetOrCreateContactThread(_ context.Context, _ dbx.DBTX, id string) (*models.Thread, error) {
	if t, ok := f.contactThreads[id]; ok {
		return t, nil
	}
	t := &models.Thread{ID: "t-" + id, RecipientID: id}
	f.contactThreads[id] = t
	return t, f.write("GetOrCreateContactThread")
}

func (f *fakeStore) NoteToSelfThread(_ context.Context, _ dbx.DBTX, _ models.LocalIdentifiers) (*models.Thread, error) {
	return f.noteToSelf, f.read("NoteToSelfThread")
}

func (f *fakeStore) GetOrCreateNoteToSelfThread(_ context.Context, _ dbx.DBTX, _ models.LocalIdentifiers) (*models.Thread, error) {
	if f.noteToSelf == nil {
		f.noteToSelf = &models.Thread{ID: "t-self", RecipientID: "self"}
		if err := f.write("GetOrCreateNoteToSelfThread"); err != nil {
			return nil, err
		}
	}
	return f.noteToSelf, nil
}

func (f *fakeStore) GroupThread(_ context.Context, _ dbx.DBTX, groupID []byte) (*models.GroupThread, error) {
	if t, ok := f.groupThreads[string(groupID)]; ok {
		cp := *t
		return &cp, f.read("GroupThread")
	}
	return nil, f.read("GroupThread")
}

func (f *fakeStore) groupThreadByID(threadID string) *models.GroupThread {
	for _, t := range f.groupThreads {
		if t.ID == threadID {
			return t
		}
	}
	return nil
}

func (f *fakeStore) SetStoryViewMode(_ context.Context, _ dbx.DBTX, threadID string, m models.StoryViewMode) error {
	f.groupThreadByID(threadID).StoryViewMode = m
	return f.write("SetStoryViewMode")
}

func (f *fakeStore) SetMentionMode(_ context.Context, _ dbx.DBTX, threadID string, m models.MentionMode) error {
	f.groupThreadByID(threadID).MentionMode = m
	return f.write("SetMentionMode")
}

func (f *fakeStore) AssociatedData(_ context.Context, _ dbx.DBTX, threadID string) (models.ThreadAssociatedData, error) {
	return f.assoc[threadID], f.read("AssociatedData")
}

func (f *fakeStore) SetAssociatedData(_ context.Context, _ dbx.DBTX, threadID string, d models.ThreadAssociatedData) error {
	f.assoc[threadID] = d
	return f.write("SetAssociatedData")
}

// StoryContextStore

func (f *fakeStore) ContactStoryHidden(_ context.Context, _ dbx.DBTX, aci uuid.UUID) (*bool, error) {
	if v, ok := f.contactStories[aci]; ok {
		return &v, nil
	}
	return nil, f.read("ContactStoryHidden")
}

func (f *fakeStore) SetContactStoryHidden(_ context.Context, _ dbx.DBTX, aci uuid.UUID, v bool) error {
	f.contactStories[aci] = v
	return f.write("SetContactStoryHidden")
}

func (f *fakeStore) GroupStoryHidden(_ context.Context, _ dbx.DBTX, groupID []byte) (*bool, error) {
	if v, ok := f.groupStories[string(groupID)]; ok {
		return &v, nil
	}
	return nil, f.read("GroupStoryHidden")
}

func (f *fakeStore) SetGroupStoryHidden(_ context.Context, _ dbx.DBTX, groupID []byte, v bool) error {
	f.groupStories[string(groupID)] = v
	return f.write("SetGroupStoryHidden")
}

// StoryListStore

func (f *fakeStore) StoryList(_ context.Context, _ dbx.DBTX, id uuid.UUID) (*models.PrivateStoryList, error) {
	if err := f.read("StoryList"); err != nil {
		return nil, err
	}
	if l, ok := f.storyLists[id]; ok {
		cp := *l
		cp.Members = slices.Clone(l.Members)
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStore) InsertStoryList(_ context.Context, _ dbx.DBTX, l *models.PrivateStoryList) error {
	cp := *l
	f.storyLists[l.ID] = &cp
	return f.write("InsertStoryList")
}

func (f *fakeStore) UpdateStoryList(_ context.Context, _ dbx.DBTX, l *models.PrivateStoryList) error {
	cp := *l
	f.storyLists[l.ID] = &cp
	return f.write("UpdateStoryList")
}

func (f *fakeStore) DeleteStoryList(_ context.Context, _ dbx.DBTX, id uuid.UUID) error {
	delete(f.storyLists, id)
	return f.write("DeleteStoryList")
}

func (f *fakeStore) DeletedAt(_ context.Context, _ dbx.DBTX, id uuid.UUID) (uint64, error) {
	return f.tombstones[id], f.read("DeletedAt")
}

func (f *fakeStore) RecordDeletion(_ context.Context, _ dbx.DBTX, id uuid.UUID, at uint64) error {
	f.tombstones[id] = at
	return f.write("RecordDeletion")
}

// SystemContactStore

func (f *fakeStore) SystemContact(_ context.Context, _ dbx.DBTX, phone string) (*models.SystemContact, error) {
	if c, ok := f.systemContacts[phone]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, f.read("SystemContact")
}

func (f *fakeStore) InsertSystemContact(_ context.Context, _ dbx.DBTX, c *models.SystemContact) error {
	cp := *c
	f.systemContacts[c.PhoneNumber] = &cp
	return f.write("InsertSystemContact")
}

func (f *fakeStore) RemoveSystemContact(_ context.Context, _ dbx.DBTX, phone string) error {
	delete(f.systemContacts, phone)
	return f.write("RemoveSystemContact")
}

// UsernameLookupStore

func (f *fakeStore) Username(_ context.Context, _ dbx.DBTX, aci uuid.UUID) (*string, error) {
	if u, ok := f.usernames[aci]; ok {
		return &u, nil
	}
	return nil, f.read("Username")
}

func (f *fakeStore) SetUsername(_ context.Context, _ dbx.DBTX, aci uuid.UUID, u *string) error {
	if u == nil {
		delete(f.usernames, aci)
	} else {
		f.usernames[aci] = *u
	}
	return f.write("SetUsername")
}

// LocalUsernameStore

func (f *fakeStore) UsernameState(context.Context, dbx.DBTX) (models.LocalUsernameState, error) {
	return f.usernameState, f.read("UsernameState")
}

func (f *fakeStore) SetUsernameState(_ context.Context, _ dbx.DBTX, s models.LocalUsernameState) error {
	f.usernameState = s
	return f.write("SetUsernameState")
}

func (f *fakeStore) UsernameLinkColor(context.Context, dbx.DBTX) (models.UsernameLinkColor, error) {
	return f.linkColor, f.read("UsernameLinkColor")
}

func (f *fakeStore) SetUsernameLinkColor(_ context.Context, _ dbx.DBTX, c models.UsernameLinkColor) error {
	f.linkColor = c
	return f.write("SetUsernameLinkColor")
}

// GroupsV2

func (f *fakeStore) IsValidMasterKey(key []byte) bool {
	return len(key) == 32
}

// GroupID fails for keys starting with 0xff so tests can exercise the
// derivation error path.
func (f *fakeStore) GroupID(key []byte) ([]byte, error) {
	if len(key) != 32 || key[0] == 0xff {
		return nil, errFake
	}
	return append([]byte("gid:"), key[:4]...), nil
}

func (f *fakeStore) EnsureGroupIDMapping(_ context.Context, _ dbx.DBTX, groupID []byte) error {
	f.groupMappings[string(groupID)] = true
	return f.write("EnsureGroupIDMapping")
}

func (f *fakeStore) RestoreGroup(_ context.Context, _ dbx.DBTX, r models.PendingGroupRestore) error {
	cp := r
	f.pending[string(r.MasterKey)] = &cp
	return f.write("RestoreGroup")
}

func (f *fakeStore) PendingRestore(_ context.Context, _ dbx.DBTX, key []byte) (*models.PendingGroupRestore, error) {
	return f.pending[string(key)], f.read("PendingRestore")
}

// AccountSettingsStore

func (f *fakeStore) AccountSettings(context.Context, dbx.DBTX) (models.AccountSettings, error) {
	return f.settings, f.read("AccountSettings")
}

func (f *fakeStore) SaveAccountSettings(_ context.Context, _ dbx.DBTX, s models.AccountSettings) error {
	f.settings = s
	return f.write("SaveAccountSettings")
}

// PinnedConversationStore

func (f *fakeStore) PinnedConversations(context.Context, dbx.DBTX) ([]models.PinnedConversation, error) {
	return slices.Clone(f.pinned), f.read("PinnedConversations")
}

func (f *fakeStore) SetPinnedConversations(_ context.Context, _ dbx.DBTX, p []models.PinnedConversation) error {
	f.pinned = slices.Clone(p)
	return f.write("SetPinnedConversations")
}

func masterKey(b byte) []byte {
	return bytes.Repeat([]byte{b}, 32)
}
