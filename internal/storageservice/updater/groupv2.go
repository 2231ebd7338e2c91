package updater

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/storagesync/internal/client/models"
	"github.com/dmitrijs2005/storagesync/internal/dbx"
	"github.com/dmitrijs2005/storagesync/internal/storageservice/records"
)

// GroupV2Updater syncs v2 groups keyed by master key.
type GroupV2Updater struct {
	d Deps
}

func NewGroupV2Updater(d Deps) *GroupV2Updater {
	return &GroupV2Updater{d: d}
}

func (u *GroupV2Updater) UnknownFields(record *records.GroupV2) []byte {
	return record.UnknownFields
}

func (u *GroupV2Updater) BuildStorageItem(record *records.GroupV2) records.StorageItem {
	return records.StorageItem{
		Identifier: records.NewStorageIdentifier(records.KindGroupV2),
		GroupV2:    record,
	}
}

func (u *GroupV2Updater) BuildRecord(ctx context.Context, masterKey []byte, unknownFields []byte, tx dbx.DBTX) (*records.GroupV2, error) {
	if !u.d.Groups.IsValidMasterKey(masterKey) {
		return nil, nil
	}
	groupID, err := u.d.Groups.GroupID(masterKey)
	if err != nil {
		return nil, fmt.Errorf("derive group id: %w", err)
	}

	rec := &records.GroupV2{MasterKey: masterKey, UnknownFields: unknownFields}

	if rec.Whitelisted, err = u.d.Profiles.IsGroupWhitelisted(ctx, tx, groupID); err != nil {
		return nil, err
	}
	if rec.Blocked, err = u.d.Blocking.IsGroupBlocked(ctx, tx, groupID); err != nil {
		return nil, err
	}

	data, err := u.d.Threads.AssociatedData(ctx, tx, models.GroupThreadID(groupID))
	if err != nil {
		return nil, err
	}
	rec.Archived = data.IsArchived
	rec.MarkedUnread = data.IsMarkedUnread
	rec.MutedUntilTimestamp = data.MutedUntil

	thread, err := u.d.Threads.GroupThread(ctx, tx, groupID)
	if err != nil {
		return nil, err
	}
	if thread != nil {
		rec.DontNotifyForMentionsIfMuted = thread.MentionMode == models.MentionModeNever
		mode := storySendModeFromLocal(thread.StoryViewMode)
		rec.StorySendMode = &mode
	} else {
		pending, err := u.d.Groups.PendingRestore(ctx, tx, masterKey)
		if err != nil {
			return nil, err
		}
		if pending != nil && pending.StoryViewMode != nil {
			mode := storySendModeFromLocal(*pending.StoryViewMode)
			rec.StorySendMode = &mode
		}
	}

	hidden, err := u.d.StoryContexts.GroupStoryHidden(ctx, tx, groupID)
	if err != nil {
		return nil, err
	}
	if hidden != nil {
		rec.HideStory = *hidden
	}

	return rec, nil
}

func (u *GroupV2Updater) MergeRecord(ctx context.Context, record *records.GroupV2, tx dbx.DBTX) (MergeResult[[]byte], error) {
	d := u.d
	if !d.Groups.IsValidMasterKey(record.MasterKey) {
		d.Logger.Warn(ctx, "group v2 record with invalid master key", "length", len(record.MasterKey))
		return Invalid[[]byte](), nil
	}
	groupID, err := d.Groups.GroupID(record.MasterKey)
	if err != nil {
		d.Logger.Warn(ctx, "cannot derive group id", "error", err)
		return Invalid[[]byte](), nil
	}

	if err := d.Groups.EnsureGroupIDMapping(ctx, tx, groupID); err != nil {
		return Invalid[[]byte](), fmt.Errorf("group id mapping: %w", err)
	}

	needsUpdate := false

	thread, err := d.Threads.GroupThread(ctx, tx, groupID)
	if err != nil {
		return Invalid[[]byte](), err
	}
	if thread != nil {
		if record.StorySendMode == nil {
			needsUpdate = true
		} else if mode := storyViewModeFromRecord(ctx, d, *record.StorySendMode); mode != thread.StoryViewMode {
			if err := d.Threads.SetStoryViewMode(ctx, tx, thread.ID, mode); err != nil {
				return Invalid[[]byte](), err
			}
		}

		if mode, changed := mergeMentionMode(thread.MentionMode, record.DontNotifyForMentionsIfMuted); changed {
			if err := d.Threads.SetMentionMode(ctx, tx, thread.ID, mode); err != nil {
				return Invalid[[]byte](), err
			}
		}
	} else {
		restore := models.PendingGroupRestore{MasterKey: record.MasterKey}
		if record.StorySendMode != nil {
			mode := storyViewModeFromRecord(ctx, d, *record.StorySendMode)
			restore.StoryViewMode = &mode
		}
		if err := d.Groups.RestoreGroup(ctx, tx, restore); err != nil {
			return Invalid[[]byte](), fmt.Errorf("restore group: %w", err)
		}
	}

	blocked, err := d.Blocking.IsGroupBlocked(ctx, tx, groupID)
	if err != nil {
		return Invalid[[]byte](), err
	}
	if blocked != record.Blocked {
		if err := d.Blocking.SetGroupBlocked(ctx, tx, groupID, record.Blocked); err != nil {
			return Invalid[[]byte](), err
		}
	}

	whitelisted, err := d.Profiles.IsGroupWhitelisted(ctx, tx, groupID)
	if err != nil {
		return Invalid[[]byte](), err
	}
	if whitelisted != record.Whitelisted {
		if err := d.Profiles.SetGroupWhitelisted(ctx, tx, groupID, record.Whitelisted); err != nil {
			return Invalid[[]byte](), err
		}
	}

	if err := mergeAssociatedData(ctx, d, tx, models.GroupThreadID(groupID), models.ThreadAssociatedData{
		IsArchived:     record.Archived,
		IsMarkedUnread: record.MarkedUnread,
		MutedUntil:     record.MutedUntilTimestamp,
	}); err != nil {
		return Invalid[[]byte](), err
	}

	hidden, err := d.StoryContexts.GroupStoryHidden(ctx, tx, groupID)
	if err != nil {
		return Invalid[[]byte](), err
	}
	if hidden == nil || *hidden != record.HideStory {
		if err := d.StoryContexts.SetGroupStoryHidden(ctx, tx, groupID, record.HideStory); err != nil {
			return Invalid[[]byte](), err
		}
	}

	return Merged(needsUpdate, record.MasterKey), nil
}

// mergeMentionMode applies the record's "don't notify for mentions" flag.
// The record cannot express "default", so default only moves when the
// flag points the other way.
func mergeMentionMode(local models.MentionMode, dontNotify bool) (models.MentionMode, bool) {
	switch {
	case !dontNotify && (local == models.MentionModeDefault || local == models.MentionModeNever):
		return models.MentionModeAlways, local != models.MentionModeAlways
	case dontNotify && (local == models.MentionModeDefault || local == models.MentionModeAlways):
		return models.MentionModeNever, local != models.MentionModeNever
	default:
		return local, false
	}
}

func storySendModeFromLocal(m models.StoryViewMode) records.StorySendMode {
	switch m {
	case models.StoryViewModeExplicit:
		return records.StorySendModeEnabled
	case models.StoryViewModeDisabled:
		return records.StorySendModeDisabled
	default:
		return records.StorySendModeDefault
	}
}

func storyViewModeFromRecord(ctx context.Context, d Deps, m records.StorySendMode) models.StoryViewMode {
	switch m {
	case records.StorySendModeDefault:
		return models.StoryViewModeDefault
	case records.StorySendModeEnabled:
		return models.StoryViewModeExplicit
	case records.StorySendModeDisabled:
		return models.StoryViewModeDisabled
	default:
		d.Logger.Warn(ctx, "unknown story send mode", "value", int32(m))
		return models.StoryViewModeDefault
	}
}
