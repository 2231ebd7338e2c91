package updater

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/storagesync/internal/client/models"
	"github.com/dmitrijs2005/storagesync/internal/dbx"
	"github.com/dmitrijs2005/storagesync/internal/storageservice/records"
)

// StoryDistributionListUpdater syncs private story lists keyed by the raw
// bytes of their UUID.
type StoryDistributionListUpdater struct {
	d Deps
}

func NewStoryDistributionListUpdater(d Deps) *StoryDistributionListUpdater {
	return &StoryDistributionListUpdater{d: d}
}

func (u *StoryDistributionListUpdater) UnknownFields(record *records.StoryDistributionList) []byte {
	return record.UnknownFields
}

func (u *StoryDistributionListUpdater) BuildStorageItem(record *records.StoryDistributionList) records.StorageItem {
	return records.StorageItem{
		Identifier:            records.NewStorageIdentifier(records.KindStoryDistributionList),
		StoryDistributionList: record,
	}
}

func (u *StoryDistributionListUpdater) BuildRecord(ctx context.Context, id []byte, unknownFields []byte, tx dbx.DBTX) (*records.StoryDistributionList, error) {
	listID, ok := parseStoryListID(id)
	if !ok {
		return nil, nil
	}

	deletedAt, err := u.d.StoryLists.DeletedAt(ctx, tx, listID)
	if err != nil {
		return nil, err
	}
	if deletedAt != 0 {
		return &records.StoryDistributionList{
			Identifier:         bytes.Clone(id),
			DeletedAtTimestamp: deletedAt,
			UnknownFields:      unknownFields,
		}, nil
	}

	list, err := u.d.StoryLists.StoryList(ctx, tx, listID)
	if err != nil {
		return nil, fmt.Errorf("load story list %s: %w", listID, err)
	}
	if list == nil {
		return nil, nil
	}

	rec := &records.StoryDistributionList{
		Identifier:    bytes.Clone(id),
		AllowsReplies: list.AllowsReplies,
		IsBlockList:   list.Mode == models.StoryListModeBlockList,
		UnknownFields: unknownFields,
	}
	if !list.IsMyStory() {
		rec.Name = stringPtr(list.Name)
	}
	for _, m := range list.Members {
		rec.RecipientServiceIDs = append(rec.RecipientServiceIDs, m.String())
	}
	return rec, nil
}

func (u *StoryDistributionListUpdater) MergeRecord(ctx context.Context, record *records.StoryDistributionList, tx dbx.DBTX) (MergeResult[[]byte], error) {
	d := u.d
	listID, ok := parseStoryListID(record.Identifier)
	if !ok {
		d.Logger.Warn(ctx, "story list record with invalid identifier", "length", len(record.Identifier))
		return Invalid[[]byte](), nil
	}

	list, err := d.StoryLists.StoryList(ctx, tx, listID)
	if err != nil {
		return Invalid[[]byte](), fmt.Errorf("load story list %s: %w", listID, err)
	}

	if record.DeletedAtTimestamp != 0 {
		if list != nil {
			if err := d.StoryLists.DeleteStoryList(ctx, tx, listID); err != nil {
				return Invalid[[]byte](), err
			}
		}
		if err := d.StoryLists.RecordDeletion(ctx, tx, listID, record.DeletedAtTimestamp); err != nil {
			return Invalid[[]byte](), err
		}
		return Merged(false, record.Identifier), nil
	}

	members := u.parseMembers(ctx, record.RecipientServiceIDs)
	mode := models.StoryListModeExplicit
	if record.IsBlockList {
		mode = models.StoryListModeBlockList
	}

	if list == nil {
		name := nonEmpty(record.Name)
		if name == nil {
			d.Logger.Warn(ctx, "new story list without a name", "id", listID)
			return Invalid[[]byte](), nil
		}
		err := d.StoryLists.InsertStoryList(ctx, tx, &models.PrivateStoryList{
			ID:            listID,
			Name:          *name,
			AllowsReplies: record.AllowsReplies,
			Mode:          mode,
			Members:       members,
		})
		if err != nil {
			return Invalid[[]byte](), fmt.Errorf("insert story list: %w", err)
		}
		return Merged(false, record.Identifier), nil
	}

	needsUpdate := false
	next := *list
	if !list.IsMyStory() {
		if name := nonEmpty(record.Name); name == nil {
			needsUpdate = true
		} else {
			next.Name = *name
		}
	}
	next.AllowsReplies = record.AllowsReplies
	if mode != list.Mode || !sameMembers(list.Members, members) {
		next.Mode = mode
		next.Members = members
	}

	if next.Name != list.Name || next.AllowsReplies != list.AllowsReplies || next.Mode != list.Mode || !sameMembers(next.Members, list.Members) {
		if err := d.StoryLists.UpdateStoryList(ctx, tx, &next); err != nil {
			return Invalid[[]byte](), fmt.Errorf("update story list: %w", err)
		}
	}

	return Merged(needsUpdate, record.Identifier), nil
}

func (u *StoryDistributionListUpdater) parseMembers(ctx context.Context, raw []string) []models.ServiceID {
	var out []models.ServiceID
	seen := make(map[models.ServiceID]struct{}, len(raw))
	for _, s := range raw {
		sid, err := models.ParseServiceID(s)
		if err != nil {
			u.d.Logger.Warn(ctx, "skipping story list member", "error", err)
			continue
		}
		if _, dup := seen[sid]; dup {
			continue
		}
		seen[sid] = struct{}{}
		out = append(out, sid)
	}
	return out
}

func parseStoryListID(b []byte) (uuid.UUID, bool) {
	if len(b) != 16 {
		return uuid.Nil, false
	}
	id, err := uuid.FromBytes(b)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// sameMembers compares as sets.
func sameMembers(a, b []models.ServiceID) bool {
	as := make(map[models.ServiceID]struct{}, len(a))
	for _, s := range a {
		as[s] = struct{}{}
	}
	bs := make(map[models.ServiceID]struct{}, len(b))
	for _, s := range b {
		if _, ok := as[s]; !ok {
			return false
		}
		bs[s] = struct{}{}
	}
	return len(as) == len(bs)
}
