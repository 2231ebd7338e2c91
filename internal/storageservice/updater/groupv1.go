package updater

import (
	"bytes"
	"context"

	"github.com/dmitrijs2005/storagesync/internal/dbx"
	"github.com/dmitrijs2005/storagesync/internal/storageservice/records"
)

// GroupV1Updater keeps legacy group records alive. Nothing about them is
// merged locally; the record is passed through so other devices keep it.
type GroupV1Updater struct {
	d Deps
}

func NewGroupV1Updater(d Deps) *GroupV1Updater {
	return &GroupV1Updater{d: d}
}

func (u *GroupV1Updater) UnknownFields(record *records.GroupV1) []byte {
	return record.UnknownFields
}

func (u *GroupV1Updater) BuildStorageItem(record *records.GroupV1) records.StorageItem {
	return records.StorageItem{
		Identifier: records.NewStorageIdentifier(records.KindGroupV1),
		GroupV1:    record,
	}
}

func (u *GroupV1Updater) BuildRecord(_ context.Context, groupID []byte, unknownFields []byte, _ dbx.DBTX) (*records.GroupV1, error) {
	return &records.GroupV1{ID: bytes.Clone(groupID), UnknownFields: unknownFields}, nil
}

func (u *GroupV1Updater) MergeRecord(_ context.Context, record *records.GroupV1, _ dbx.DBTX) (MergeResult[[]byte], error) {
	return Merged(false, record.ID), nil
}
