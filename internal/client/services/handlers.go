package services

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/storagesync/internal/dbx"
	"github.com/dmitrijs2005/storagesync/internal/storageservice/records"
	"github.com/dmitrijs2005/storagesync/internal/storageservice/updater"
)

// mergeOutcome is a MergeResult with the local id in string form.
type mergeOutcome struct {
	invalid       bool
	needsUpdate   bool
	localID       string
	unknownFields []byte
}

// recordHandler adapts one typed updater to storage items and string ids.
type recordHandler interface {
	merge(ctx context.Context, tx dbx.DBTX, item records.StorageItem) (mergeOutcome, error)
	// build returns nil when the local entity should not be in the store.
	build(ctx context.Context, tx dbx.DBTX, localID string, unknownFields []byte) (*records.StorageItem, error)
}

type typedHandler[ID any, R any] struct {
	u        updater.Updater[ID, R]
	record   func(records.StorageItem) *R
	encodeID func(ID) string
	decodeID func(string) (ID, error)
}

func (h typedHandler[ID, R]) merge(ctx context.Context, tx dbx.DBTX, item records.StorageItem) (mergeOutcome, error) {
	rec := h.record(item)
	if rec == nil {
		return mergeOutcome{invalid: true}, nil
	}
	res, err := h.u.MergeRecord(ctx, rec, tx)
	if err != nil {
		return mergeOutcome{}, err
	}
	if res.IsInvalid() {
		return mergeOutcome{invalid: true}, nil
	}
	return mergeOutcome{
		needsUpdate:   res.NeedsUpdate,
		localID:       h.encodeID(res.ID),
		unknownFields: h.u.UnknownFields(rec),
	}, nil
}

func (h typedHandler[ID, R]) build(ctx context.Context, tx dbx.DBTX, localID string, unknownFields []byte) (*records.StorageItem, error) {
	id, err := h.decodeID(localID)
	if err != nil {
		return nil, err
	}
	rec, err := h.u.BuildRecord(ctx, id, unknownFields, tx)
	if err != nil || rec == nil {
		return nil, err
	}
	item := h.u.BuildStorageItem(rec)
	return &item, nil
}

// AccountLocalID is the local id of the singleton account record.
const AccountLocalID = "account"

func newHandlers(d updater.Deps) map[records.Kind]recordHandler {
	stringID := func(s string) string { return s }
	parseString := func(s string) (string, error) { return s, nil }

	return map[records.Kind]recordHandler{
		records.KindContact: typedHandler[string, records.Contact]{
			u:        updater.NewContactUpdater(d),
			record:   func(i records.StorageItem) *records.Contact { return i.Contact },
			encodeID: stringID,
			decodeID: parseString,
		},
		records.KindGroupV1: typedHandler[[]byte, records.GroupV1]{
			u:        updater.NewGroupV1Updater(d),
			record:   func(i records.StorageItem) *records.GroupV1 { return i.GroupV1 },
			encodeID: encodeBytesID,
			decodeID: decodeBytesID,
		},
		records.KindGroupV2: typedHandler[[]byte, records.GroupV2]{
			u:        updater.NewGroupV2Updater(d),
			record:   func(i records.StorageItem) *records.GroupV2 { return i.GroupV2 },
			encodeID: encodeBytesID,
			decodeID: decodeBytesID,
		},
		records.KindAccount: typedHandler[updater.AccountID, records.Account]{
			u:        updater.NewAccountUpdater(d),
			record:   func(i records.StorageItem) *records.Account { return i.Account },
			encodeID: func(updater.AccountID) string { return AccountLocalID },
			decodeID: func(s string) (updater.AccountID, error) {
				if s != AccountLocalID {
					return updater.AccountID{}, fmt.Errorf("unexpected account id %q", s)
				}
				return updater.AccountID{}, nil
			},
		},
		records.KindStoryDistributionList: typedHandler[[]byte, records.StoryDistributionList]{
			u:        updater.NewStoryDistributionListUpdater(d),
			record:   func(i records.StorageItem) *records.StoryDistributionList { return i.StoryDistributionList },
			encodeID: encodeBytesID,
			decodeID: decodeBytesID,
		},
	}
}

func encodeBytesID(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

func decodeBytesID(s string) ([]byte, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("malformed local id %q: %w", s, err)
	}
	return b, nil
}

// StoryListLocalID is the local id a story distribution list is enqueued
// under.
func StoryListLocalID(id uuid.UUID) string {
	return encodeBytesID(id[:])
}

// GroupLocalID is the local id of a v1 group (by group id) or a v2 group
// (by master key).
func GroupLocalID(b []byte) string {
	return encodeBytesID(b)
}
