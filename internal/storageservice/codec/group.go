package codec

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dmitrijs2005/storagesync/internal/storageservice/records"
)

const groupV1ID protowire.Number = 1

const (
	groupV2MasterKey     protowire.Number = 1
	groupV2Blocked       protowire.Number = 2
	groupV2Whitelisted   protowire.Number = 3
	groupV2Archived      protowire.Number = 4
	groupV2MarkedUnread  protowire.Number = 5
	groupV2MutedUntil    protowire.Number = 6
	groupV2DontNotify    protowire.Number = 7
	groupV2HideStory     protowire.Number = 8
	groupV2StorySendMode protowire.Number = 9
)

// EncodeGroupV1 writes the id; every other field of a legacy group lives in
// UnknownFields.
func EncodeGroupV1(g *records.GroupV1) []byte {
	var w writer
	w.bytes(groupV1ID, g.ID)
	w.raw(g.UnknownFields)
	return w.bytesOut()
}

func DecodeGroupV1(b []byte) (*records.GroupV1, error) {
	fields, err := parseFields(b)
	if err != nil {
		return nil, err
	}

	g := &records.GroupV1{}
	var r reader
	for _, f := range fields {
		if f.num == groupV1ID {
			r.bytes(f, &g.ID)
			continue
		}
		r.skip(f)
	}
	g.UnknownFields = r.unknownFields()
	return g, nil
}

func EncodeGroupV2(g *records.GroupV2) []byte {
	var w writer
	w.bytes(groupV2MasterKey, g.MasterKey)
	w.boolean(groupV2Blocked, g.Blocked)
	w.boolean(groupV2Whitelisted, g.Whitelisted)
	w.boolean(groupV2Archived, g.Archived)
	w.boolean(groupV2MarkedUnread, g.MarkedUnread)
	w.uint64(groupV2MutedUntil, g.MutedUntilTimestamp)
	w.boolean(groupV2DontNotify, g.DontNotifyForMentionsIfMuted)
	w.boolean(groupV2HideStory, g.HideStory)
	writeEnumPtr(&w, groupV2StorySendMode, g.StorySendMode)
	w.raw(g.UnknownFields)
	return w.bytesOut()
}

func DecodeGroupV2(b []byte) (*records.GroupV2, error) {
	fields, err := parseFields(b)
	if err != nil {
		return nil, err
	}

	g := &records.GroupV2{}
	var r reader
	for _, f := range fields {
		switch f.num {
		case groupV2MasterKey:
			r.bytes(f, &g.MasterKey)
		case groupV2Blocked:
			r.boolean(f, &g.Blocked)
		case groupV2Whitelisted:
			r.boolean(f, &g.Whitelisted)
		case groupV2Archived:
			r.boolean(f, &g.Archived)
		case groupV2MarkedUnread:
			r.boolean(f, &g.MarkedUnread)
		case groupV2MutedUntil:
			r.uint64(f, &g.MutedUntilTimestamp)
		case groupV2DontNotify:
			r.boolean(f, &g.DontNotifyForMentionsIfMuted)
		case groupV2HideStory:
			r.boolean(f, &g.HideStory)
		case groupV2StorySendMode:
			readEnumPtr(&r, f, &g.StorySendMode)
		default:
			r.skip(f)
		}
	}
	g.UnknownFields = r.unknownFields()
	return g, nil
}
