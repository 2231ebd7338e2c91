package codec

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dmitrijs2005/storagesync/internal/storageservice/records"
)

const (
	storyIdentifier    protowire.Number = 1
	storyName          protowire.Number = 2
	storyRecipients    protowire.Number = 3
	storyDeletedAt     protowire.Number = 4
	storyAllowsReplies protowire.Number = 5
	storyIsBlockList   protowire.Number = 6
)

func EncodeStoryDistributionList(s *records.StoryDistributionList) []byte {
	var w writer
	w.bytes(storyIdentifier, s.Identifier)
	w.str(storyName, s.Name)
	w.strs(storyRecipients, s.RecipientServiceIDs)
	w.uint64(storyDeletedAt, s.DeletedAtTimestamp)
	w.boolean(storyAllowsReplies, s.AllowsReplies)
	w.boolean(storyIsBlockList, s.IsBlockList)
	w.raw(s.UnknownFields)
	return w.bytesOut()
}

func DecodeStoryDistributionList(b []byte) (*records.StoryDistributionList, error) {
	fields, err := parseFields(b)
	if err != nil {
		return nil, err
	}

	s := &records.StoryDistributionList{}
	var r reader
	for _, f := range fields {
		switch f.num {
		case storyIdentifier:
			r.bytes(f, &s.Identifier)
		case storyName:
			r.str(f, &s.Name)
		case storyRecipients:
			r.strs(f, &s.RecipientServiceIDs)
		case storyDeletedAt:
			r.uint64(f, &s.DeletedAtTimestamp)
		case storyAllowsReplies:
			r.boolean(f, &s.AllowsReplies)
		case storyIsBlockList:
			r.boolean(f, &s.IsBlockList)
		default:
			r.skip(f)
		}
	}
	s.UnknownFields = r.unknownFields()
	return s, nil
}
