package codec

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dmitrijs2005/storagesync/internal/common"
	"github.com/dmitrijs2005/storagesync/internal/storageservice/records"
)

// Record envelope field numbers; one per record kind.
const (
	envelopeContact               protowire.Number = 1
	envelopeGroupV1               protowire.Number = 2
	envelopeGroupV2               protowire.Number = 3
	envelopeAccount               protowire.Number = 4
	envelopeStoryDistributionList protowire.Number = 5
)

const (
	manifestVersion     protowire.Number = 1
	manifestIdentifiers protowire.Number = 2

	identifierData protowire.Number = 1
	identifierType protowire.Number = 2
)

// EncodeItem serializes the record held by item. The identifier itself is
// not part of the payload.
func EncodeItem(item records.StorageItem) ([]byte, error) {
	var w writer
	switch item.Identifier.Type {
	case records.KindContact:
		if item.Contact == nil {
			return nil, missingRecord(item)
		}
		w.message(envelopeContact, EncodeContact(item.Contact))
	case records.KindGroupV1:
		if item.GroupV1 == nil {
			return nil, missingRecord(item)
		}
		w.message(envelopeGroupV1, EncodeGroupV1(item.GroupV1))
	case records.KindGroupV2:
		if item.GroupV2 == nil {
			return nil, missingRecord(item)
		}
		w.message(envelopeGroupV2, EncodeGroupV2(item.GroupV2))
	case records.KindAccount:
		if item.Account == nil {
			return nil, missingRecord(item)
		}
		w.message(envelopeAccount, EncodeAccount(item.Account))
	case records.KindStoryDistributionList:
		if item.StoryDistributionList == nil {
			return nil, missingRecord(item)
		}
		w.message(envelopeStoryDistributionList, EncodeStoryDistributionList(item.StoryDistributionList))
	default:
		w.raw(item.Unknown)
	}
	return w.bytesOut(), nil
}

func missingRecord(item records.StorageItem) error {
	return fmt.Errorf("%w: %s item has no record", common.ErrMalformedRecord, item.Identifier.Type)
}

// DecodeItem parses a payload stored under id. Payloads of an unknown kind
// are kept verbatim in StorageItem.Unknown.
func DecodeItem(id records.StorageIdentifier, b []byte) (records.StorageItem, error) {
	item := records.StorageItem{Identifier: id}

	want, known := envelopeField(id.Type)
	if !known {
		item.Unknown = append([]byte{}, b...)
		return item, nil
	}

	fields, err := parseFields(b)
	if err != nil {
		return item, err
	}

	var payload []byte
	found := false
	for _, f := range fields {
		if f.num == want && f.typ == protowire.BytesType {
			payload, found = f.val, true
		}
	}
	if !found {
		return item, fmt.Errorf("%w: %s payload missing", common.ErrMalformedRecord, id.Type)
	}

	switch id.Type {
	case records.KindContact:
		item.Contact, err = DecodeContact(payload)
	case records.KindGroupV1:
		item.GroupV1, err = DecodeGroupV1(payload)
	case records.KindGroupV2:
		item.GroupV2, err = DecodeGroupV2(payload)
	case records.KindAccount:
		item.Account, err = DecodeAccount(payload)
	case records.KindStoryDistributionList:
		item.StoryDistributionList, err = DecodeStoryDistributionList(payload)
	}
	return item, err
}

func envelopeField(kind records.Kind) (protowire.Number, bool) {
	switch kind {
	case records.KindContact:
		return envelopeContact, true
	case records.KindGroupV1:
		return envelopeGroupV1, true
	case records.KindGroupV2:
		return envelopeGroupV2, true
	case records.KindAccount:
		return envelopeAccount, true
	case records.KindStoryDistributionList:
		return envelopeStoryDistributionList, true
	default:
		return 0, false
	}
}

func EncodeManifest(m records.Manifest) []byte {
	var w writer
	w.uint64(manifestVersion, m.Version)
	for _, id := range m.Identifiers {
		var iw writer
		iw.bytes(identifierData, id.Data)
		writeEnum(&iw, identifierType, id.Type)
		w.message(manifestIdentifiers, iw.bytesOut())
	}
	return w.bytesOut()
}

func DecodeManifest(b []byte) (records.Manifest, error) {
	fields, err := parseFields(b)
	if err != nil {
		return records.Manifest{}, err
	}

	var m records.Manifest
	var r reader
	for _, f := range fields {
		switch f.num {
		case manifestVersion:
			r.uint64(f, &m.Version)
		case manifestIdentifiers:
			raw, ok := r.message(f)
			if !ok {
				continue
			}
			idFields, err := parseFields(raw)
			if err != nil {
				return records.Manifest{}, err
			}
			var id records.StorageIdentifier
			for _, idf := range idFields {
				switch idf.num {
				case identifierData:
					r.bytes(idf, &id.Data)
				case identifierType:
					readEnum(&r, idf, &id.Type)
				}
			}
			m.Identifiers = append(m.Identifiers, id)
		}
	}
	return m, nil
}
