package records

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Kind tags a storage identifier with the record type stored under it.
type Kind int32

const (
	KindUnknown               Kind = 0
	KindContact               Kind = 1
	KindGroupV1               Kind = 2
	KindGroupV2               Kind = 3
	KindAccount               Kind = 4
	KindStoryDistributionList Kind = 5
)

func (k Kind) String() string {
	switch k {
	case KindContact:
		return "contact"
	case KindGroupV1:
		return "groupv1"
	case KindGroupV2:
		return "groupv2"
	case KindAccount:
		return "account"
	case KindStoryDistributionList:
		return "story_distribution_list"
	default:
		return "unknown(" + strconv.Itoa(int(k)) + ")"
	}
}

// ParseKind is the inverse of Kind.String for the known kinds.
func ParseKind(s string) (Kind, bool) {
	for _, k := range []Kind{KindContact, KindGroupV1, KindGroupV2, KindAccount, KindStoryDistributionList} {
		if k.String() == s {
			return k, true
		}
	}
	return KindUnknown, false
}

const identifierLength = 16

// StorageIdentifier names one stored record. Data is random and carries no
// meaning; Type lets the remote store route the item without decoding it.
type StorageIdentifier struct {
	Data []byte
	Type Kind
}

// NewStorageIdentifier returns a fresh random identifier of the given kind.
func NewStorageIdentifier(kind Kind) StorageIdentifier {
	id := uuid.New()
	return StorageIdentifier{Data: id[:], Type: kind}
}

// Key is a stable string form, usable as a map key or object name.
func (s StorageIdentifier) Key() string {
	return strconv.Itoa(int(s.Type)) + "." + base64.RawURLEncoding.EncodeToString(s.Data)
}

func (s StorageIdentifier) String() string {
	return s.Type.String() + ":" + base64.RawURLEncoding.EncodeToString(s.Data)
}

// ParseStorageIdentifierKey reverses StorageIdentifier.Key.
func ParseStorageIdentifierKey(key string) (StorageIdentifier, error) {
	kindPart, dataPart, ok := strings.Cut(key, ".")
	if !ok {
		return StorageIdentifier{}, fmt.Errorf("malformed storage identifier key %q", key)
	}
	kind, err := strconv.Atoi(kindPart)
	if err != nil {
		return StorageIdentifier{}, fmt.Errorf("malformed storage identifier kind %q: %w", kindPart, err)
	}
	data, err := base64.RawURLEncoding.DecodeString(dataPart)
	if err != nil {
		return StorageIdentifier{}, fmt.Errorf("malformed storage identifier data %q: %w", dataPart, err)
	}
	return StorageIdentifier{Data: data, Type: Kind(kind)}, nil
}

// IsValid reports whether the identifier has the expected length.
func (s StorageIdentifier) IsValid() bool {
	return len(s.Data) == identifierLength
}
