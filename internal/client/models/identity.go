package models

import (
	"fmt"

	"github.com/dmitrijs2005/storagesync/internal/common"
)

// VerificationState of a recipient's identity key.
type VerificationState int

const (
	VerificationStateDefault VerificationState = iota
	VerificationStateVerified
	VerificationStateNoLongerVerified
)

const (
	identityKeyTypeDjb = 0x05
	identityKeyLength  = 32
)

// IdentityRecord is the stored public identity key of a recipient.
type IdentityRecord struct {
	Key   []byte // 32-byte public key, without the type prefix
	State VerificationState
}

// ParseIdentityKey strips the key type byte from a serialized identity key.
func ParseIdentityKey(serialized []byte) ([]byte, error) {
	if len(serialized) != identityKeyLength+1 || serialized[0] != identityKeyTypeDjb {
		return nil, fmt.Errorf("%w: length %d", common.ErrInvalidIdentityKey, len(serialized))
	}
	key := make([]byte, identityKeyLength)
	copy(key, serialized[1:])
	return key, nil
}

// SerializeIdentityKey prepends the key type byte.
func SerializeIdentityKey(key []byte) []byte {
	out := make([]byte, 0, len(key)+1)
	out = append(out, identityKeyTypeDjb)
	return append(out, key...)
}
