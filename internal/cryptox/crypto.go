// Package cryptox derives group identifiers from group master keys.
package cryptox

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/dmitrijs2005/storagesync/internal/common"
)

const (
	GroupMasterKeyLength = 32
	GroupIDLength        = 32
)

var groupIDInfo = []byte("Signal_Group_Identifier_20231004")

// IsValidGroupMasterKey reports whether masterKey has the expected shape.
// Key material itself is not checked.
func IsValidGroupMasterKey(masterKey []byte) bool {
	return len(masterKey) == GroupMasterKeyLength
}

// DeriveGroupID expands masterKey with HKDF-SHA256 into the public group
// identifier. The same key always yields the same id.
func DeriveGroupID(masterKey []byte) ([]byte, error) {
	if !IsValidGroupMasterKey(masterKey) {
		return nil, fmt.Errorf("%w: length %d", common.ErrInvalidMasterKey, len(masterKey))
	}
	id := make([]byte, GroupIDLength)
	if _, err := io.ReadFull(hkdf.New(sha256.New, masterKey, nil, groupIDInfo), id); err != nil {
		return nil, fmt.Errorf("derive group id: %w", err)
	}
	return id, nil
}
