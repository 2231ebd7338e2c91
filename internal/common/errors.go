// Package common defines sentinel errors shared by the storage sync
// packages. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Remote store errors.
	ErrVersionConflict = errors.New("version conflict")
	ErrMalformedRecord = errors.New("malformed record")

	// Group errors.
	ErrInvalidMasterKey = errors.New("invalid group master key")

	// Validation errors.
	ErrInvalidServiceID   = errors.New("invalid service id")
	ErrInvalidIdentityKey = errors.New("invalid identity key")
)
