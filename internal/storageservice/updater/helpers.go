package updater

import "github.com/google/uuid"

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalUUIDPtr(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// nonEmpty maps "" to nil.
func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func stringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// usernameIsBestIdentifier reports whether nothing better than a username
// is known to display for a contact. The checks run in a fixed order:
// phone number, profile name, system contact name.
func usernameIsBestIdentifier(phoneNumber, profileGiven, profileFamily, systemGiven, systemFamily, systemNickname *string) bool {
	if nonEmpty(phoneNumber) != nil {
		return false
	}
	if nonEmpty(profileGiven) != nil || nonEmpty(profileFamily) != nil {
		return false
	}
	if nonEmpty(systemGiven) != nil || nonEmpty(systemFamily) != nil || nonEmpty(systemNickname) != nil {
		return false
	}
	return true
}
