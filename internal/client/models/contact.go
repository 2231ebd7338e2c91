package models

import "strings"

// SystemContact is an address-book entry keyed by phone number. Entries
// with FromLocalAddressBook unset were received from the primary device.
type SystemContact struct {
	PhoneNumber          string
	GivenName            string
	FamilyName           string
	Nickname             string
	FullName             string
	FromLocalAddressBook bool
}

// SystemContactFullName is the nickname when set, otherwise the joined
// given and family names.
func SystemContactFullName(given, family, nickname string) string {
	if n := strings.TrimSpace(nickname); n != "" {
		return n
	}
	parts := make([]string, 0, 2)
	for _, p := range []string{given, family} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
