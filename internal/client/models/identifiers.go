package models

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/storagesync/internal/common"
)

// ServiceIDKind distinguishes account identifiers (ACI) from phone number
// identifiers (PNI).
type ServiceIDKind int

const (
	ServiceIDKindACI ServiceIDKind = iota
	ServiceIDKindPNI
)

const pniPrefix = "PNI:"

// ServiceID is an ACI or PNI. The string form of an ACI is the bare
// lowercase UUID; a PNI carries a "PNI:" prefix.
type ServiceID struct {
	Kind ServiceIDKind
	UUID uuid.UUID
}

func ACIServiceID(u uuid.UUID) ServiceID { return ServiceID{Kind: ServiceIDKindACI, UUID: u} }
func PNIServiceID(u uuid.UUID) ServiceID { return ServiceID{Kind: ServiceIDKindPNI, UUID: u} }

func (s ServiceID) String() string {
	if s.Kind == ServiceIDKindPNI {
		return pniPrefix + s.UUID.String()
	}
	return s.UUID.String()
}

// ParseServiceID parses the string form produced by ServiceID.String.
func ParseServiceID(s string) (ServiceID, error) {
	kind := ServiceIDKindACI
	raw := s
	if len(s) >= len(pniPrefix) && strings.EqualFold(s[:len(pniPrefix)], pniPrefix) {
		kind = ServiceIDKindPNI
		raw = s[len(pniPrefix):]
	}
	u, err := uuid.Parse(raw)
	if err != nil || len(raw) != 36 {
		return ServiceID{}, fmt.Errorf("%w: %q", common.ErrInvalidServiceID, s)
	}
	return ServiceID{Kind: kind, UUID: u}, nil
}

// ParseACI returns the ACI encoded in s, or false when s is empty, malformed
// or a PNI.
func ParseACI(s string) (*uuid.UUID, bool) {
	if s == "" {
		return nil, false
	}
	sid, err := ParseServiceID(s)
	if err != nil || sid.Kind != ServiceIDKindACI {
		return nil, false
	}
	return &sid.UUID, true
}

// ParsePNI accepts both a bare UUID and the prefixed service id form.
func ParsePNI(s string) (*uuid.UUID, bool) {
	if s == "" {
		return nil, false
	}
	sid, err := ParseServiceID(s)
	if err != nil {
		return nil, false
	}
	return &sid.UUID, true
}

var e164Pattern = regexp.MustCompile(`^\+[1-9][0-9]{5,18}$`)

// ParseE164 validates a phone number in E.164 form.
func ParseE164(s string) (*string, bool) {
	if !e164Pattern.MatchString(s) {
		return nil, false
	}
	return &s, true
}

// LocalIdentifiers are the identifiers of the account this device belongs to.
type LocalIdentifiers struct {
	ACI         uuid.UUID
	PNI         *uuid.UUID
	PhoneNumber string
}

// ContainsAnyOf reports whether any of the given identifiers belongs to the
// local account.
func (l LocalIdentifiers) ContainsAnyOf(aci, pni *uuid.UUID, phone *string) bool {
	if aci != nil && *aci == l.ACI {
		return true
	}
	if pni != nil && l.PNI != nil && *pni == *l.PNI {
		return true
	}
	if phone != nil && l.PhoneNumber != "" && *phone == l.PhoneNumber {
		return true
	}
	return false
}

// Address identifies a contact by service id, phone number, or both.
type Address struct {
	ServiceID   *ServiceID `json:"service_id,omitempty"`
	PhoneNumber *string    `json:"phone_number,omitempty"`
}

func (a Address) IsValid() bool {
	return a.ServiceID != nil || a.PhoneNumber != nil
}
