package updater

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/storagesync/internal/client/models"
	"github.com/dmitrijs2005/storagesync/internal/storageservice/records"
)

// UnregisteredThreshold is how long an unregistered contact stays in the
// store. It is a fixed duration, not a calendar month.
const UnregisteredThreshold = 30 * 24 * time.Hour

// distantPastMillis stands in for an unknown unregistration time.
const distantPastMillis uint64 = 1

type RegistrationStatus int

const (
	RegistrationStatusRegistered RegistrationStatus = iota
	RegistrationStatusUnregisteredRecently
	RegistrationStatusUnregisteredMoreThanOneMonthAgo
)

// StorageServiceContact is the sync view of a recipient, built either from
// a record or from local state. It always has an ACI or a PNI.
type StorageServiceContact struct {
	ACI            *uuid.UUID
	PNI            *uuid.UUID
	PhoneNumber    *string
	UnregisteredAt *uint64
}

func NewStorageServiceContact(aci, pni *uuid.UUID, phoneNumber *string, unregisteredAt *uint64) (*StorageServiceContact, bool) {
	if aci == nil && pni == nil {
		return nil, false
	}
	return &StorageServiceContact{
		ACI:            aci,
		PNI:            pni,
		PhoneNumber:    phoneNumber,
		UnregisteredAt: unregisteredAt,
	}, true
}

// ContactFromRecord parses the identifiers of a contact record. Malformed
// identifiers are treated as absent; an unregistered timestamp of 0 means
// registered.
func ContactFromRecord(r *records.Contact) (*StorageServiceContact, bool) {
	var aci, pni *uuid.UUID
	if r.ACI != nil {
		aci, _ = models.ParseACI(*r.ACI)
	}
	if r.PNI != nil {
		pni, _ = models.ParsePNI(*r.PNI)
	}
	var phone *string
	if r.E164 != nil {
		phone, _ = models.ParseE164(*r.E164)
	}
	var unregisteredAt *uint64
	if r.UnregisteredAtTimestamp != 0 {
		ts := r.UnregisteredAtTimestamp
		unregisteredAt = &ts
	}
	return NewStorageServiceContact(aci, pni, phone, unregisteredAt)
}

func ContactFromRecipient(r *models.Recipient) (*StorageServiceContact, bool) {
	var unregisteredAt *uint64
	if !r.IsRegistered {
		ts := distantPastMillis
		if r.UnregisteredAt != nil {
			ts = *r.UnregisteredAt
		}
		unregisteredAt = &ts
	}
	return NewStorageServiceContact(r.ACI, r.PNI, r.PhoneNumber, unregisteredAt)
}

func (c *StorageServiceContact) RegistrationStatus(now time.Time) RegistrationStatus {
	if c.UnregisteredAt == nil {
		return RegistrationStatusRegistered
	}
	elapsed := now.UnixMilli() - int64(*c.UnregisteredAt)
	if elapsed <= UnregisteredThreshold.Milliseconds() {
		return RegistrationStatusUnregisteredRecently
	}
	return RegistrationStatusUnregisteredMoreThanOneMonthAgo
}

// ShouldBeInStorageService is false once a contact has been unregistered
// for longer than UnregisteredThreshold.
func (c *StorageServiceContact) ShouldBeInStorageService(now time.Time) bool {
	return c.RegistrationStatus(now) != RegistrationStatusUnregisteredMoreThanOneMonthAgo
}

func (c *StorageServiceContact) matchesLocal(local models.LocalIdentifiers) bool {
	return local.ContainsAnyOf(c.ACI, c.PNI, c.PhoneNumber)
}
