package models

import "github.com/google/uuid"

// Recipient is a locally known contact, keyed by a stable unique id that
// survives identifier changes.
type Recipient struct {
	ID             string
	ACI            *uuid.UUID
	PNI            *uuid.UUID
	PhoneNumber    *string
	IsRegistered   bool
	UnregisteredAt *uint64 // ms since epoch; nil when unknown
}

// ServiceID returns the ACI if known, otherwise the PNI.
func (r *Recipient) ServiceID() *ServiceID {
	switch {
	case r.ACI != nil:
		sid := ACIServiceID(*r.ACI)
		return &sid
	case r.PNI != nil:
		sid := PNIServiceID(*r.PNI)
		return &sid
	default:
		return nil
	}
}

// Profile is a user profile. The local account's own profile is stored
// under LocalProfileRecipientID.
type Profile struct {
	ProfileKey []byte
	GivenName  *string
	FamilyName *string
	AvatarURL  *string
}

const LocalProfileRecipientID = "local"
