package codec

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dmitrijs2005/storagesync/internal/storageservice/records"
)

const (
	contactACI              protowire.Number = 1
	contactE164             protowire.Number = 2
	contactProfileKey       protowire.Number = 3
	contactIdentityKey      protowire.Number = 4
	contactIdentityState    protowire.Number = 5
	contactGivenName        protowire.Number = 6
	contactFamilyName       protowire.Number = 7
	contactUsername         protowire.Number = 8
	contactBlocked          protowire.Number = 9
	contactWhitelisted      protowire.Number = 10
	contactArchived         protowire.Number = 11
	contactMarkedUnread     protowire.Number = 12
	contactMutedUntil       protowire.Number = 13
	contactHideStory        protowire.Number = 14
	contactPNI              protowire.Number = 15
	contactUnregisteredAt   protowire.Number = 16
	contactSystemGivenName  protowire.Number = 17
	contactSystemFamilyName protowire.Number = 18
	contactSystemNickname   protowire.Number = 19
	contactHidden           protowire.Number = 20
)

func EncodeContact(c *records.Contact) []byte {
	var w writer
	w.str(contactACI, c.ACI)
	w.str(contactE164, c.E164)
	w.bytes(contactProfileKey, c.ProfileKey)
	w.bytes(contactIdentityKey, c.IdentityKey)
	writeEnumPtr(&w, contactIdentityState, c.IdentityState)
	w.str(contactGivenName, c.GivenName)
	w.str(contactFamilyName, c.FamilyName)
	w.str(contactUsername, c.Username)
	w.boolean(contactBlocked, c.Blocked)
	w.boolean(contactWhitelisted, c.Whitelisted)
	w.boolean(contactArchived, c.Archived)
	w.boolean(contactMarkedUnread, c.MarkedUnread)
	w.uint64(contactMutedUntil, c.MutedUntilTimestamp)
	w.boolean(contactHideStory, c.HideStory)
	w.str(contactPNI, c.PNI)
	w.uint64(contactUnregisteredAt, c.UnregisteredAtTimestamp)
	w.str(contactSystemGivenName, c.SystemGivenName)
	w.str(contactSystemFamilyName, c.SystemFamilyName)
	w.str(contactSystemNickname, c.SystemNickname)
	w.boolean(contactHidden, c.Hidden)
	w.raw(c.UnknownFields)
	return w.bytesOut()
}

func DecodeContact(b []byte) (*records.Contact, error) {
	fields, err := parseFields(b)
	if err != nil {
		return nil, err
	}

	c := &records.Contact{}
	var r reader
	for _, f := range fields {
		switch f.num {
		case contactACI:
			r.str(f, &c.ACI)
		case contactE164:
			r.str(f, &c.E164)
		case contactProfileKey:
			r.bytes(f, &c.ProfileKey)
		case contactIdentityKey:
			r.bytes(f, &c.IdentityKey)
		case contactIdentityState:
			readEnumPtr(&r, f, &c.IdentityState)
		case contactGivenName:
			r.str(f, &c.GivenName)
		case contactFamilyName:
			r.str(f, &c.FamilyName)
		case contactUsername:
			r.str(f, &c.Username)
		case contactBlocked:
			r.boolean(f, &c.Blocked)
		case contactWhitelisted:
			r.boolean(f, &c.Whitelisted)
		case contactArchived:
			r.boolean(f, &c.Archived)
		case contactMarkedUnread:
			r.boolean(f, &c.MarkedUnread)
		case contactMutedUntil:
			r.uint64(f, &c.MutedUntilTimestamp)
		case contactHideStory:
			r.boolean(f, &c.HideStory)
		case contactPNI:
			r.str(f, &c.PNI)
		case contactUnregisteredAt:
			r.uint64(f, &c.UnregisteredAtTimestamp)
		case contactSystemGivenName:
			r.str(f, &c.SystemGivenName)
		case contactSystemFamilyName:
			r.str(f, &c.SystemFamilyName)
		case contactSystemNickname:
			r.str(f, &c.SystemNickname)
		case contactHidden:
			r.boolean(f, &c.Hidden)
		default:
			r.skip(f)
		}
	}
	c.UnknownFields = r.unknownFields()
	return c, nil
}
