package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseServiceID(t *testing.T) {
	u := uuid.MustParse("9d0652a3-dcc3-4d11-975f-74d61598733f")

	tests := []struct {
		name    string
		in      string
		want    ServiceID
		wantErr bool
	}{
		{name: "aci", in: u.String(), want: ACIServiceID(u)},
		{name: "pni", in: "PNI:" + u.String(), want: PNIServiceID(u)},
		{name: "pni lowercase prefix", in: "pni:" + u.String(), want: PNIServiceID(u)},
		{name: "garbage", in: "not-a-uuid", wantErr: true},
		{name: "braced uuid rejected", in: "{" + u.String() + "}", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseServiceID(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestServiceID_String(t *testing.T) {
	u := uuid.MustParse("9d0652a3-dcc3-4d11-975f-74d61598733f")
	assert.Equal(t, "9d0652a3-dcc3-4d11-975f-74d61598733f", ACIServiceID(u).String())
	assert.Equal(t, "PNI:9d0652a3-dcc3-4d11-975f-74d61598733f", PNIServiceID(u).String())
}

func TestParseACI_RejectsPNI(t *testing.T) {
	u := uuid.New()

	aci, ok := ParseACI(u.String())
	require.True(t, ok)
	assert.Equal(t, u, *aci)

	_, ok = ParseACI("PNI:" + u.String())
	assert.False(t, ok)

	pni, ok := ParsePNI(u.String())
	require.True(t, ok)
	assert.Equal(t, u, *pni)
}

func TestParseE164(t *testing.T) {
	for _, good := range []string{"+14155550100", "+442071838750"} {
		_, ok := ParseE164(good)
		assert.True(t, ok, good)
	}
	for _, bad := range []string{"", "14155550100", "+0123456", "+1", "+1415555010a"} {
		_, ok := ParseE164(bad)
		assert.False(t, ok, bad)
	}
}

func TestLocalIdentifiers_ContainsAnyOf(t *testing.T) {
	aci, pni := uuid.New(), uuid.New()
	phone := "+14155550100"
	local := LocalIdentifiers{ACI: aci, PNI: &pni, PhoneNumber: phone}

	other := uuid.New()
	otherPhone := "+14155550199"

	assert.True(t, local.ContainsAnyOf(&aci, nil, nil))
	assert.True(t, local.ContainsAnyOf(nil, &pni, nil))
	assert.True(t, local.ContainsAnyOf(&other, nil, &phone))
	assert.False(t, local.ContainsAnyOf(&other, &other, &otherPhone))
	assert.False(t, local.ContainsAnyOf(nil, nil, nil))
}

func TestIdentityKeyRoundTrip(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	serialized := SerializeIdentityKey(key)
	require.Len(t, serialized, 33)

	parsed, err := ParseIdentityKey(serialized)
	require.NoError(t, err)
	assert.Equal(t, key, parsed)

	_, err = ParseIdentityKey(key)
	require.Error(t, err)
}

func TestNewPaymentsState_RequiresEntropy(t *testing.T) {
	assert.Equal(t, PaymentsState{}, NewPaymentsState(true, nil))
	got := NewPaymentsState(true, []byte{1, 2})
	assert.True(t, got.Enabled)
	assert.Equal(t, []byte{1, 2}, got.Entropy)
}

func TestNewUsernameLink(t *testing.T) {
	handle := uuid.New()
	entropy := make([]byte, UsernameLinkEntropyLength)

	link, ok := NewUsernameLink(handle[:], entropy)
	require.True(t, ok)
	assert.Equal(t, handle, link.Handle)

	_, ok = NewUsernameLink(handle[:8], entropy)
	assert.False(t, ok)
	_, ok = NewUsernameLink(handle[:], entropy[:31])
	assert.False(t, ok)
}

func TestSystemContactFullName(t *testing.T) {
	assert.Equal(t, "Nick", SystemContactFullName("Ann", "Lee", " Nick "))
	assert.Equal(t, "Ann Lee", SystemContactFullName("Ann", "Lee", ""))
	assert.Equal(t, "Lee", SystemContactFullName("", "Lee", ""))
	assert.Equal(t, "", SystemContactFullName("", " ", ""))
}
