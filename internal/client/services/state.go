package services

import (
	"context"
	"slices"

	"github.com/dmitrijs2005/storagesync/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/storagesync/internal/storageservice/records"
)

const (
	stateKeyPrefix = "storage_sync."
	stateKey       = stateKeyPrefix + "state"
)

// LocalRef names a local entity of one record kind.
type LocalRef struct {
	Kind    records.Kind `json:"kind"`
	LocalID string       `json:"local_id"`
}

func (r LocalRef) key() string {
	return r.Kind.String() + "/" + r.LocalID
}

// syncedRecord is what the device knows about one remote identifier. Items
// of a kind this version cannot read have an empty LocalID and are kept
// as they are.
type syncedRecord struct {
	Kind          records.Kind `json:"kind"`
	LocalID       string       `json:"local_id,omitempty"`
	UnknownFields []byte       `json:"unknown_fields,omitempty"`
}

type syncState struct {
	ManifestVersion uint64                  `json:"manifest_version"`
	Records         map[string]syncedRecord `json:"records"`
	Pending         []LocalRef              `json:"pending,omitempty"`

	// invalid holds identifiers to delete on the next push. They are not
	// persisted; a later pull finds them again.
	invalid []records.StorageIdentifier
}

func newSyncState() *syncState {
	return &syncState{Records: make(map[string]syncedRecord)}
}

func loadState(ctx context.Context, meta metadata.Repository) (*syncState, error) {
	s := newSyncState()
	if _, err := metadata.GetJSON(ctx, meta, stateKey, s); err != nil {
		return nil, err
	}
	if s.Records == nil {
		s.Records = make(map[string]syncedRecord)
	}
	return s, nil
}

func saveState(ctx context.Context, meta metadata.Repository, s *syncState) error {
	return metadata.SetJSON(ctx, meta, stateKey, s)
}

func (s *syncState) clone() *syncState {
	c := &syncState{
		ManifestVersion: s.ManifestVersion,
		Records:         make(map[string]syncedRecord, len(s.Records)),
		Pending:         slices.Clone(s.Pending),
	}
	for k, v := range s.Records {
		c.Records[k] = v
	}
	return c
}

func (s *syncState) addPending(ref LocalRef) {
	if !slices.Contains(s.Pending, ref) {
		s.Pending = append(s.Pending, ref)
	}
}

// identifierFor returns the identifier key currently holding ref.
func (s *syncState) identifierFor(ref LocalRef) (string, bool) {
	for k, r := range s.Records {
		if r.LocalID != "" && r.Kind == ref.Kind && r.LocalID == ref.LocalID {
			return k, true
		}
	}
	return "", false
}

// identifiers returns every known identifier in a stable order.
func (s *syncState) identifiers() ([]records.StorageIdentifier, error) {
	keys := make([]string, 0, len(s.Records))
	for k := range s.Records {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	ids := make([]records.StorageIdentifier, 0, len(keys))
	for _, k := range keys {
		id, err := records.ParseStorageIdentifierKey(k)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
