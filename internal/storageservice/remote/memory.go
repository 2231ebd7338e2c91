package remote

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dmitrijs2005/storagesync/internal/common"
	"github.com/dmitrijs2005/storagesync/internal/storageservice/codec"
	"github.com/dmitrijs2005/storagesync/internal/storageservice/records"
)

// MemoryStore is an in-process Store. Items are kept encoded so that a
// round trip through it behaves like a real service.
type MemoryStore struct {
	mu       sync.Mutex
	manifest records.Manifest
	items    map[string][]byte
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string][]byte)}
}

func (s *MemoryStore) FetchManifest(_ context.Context, greaterThan uint64) (*records.Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.manifest.Version <= greaterThan {
		return nil, nil
	}
	m := records.Manifest{
		Version:     s.manifest.Version,
		Identifiers: slices.Clone(s.manifest.Identifiers),
	}
	return &m, nil
}

func (s *MemoryStore) FetchItems(_ context.Context, ids []records.StorageIdentifier) ([]records.StorageItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]records.StorageItem, 0, len(ids))
	for _, id := range ids {
		b, ok := s.items[id.Key()]
		if !ok {
			continue
		}
		item, err := codec.DecodeItem(id, b)
		if err != nil {
			return nil, fmt.Errorf("decode item %s: %w", id, err)
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *MemoryStore) WriteChanges(_ context.Context, previousVersion uint64, changes ChangeSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.manifest.Version != previousVersion {
		return fmt.Errorf("%w: remote is at %d, expected %d", common.ErrVersionConflict, s.manifest.Version, previousVersion)
	}

	encoded := make(map[string][]byte, len(changes.Inserts))
	for _, item := range changes.Inserts {
		b, err := codec.EncodeItem(item)
		if err != nil {
			return fmt.Errorf("encode item %s: %w", item.Identifier, err)
		}
		encoded[item.Identifier.Key()] = b
	}

	for k, b := range encoded {
		s.items[k] = b
	}
	for _, id := range changes.Deletes {
		delete(s.items, id.Key())
	}
	s.manifest = records.Manifest{
		Version:     changes.Manifest.Version,
		Identifiers: slices.Clone(changes.Manifest.Identifiers),
	}
	return nil
}

// Version returns the current manifest version.
func (s *MemoryStore) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manifest.Version
}

// Len returns the number of stored items.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
