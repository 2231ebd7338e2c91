package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/storagesync/internal/client/groups"
	"github.com/dmitrijs2005/storagesync/internal/client/localstore"
	"github.com/dmitrijs2005/storagesync/internal/client/models"
	"github.com/dmitrijs2005/storagesync/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/storagesync/internal/common"
	"github.com/dmitrijs2005/storagesync/internal/dbx"
	"github.com/dmitrijs2005/storagesync/internal/logging"
	"github.com/dmitrijs2005/storagesync/internal/storageservice/records"
	"github.com/dmitrijs2005/storagesync/internal/storageservice/remote"
)

// SyncReport summarizes one pass.
type SyncReport struct {
	ManifestVersion uint64
	Fetched         int
	Merged          int
	Invalid         int
	Uploaded        int
	Deleted         int
	GroupsRestored  int
	// VersionConflict is set when another device wrote first; the upload
	// is retried on the next pass.
	VersionConflict bool
}

type StorageSyncService interface {
	Sync(ctx context.Context) (SyncReport, error)
	EnqueueUpdate(ctx context.Context, kind records.Kind, localID string) error
	// Reset forgets all sync state so the next pass starts from scratch.
	Reset(ctx context.Context) error
}

type Options struct {
	Local           models.LocalIdentifiers
	IsPrimaryDevice bool
	Logger          logging.Logger
	ProfileFetcher  *ProfileQueue
}

type storageSyncService struct {
	db       *sql.DB
	remote   remote.Store
	meta     metadata.Repository
	groups   *groups.Manager
	handlers map[records.Kind]recordHandler
	logger   logging.Logger
}

func NewStorageSyncService(db *sql.DB, store remote.Store, opts Options) StorageSyncService {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	fetcher := opts.ProfileFetcher
	if fetcher == nil {
		fetcher = NewProfileQueue(64, logger)
	}
	g := groups.NewManager(logger)
	deps := localstore.New(logger).Deps(opts.Local, opts.IsPrimaryDevice, g, fetcher)

	return &storageSyncService{
		db:       db,
		remote:   store,
		meta:     metadata.NewSQLiteRepository(db),
		groups:   g,
		handlers: newHandlers(deps),
		logger:   logger.With("component", "storage_sync"),
	}
}

func (s *storageSyncService) EnqueueUpdate(ctx context.Context, kind records.Kind, localID string) error {
	if _, ok := s.handlers[kind]; !ok {
		return fmt.Errorf("cannot enqueue %s records", kind)
	}
	if localID == "" {
		return fmt.Errorf("empty local id for %s", kind)
	}
	state, err := loadState(ctx, s.meta)
	if err != nil {
		return err
	}
	state.addPending(LocalRef{Kind: kind, LocalID: localID})
	return saveState(ctx, s.meta, state)
}

func (s *storageSyncService) Reset(ctx context.Context) error {
	return s.meta.DeletePrefix(ctx, stateKeyPrefix)
}

func (s *storageSyncService) Sync(ctx context.Context) (SyncReport, error) {
	var report SyncReport

	state, err := loadState(ctx, s.meta)
	if err != nil {
		return report, fmt.Errorf("load sync state: %w", err)
	}

	if err := s.pull(ctx, state, &report); err != nil {
		return report, err
	}

	if _, ok := state.identifierFor(LocalRef{Kind: records.KindAccount, LocalID: AccountLocalID}); !ok {
		state.addPending(LocalRef{Kind: records.KindAccount, LocalID: AccountLocalID})
	}

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		n, err := s.groups.ProcessPendingRestores(ctx, tx)
		report.GroupsRestored = n
		return err
	}); err != nil {
		return report, fmt.Errorf("restore groups: %w", err)
	}

	if err := saveState(ctx, s.meta, state); err != nil {
		return report, fmt.Errorf("save sync state: %w", err)
	}

	err = s.push(ctx, state, &report)
	if errors.Is(err, common.ErrVersionConflict) {
		s.logger.Info(ctx, "remote changed during sync, retrying next pass", "version", state.ManifestVersion)
		report.VersionConflict = true
		report.ManifestVersion = state.ManifestVersion
		return report, nil
	}
	if err != nil {
		return report, err
	}

	report.ManifestVersion = state.ManifestVersion
	s.logger.Info(ctx, "storage sync finished",
		"version", report.ManifestVersion,
		"fetched", report.Fetched,
		"merged", report.Merged,
		"invalid", report.Invalid,
		"uploaded", report.Uploaded,
		"deleted", report.Deleted)
	return report, nil
}

// pull merges every remote item this device has not seen yet. Each item is
// merged in its own transaction. Invalid items are queued for deletion.
func (s *storageSyncService) pull(ctx context.Context, state *syncState, report *SyncReport) error {
	manifest, err := s.remote.FetchManifest(ctx, state.ManifestVersion)
	if err != nil {
		return fmt.Errorf("fetch manifest: %w", err)
	}
	if manifest == nil {
		return nil
	}

	inManifest := make(map[string]struct{}, len(manifest.Identifiers))
	var unseen []records.StorageIdentifier
	for _, id := range manifest.Identifiers {
		k := id.Key()
		inManifest[k] = struct{}{}
		if _, ok := state.Records[k]; !ok {
			unseen = append(unseen, id)
		}
	}
	// Identifiers another device removed or replaced.
	for k := range state.Records {
		if _, ok := inManifest[k]; !ok {
			delete(state.Records, k)
		}
	}

	items, err := s.remote.FetchItems(ctx, unseen)
	if err != nil {
		return fmt.Errorf("fetch items: %w", err)
	}
	report.Fetched = len(items)

	for _, item := range items {
		key := item.Identifier.Key()
		if !item.Identifier.IsValid() {
			s.logger.Warn(ctx, "invalid storage identifier", "identifier", item.Identifier.String())
			state.invalid = append(state.invalid, item.Identifier)
			report.Invalid++
			continue
		}
		h, known := s.handlers[item.Identifier.Type]
		if !known {
			state.Records[key] = syncedRecord{Kind: item.Identifier.Type}
			continue
		}

		var out mergeOutcome
		err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			var err error
			out, err = h.merge(ctx, tx, item)
			return err
		})
		if err != nil {
			return fmt.Errorf("merge %s: %w", item.Identifier, err)
		}

		if out.invalid {
			s.logger.Warn(ctx, "remote record is invalid", "identifier", item.Identifier.String())
			state.invalid = append(state.invalid, item.Identifier)
			report.Invalid++
			continue
		}
		report.Merged++

		ref := LocalRef{Kind: item.Identifier.Type, LocalID: out.localID}
		if prev, ok := state.identifierFor(ref); ok {
			// Two identifiers for one local entity; keep the newer and
			// re-upload so the store converges.
			delete(state.Records, prev)
			out.needsUpdate = true
		}
		state.Records[key] = syncedRecord{Kind: ref.Kind, LocalID: ref.LocalID, UnknownFields: out.unknownFields}
		if out.needsUpdate {
			state.addPending(ref)
		}
	}

	state.ManifestVersion = manifest.Version
	return nil
}

// push rebuilds every pending local entity and writes one change set.
func (s *storageSyncService) push(ctx context.Context, state *syncState, report *SyncReport) error {
	if len(state.Pending) == 0 && len(state.invalid) == 0 {
		return nil
	}

	next := state.clone()
	next.Pending = nil
	changes := remote.ChangeSet{}
	for _, id := range state.invalid {
		changes.Deletes = append(changes.Deletes, id)
		delete(next.Records, id.Key())
	}

	err := dbx.WithReadTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		for _, ref := range state.Pending {
			h, ok := s.handlers[ref.Kind]
			if !ok {
				continue
			}
			prevKey, hadPrev := next.identifierFor(ref)
			var unknown []byte
			if hadPrev {
				unknown = next.Records[prevKey].UnknownFields
			}

			item, err := h.build(ctx, tx, ref.LocalID, unknown)
			if err != nil {
				return fmt.Errorf("build %s: %w", ref.key(), err)
			}

			if hadPrev {
				prevID, err := records.ParseStorageIdentifierKey(prevKey)
				if err != nil {
					return err
				}
				changes.Deletes = append(changes.Deletes, prevID)
				delete(next.Records, prevKey)
			}
			if item == nil {
				continue
			}
			changes.Inserts = append(changes.Inserts, *item)
			next.Records[item.Identifier.Key()] = syncedRecord{Kind: ref.Kind, LocalID: ref.LocalID, UnknownFields: unknown}
		}
		return nil
	})
	if err != nil {
		return err
	}

	ids, err := next.identifiers()
	if err != nil {
		return err
	}
	next.ManifestVersion = state.ManifestVersion + 1
	changes.Manifest = records.Manifest{Version: next.ManifestVersion, Identifiers: ids}

	if err := s.remote.WriteChanges(ctx, state.ManifestVersion, changes); err != nil {
		return fmt.Errorf("write changes: %w", err)
	}

	*state = *next
	report.Uploaded = len(changes.Inserts)
	report.Deleted = len(changes.Deletes)
	if err := saveState(ctx, s.meta, state); err != nil {
		return fmt.Errorf("save sync state: %w", err)
	}
	return nil
}
