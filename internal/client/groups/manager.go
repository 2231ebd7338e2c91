// Package groups is the local group collaborator: it validates master
// keys, derives group ids, and queues groups seen remotely until they are
// created locally.
package groups

import (
	"bytes"
	"context"
	"fmt"

	"github.com/dmitrijs2005/storagesync/internal/client/models"
	grouprepo "github.com/dmitrijs2005/storagesync/internal/client/repositories/groups"
	"github.com/dmitrijs2005/storagesync/internal/client/repositories/threads"
	"github.com/dmitrijs2005/storagesync/internal/cryptox"
	"github.com/dmitrijs2005/storagesync/internal/dbx"
	"github.com/dmitrijs2005/storagesync/internal/logging"
)

type Manager struct {
	logger logging.Logger
}

func NewManager(logger logging.Logger) *Manager {
	return &Manager{logger: logger}
}

func (m *Manager) IsValidMasterKey(masterKey []byte) bool {
	return cryptox.IsValidGroupMasterKey(masterKey)
}

func (m *Manager) GroupID(masterKey []byte) ([]byte, error) {
	return cryptox.DeriveGroupID(masterKey)
}

func (m *Manager) EnsureGroupIDMapping(ctx context.Context, tx dbx.DBTX, groupID []byte) error {
	return grouprepo.NewSQLiteRepository(tx).AddGroupID(ctx, groupID)
}

// RestoreGroup queues the group for local creation. A group that already
// has a thread is left alone.
func (m *Manager) RestoreGroup(ctx context.Context, tx dbx.DBTX, restore models.PendingGroupRestore) error {
	groupID, err := cryptox.DeriveGroupID(restore.MasterKey)
	if err != nil {
		return err
	}
	thread, err := threads.NewSQLiteRepository(tx).GroupThread(ctx, groupID)
	if err != nil {
		return err
	}
	if thread != nil {
		return nil
	}
	restore.MasterKey = bytes.Clone(restore.MasterKey)
	return grouprepo.NewSQLiteRepository(tx).SavePendingRestore(ctx, restore)
}

func (m *Manager) PendingRestore(ctx context.Context, tx dbx.DBTX, masterKey []byte) (*models.PendingGroupRestore, error) {
	return grouprepo.NewSQLiteRepository(tx).PendingRestore(ctx, masterKey)
}

// ProcessPendingRestores creates a thread for every queued group and
// clears the queue. It returns the number of groups created.
func (m *Manager) ProcessPendingRestores(ctx context.Context, tx dbx.DBTX) (int, error) {
	repo := grouprepo.NewSQLiteRepository(tx)
	threadRepo := threads.NewSQLiteRepository(tx)

	pending, err := repo.PendingRestores(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, p := range pending {
		groupID, err := cryptox.DeriveGroupID(p.MasterKey)
		if err != nil {
			m.logger.Warn(ctx, "dropping pending restore with bad master key", "error", err)
			if err := repo.DeletePendingRestore(ctx, p.MasterKey); err != nil {
				return created, err
			}
			continue
		}

		mode := models.StoryViewModeDefault
		if p.StoryViewMode != nil {
			mode = *p.StoryViewMode
		}
		if _, err := threadRepo.CreateGroupThread(ctx, groupID, p.MasterKey, mode); err != nil {
			return created, fmt.Errorf("restore group: %w", err)
		}
		if err := repo.AddGroupID(ctx, groupID); err != nil {
			return created, err
		}
		if err := repo.DeletePendingRestore(ctx, p.MasterKey); err != nil {
			return created, err
		}
		created++
	}
	if created > 0 {
		m.logger.Info(ctx, "restored groups", "count", created)
	}
	return created, nil
}
