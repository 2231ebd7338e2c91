package groups

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/storagesync/internal/client/models"
	"github.com/dmitrijs2005/storagesync/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) AddGroupID(ctx context.Context, groupID []byte) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO group_ids (group_id) VALUES (?)`, groupID); err != nil {
		return fmt.Errorf("failed to add group id: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) HasGroupID(ctx context.Context, groupID []byte) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM group_ids WHERE group_id = ?`, groupID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up group id: %w", err)
	}
	return true, nil
}

func (r *SQLiteRepository) PendingRestore(ctx context.Context, masterKey []byte) (*models.PendingGroupRestore, error) {
	var mode sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT story_view_mode FROM pending_group_restores WHERE master_key = ?`, masterKey).Scan(&mode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending restore: %w", err)
	}
	return pendingRestore(masterKey, mode), nil
}

func (r *SQLiteRepository) SavePendingRestore(ctx context.Context, restore models.PendingGroupRestore) error {
	var mode sql.NullInt64
	if restore.StoryViewMode != nil {
		mode = sql.NullInt64{Int64: int64(*restore.StoryViewMode), Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pending_group_restores (master_key, story_view_mode) VALUES (?, ?)
		ON CONFLICT(master_key) DO UPDATE SET story_view_mode = excluded.story_view_mode`,
		restore.MasterKey, mode)
	if err != nil {
		return fmt.Errorf("failed to save pending restore: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeletePendingRestore(ctx context.Context, masterKey []byte) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM pending_group_restores WHERE master_key = ?`, masterKey); err != nil {
		return fmt.Errorf("failed to delete pending restore: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) PendingRestores(ctx context.Context) ([]models.PendingGroupRestore, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT master_key, story_view_mode FROM pending_group_restores ORDER BY master_key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending restores: %w", err)
	}
	defer rows.Close()

	var out []models.PendingGroupRestore
	for rows.Next() {
		var (
			key  []byte
			mode sql.NullInt64
		)
		if err := rows.Scan(&key, &mode); err != nil {
			return nil, fmt.Errorf("failed to scan pending restore: %w", err)
		}
		out = append(out, *pendingRestore(key, mode))
	}
	return out, rows.Err()
}

func pendingRestore(masterKey []byte, mode sql.NullInt64) *models.PendingGroupRestore {
	p := &models.PendingGroupRestore{MasterKey: masterKey}
	if mode.Valid {
		m := models.StoryViewMode(mode.Int64)
		p.StoryViewMode = &m
	}
	return p
}
