package stories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/storagesync/internal/client/models"
	"github.com/dmitrijs2005/storagesync/internal/common"
	"github.com/dmitrijs2005/storagesync/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, id uuid.UUID) (*models.PrivateStoryList, error) {
	list := models.PrivateStoryList{ID: id}
	err := r.db.QueryRowContext(ctx,
		`SELECT name, allows_replies, mode FROM story_lists WHERE id = ?`, id.String()).
		Scan(&list.Name, &list.AllowsReplies, &list.Mode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get story list %s: %w", id, err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT service_id FROM story_list_members WHERE list_id = ? ORDER BY position`, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get members of %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		sid, err := models.ParseServiceID(raw)
		if err != nil {
			return nil, fmt.Errorf("story list %s: %w", id, err)
		}
		list.Members = append(list.Members, sid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return &list, nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, list *models.PrivateStoryList) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO story_lists (id, name, allows_replies, mode) VALUES (?, ?, ?, ?)`,
		list.ID.String(), list.Name, list.AllowsReplies, list.Mode)
	if err != nil {
		return fmt.Errorf("failed to insert story list %s: %w", list.ID, err)
	}
	return r.replaceMembers(ctx, list)
}

func (r *SQLiteRepository) Update(ctx context.Context, list *models.PrivateStoryList) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE story_lists SET name = ?, allows_replies = ?, mode = ? WHERE id = ?`,
		list.Name, list.AllowsReplies, list.Mode, list.ID.String())
	if err != nil {
		return fmt.Errorf("failed to update story list %s: %w", list.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("story list %s: %w", list.ID, common.ErrorNotFound)
	}
	return r.replaceMembers(ctx, list)
}

func (r *SQLiteRepository) replaceMembers(ctx context.Context, list *models.PrivateStoryList) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM story_list_members WHERE list_id = ?`, list.ID.String()); err != nil {
		return fmt.Errorf("failed to clear members of %s: %w", list.ID, err)
	}
	for i, m := range list.Members {
		if _, err := r.db.ExecContext(ctx, `
			INSERT OR IGNORE INTO story_list_members (list_id, service_id, position)
			VALUES (?, ?, ?)`, list.ID.String(), m.String(), i); err != nil {
			return fmt.Errorf("failed to add member to %s: %w", list.ID, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM story_list_members WHERE list_id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete members of %s: %w", id, err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM story_lists WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete story list %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id FROM story_lists
		UNION
		SELECT id FROM story_list_tombstones
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list story lists: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan story list id: %w", err)
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("bad story list id %q: %w", raw, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *SQLiteRepository) DeletedAt(ctx context.Context, id uuid.UUID) (uint64, error) {
	var at int64
	err := r.db.QueryRowContext(ctx,
		`SELECT deleted_at FROM story_list_tombstones WHERE id = ?`, id.String()).Scan(&at)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get tombstone of %s: %w", id, err)
	}
	return uint64(at), nil
}

func (r *SQLiteRepository) RecordDeletion(ctx context.Context, id uuid.UUID, deletedAt uint64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO story_list_tombstones (id, deleted_at) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET deleted_at = excluded.deleted_at`,
		id.String(), int64(deletedAt))
	if err != nil {
		return fmt.Errorf("failed to record deletion of %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) ContactStoryHidden(ctx context.Context, aci uuid.UUID) (*bool, error) {
	return r.hidden(ctx, `SELECT hidden FROM contact_story_contexts WHERE aci = ?`, aci.String())
}

func (r *SQLiteRepository) SetContactStoryHidden(ctx context.Context, aci uuid.UUID, hidden bool) error {
	return r.setHidden(ctx, `
		INSERT INTO contact_story_contexts (aci, hidden) VALUES (?, ?)
		ON CONFLICT(aci) DO UPDATE SET hidden = excluded.hidden`, aci.String(), hidden)
}

func (r *SQLiteRepository) GroupStoryHidden(ctx context.Context, groupID []byte) (*bool, error) {
	return r.hidden(ctx, `SELECT hidden FROM group_story_contexts WHERE group_id = ?`, groupID)
}

func (r *SQLiteRepository) SetGroupStoryHidden(ctx context.Context, groupID []byte, hidden bool) error {
	return r.setHidden(ctx, `
		INSERT INTO group_story_contexts (group_id, hidden) VALUES (?, ?)
		ON CONFLICT(group_id) DO UPDATE SET hidden = excluded.hidden`, groupID, hidden)
}

func (r *SQLiteRepository) hidden(ctx context.Context, query string, key any) (*bool, error) {
	var hidden bool
	err := r.db.QueryRowContext(ctx, query, key).Scan(&hidden)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get story context: %w", err)
	}
	return &hidden, nil
}

func (r *SQLiteRepository) setHidden(ctx context.Context, query string, key any, hidden bool) error {
	if _, err := r.db.ExecContext(ctx, query, key, hidden); err != nil {
		return fmt.Errorf("failed to set story context: %w", err)
	}
	return nil
}
