package threads

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

func (r *SQLiteRepository) ContactThread(ctx context.Context, recipientID string) (*models.Thread, error) {
	t := models.Thread{RecipientID: recipientID}
	err := r.db.QueryRowContext(ctx, `SELECT id FROM threads WHERE recipient_id = ?`, recipientID).Scan(&t.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get thread of %s: %w", recipientID, err)
	}
	return &t, nil
}

func (r *SQLiteRepository) GetOrCreateContactThread(ctx context.Context, recipientID string) (*models.Thread, error) {
	t, err := r.ContactThread(ctx, recipientID)
	if err != nil || t != nil {
		return t, err
	}
	t = &models.Thread{ID: uuid.NewString(), RecipientID: recipientID}
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO threads (id, recipient_id) VALUES (?, ?)`, t.ID, recipientID); err != nil {
		return nil, fmt.Errorf("failed to create thread of %s: %w", recipientID, err)
	}
	return t, nil
}

func (r *SQLiteRepository) GroupThread(ctx context.Context, groupID []byte) (*models.GroupThread, error) {
	t := models.GroupThread{Thread: models.Thread{GroupID: groupID}}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, master_key, story_view_mode, mention_mode
		FROM threads WHERE group_id = ?`, groupID).
		Scan(&t.ID, &t.MasterKey, &t.StoryViewMode, &t.MentionMode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group thread: %w", err)
	}
	return &t, nil
}

func (r *SQLiteRepository) CreateGroupThread(ctx context.Context, groupID, masterKey []byte, mode models.StoryViewMode) (*models.GroupThread, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO threads (id, group_id, master_key, story_view_mode) VALUES (?, ?, ?, ?)
		ON CONFLICT(group_id) DO NOTHING`,
		models.GroupThreadID(groupID), groupID, masterKey, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to create group thread: %w", err)
	}
	return r.GroupThread(ctx, groupID)
}

func (r *SQLiteRepository) SetStoryViewMode(ctx context.Context, threadID string, mode models.StoryViewMode) error {
	return r.updateThread(ctx, `UPDATE threads SET story_view_mode = ? WHERE id = ?`, mode, threadID)
}

func (r *SQLiteRepository) SetMentionMode(ctx context.Context, threadID string, mode models.MentionMode) error {
	return r.updateThread(ctx, `UPDATE threads SET mention_mode = ? WHERE id = ?`, mode, threadID)
}

func (r *SQLiteRepository) updateThread(ctx context.Context, query string, value any, threadID string) error {
	res, err := r.db.ExecContext(ctx, query, value, threadID)
	if err != nil {
		return fmt.Errorf("failed to update thread %s: %w", threadID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("thread %s: %w", threadID, common.ErrorNotFound)
	}
	return nil
}

func (r *SQLiteRepository) AssociatedData(ctx context.Context, threadID string) (models.ThreadAssociatedData, error) {
	var (
		d     models.ThreadAssociatedData
		muted int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT is_archived, is_marked_unread, muted_until
		FROM thread_associated_data WHERE thread_id = ?`, threadID).
		Scan(&d.IsArchived, &d.IsMarkedUnread, &muted)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ThreadAssociatedData{}, nil
	}
	if err != nil {
		return d, fmt.Errorf("failed to get associated data of %s: %w", threadID, err)
	}
	d.MutedUntil = uint64(muted)
	return d, nil
}

func (r *SQLiteRepository) SetAssociatedData(ctx context.Context, threadID string, data models.ThreadAssociatedData) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO thread_associated_data (thread_id, is_archived, is_marked_unread, muted_until)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(thread_id) DO UPDATE
		SET is_archived = excluded.is_archived,
		    is_marked_unread = excluded.is_marked_unread,
		    muted_until = excluded.muted_until`,
		threadID, data.IsArchived, data.IsMarkedUnread, int64(data.MutedUntil))
	if err != nil {
		return fmt.Errorf("failed to set associated data of %s: %w", threadID, err)
	}
	return nil
}
