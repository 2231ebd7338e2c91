package blocklist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/storagesync/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) IsRecipientBlocked(ctx context.Context, recipientID string) (bool, error) {
	return r.isBlocked(ctx, `SELECT 1 FROM blocked_recipients WHERE recipient_id = ?`, recipientID)
}

func (r *SQLiteRepository) SetRecipientBlocked(ctx context.Context, recipientID string, blocked bool) error {
	q := `DELETE FROM blocked_recipients WHERE recipient_id = ?`
	if blocked {
		q = `INSERT OR IGNORE INTO blocked_recipients (recipient_id) VALUES (?)`
	}
	if _, err := r.db.ExecContext(ctx, q, recipientID); err != nil {
		return fmt.Errorf("failed to set blocked state of %s: %w", recipientID, err)
	}
	return nil
}

func (r *SQLiteRepository) IsGroupBlocked(ctx context.Context, groupID []byte) (bool, error) {
	return r.isBlocked(ctx, `SELECT 1 FROM blocked_groups WHERE group_id = ?`, groupID)
}

func (r *SQLiteRepository) SetGroupBlocked(ctx context.Context, groupID []byte, blocked bool) error {
	q := `DELETE FROM blocked_groups WHERE group_id = ?`
	if blocked {
		q = `INSERT OR IGNORE INTO blocked_groups (group_id) VALUES (?)`
	}
	if _, err := r.db.ExecContext(ctx, q, groupID); err != nil {
		return fmt.Errorf("failed to set blocked state of group: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) BlockedRecipientIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT recipient_id FROM blocked_recipients ORDER BY recipient_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list blocked recipients: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan blocked recipient: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *SQLiteRepository) isBlocked(ctx context.Context, query string, arg any) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read blocked state: %w", err)
	}
	return true, nil
}
