package profiles

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

func (r *SQLiteRepository) Get(ctx context.Context, recipientID string) (*models.Profile, error) {
	var (
		p                     models.Profile
		given, family, avatar sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT profile_key, given_name, family_name, avatar_url
		FROM profiles WHERE recipient_id = ?`, recipientID).
		Scan(&p.ProfileKey, &given, &family, &avatar)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile %s: %w", recipientID, err)
	}
	p.GivenName = dbx.StringPtr(given)
	p.FamilyName = dbx.StringPtr(family)
	p.AvatarURL = dbx.StringPtr(avatar)
	return &p, nil
}

func (r *SQLiteRepository) SetProfileKey(ctx context.Context, recipientID string, key []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (recipient_id, profile_key) VALUES (?, ?)
		ON CONFLICT(recipient_id) DO UPDATE SET profile_key = excluded.profile_key`,
		recipientID, key)
	if err != nil {
		return fmt.Errorf("failed to set profile key %s: %w", recipientID, err)
	}
	return nil
}

func (r *SQLiteRepository) SetNames(ctx context.Context, recipientID string, given, family *string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (recipient_id, given_name, family_name) VALUES (?, ?, ?)
		ON CONFLICT(recipient_id) DO UPDATE
		SET given_name = excluded.given_name, family_name = excluded.family_name`,
		recipientID, dbx.NullString(given), dbx.NullString(family))
	if err != nil {
		return fmt.Errorf("failed to set profile names %s: %w", recipientID, err)
	}
	return nil
}

func (r *SQLiteRepository) SetNamesAndAvatar(ctx context.Context, recipientID string, given, family, avatarURL *string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (recipient_id, given_name, family_name, avatar_url) VALUES (?, ?, ?, ?)
		ON CONFLICT(recipient_id) DO UPDATE
		SET given_name = excluded.given_name,
		    family_name = excluded.family_name,
		    avatar_url = excluded.avatar_url`,
		recipientID, dbx.NullString(given), dbx.NullString(family), dbx.NullString(avatarURL))
	if err != nil {
		return fmt.Errorf("failed to set profile %s: %w", recipientID, err)
	}
	return nil
}

func (r *SQLiteRepository) IsRecipientWhitelisted(ctx context.Context, recipientID string) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM whitelisted_recipients WHERE recipient_id = ?`, recipientID)
}

func (r *SQLiteRepository) SetRecipientWhitelisted(ctx context.Context, recipientID string, whitelisted bool) error {
	if whitelisted {
		return r.exec(ctx, `INSERT OR IGNORE INTO whitelisted_recipients (recipient_id) VALUES (?)`, recipientID)
	}
	return r.exec(ctx, `DELETE FROM whitelisted_recipients WHERE recipient_id = ?`, recipientID)
}

func (r *SQLiteRepository) IsGroupWhitelisted(ctx context.Context, groupID []byte) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM whitelisted_groups WHERE group_id = ?`, groupID)
}

func (r *SQLiteRepository) SetGroupWhitelisted(ctx context.Context, groupID []byte, whitelisted bool) error {
	if whitelisted {
		return r.exec(ctx, `INSERT OR IGNORE INTO whitelisted_groups (group_id) VALUES (?)`, groupID)
	}
	return r.exec(ctx, `DELETE FROM whitelisted_groups WHERE group_id = ?`, groupID)
}

func (r *SQLiteRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read whitelist: %w", err)
	}
	return true, nil
}

func (r *SQLiteRepository) exec(ctx context.Context, query string, arg any) error {
	if _, err := r.db.ExecContext(ctx, query, arg); err != nil {
		return fmt.Errorf("failed to update whitelist: %w", err)
	}
	return nil
}
