package identities

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

func (r *SQLiteRepository) Get(ctx context.Context, recipientID string) (*models.IdentityRecord, error) {
	var rec models.IdentityRecord
	err := r.db.QueryRowContext(ctx,
		`SELECT identity_key, verification_state FROM identities WHERE recipient_id = ?`, recipientID).
		Scan(&rec.Key, &rec.State)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get identity of %s: %w", recipientID, err)
	}
	return &rec, nil
}

func (r *SQLiteRepository) SaveKey(ctx context.Context, recipientID string, key []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO identities (recipient_id, identity_key, verification_state) VALUES (?, ?, ?)
		ON CONFLICT(recipient_id) DO UPDATE
		SET verification_state = CASE
		        WHEN identities.identity_key = excluded.identity_key THEN identities.verification_state
		        ELSE excluded.verification_state
		    END,
		    identity_key = excluded.identity_key`,
		recipientID, key, models.VerificationStateDefault)
	if err != nil {
		return fmt.Errorf("failed to save identity of %s: %w", recipientID, err)
	}
	return nil
}

func (r *SQLiteRepository) SetVerificationState(ctx context.Context, recipientID string, state models.VerificationState) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE identities SET verification_state = ? WHERE recipient_id = ?`, state, recipientID)
	if err != nil {
		return fmt.Errorf("failed to set verification state of %s: %w", recipientID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("identity of %s: %w", recipientID, common.ErrorNotFound)
	}
	return nil
}
