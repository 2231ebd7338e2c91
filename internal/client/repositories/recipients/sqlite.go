package recipients

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

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectRecipient = `SELECT id, aci, pni, phone_number, is_registered, unregistered_at FROM recipients`

func (r *SQLiteRepository) getBy(ctx context.Context, column string, value any) (*models.Recipient, error) {
	var (
		rec            models.Recipient
		aci, pni, e164 sql.NullString
		unregisteredAt sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, selectRecipient+` WHERE `+column+` = ?`, value).
		Scan(&rec.ID, &aci, &pni, &e164, &rec.IsRegistered, &unregisteredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select recipient by %s: %w", column, err)
	}
	rec.ACI = dbx.UUIDPtr(aci)
	rec.PNI = dbx.UUIDPtr(pni)
	rec.PhoneNumber = dbx.StringPtr(e164)
	rec.UnregisteredAt = dbx.Uint64Ptr(unregisteredAt)
	return &rec, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Recipient, error) {
	return r.getBy(ctx, "id", id)
}

func (r *SQLiteRepository) GetByACI(ctx context.Context, aci uuid.UUID) (*models.Recipient, error) {
	return r.getBy(ctx, "aci", aci.String())
}

func (r *SQLiteRepository) GetByPNI(ctx context.Context, pni uuid.UUID) (*models.Recipient, error) {
	return r.getBy(ctx, "pni", pni.String())
}

func (r *SQLiteRepository) GetByPhoneNumber(ctx context.Context, phoneNumber string) (*models.Recipient, error) {
	return r.getBy(ctx, "phone_number", phoneNumber)
}

func (r *SQLiteRepository) Insert(ctx context.Context, rec *models.Recipient) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO recipients (id, aci, pni, phone_number, is_registered, unregistered_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, dbx.NullUUID(rec.ACI), dbx.NullUUID(rec.PNI), dbx.NullString(rec.PhoneNumber),
		rec.IsRegistered, dbx.NullUint64(rec.UnregisteredAt))
	if err != nil {
		return fmt.Errorf("failed to insert recipient: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, rec *models.Recipient) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE recipients
		SET aci = ?, pni = ?, phone_number = ?, is_registered = ?, unregistered_at = ?
		WHERE id = ?`,
		dbx.NullUUID(rec.ACI), dbx.NullUUID(rec.PNI), dbx.NullString(rec.PhoneNumber),
		rec.IsRegistered, dbx.NullUint64(rec.UnregisteredAt), rec.ID)
	if err != nil {
		return fmt.Errorf("failed to update recipient: %w", err)
	}
	return requireOneRow(res, rec.ID)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM recipients WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete recipient: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM recipients ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipients: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *SQLiteRepository) SetRegistered(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE recipients SET is_registered = 1, unregistered_at = NULL WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark recipient registered: %w", err)
	}
	return requireOneRow(res, id)
}

func (r *SQLiteRepository) SetUnregistered(ctx context.Context, id string, unregisteredAt uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE recipients SET is_registered = 0, unregistered_at = ? WHERE id = ?`, int64(unregisteredAt), id)
	if err != nil {
		return fmt.Errorf("failed to mark recipient unregistered: %w", err)
	}
	return requireOneRow(res, id)
}

func (r *SQLiteRepository) IsHidden(ctx context.Context, id string) (bool, error) {
	var hidden bool
	err := r.db.QueryRowContext(ctx, `SELECT hidden FROM recipients WHERE id = ?`, id).Scan(&hidden)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read hidden flag: %w", err)
	}
	return hidden, nil
}

func (r *SQLiteRepository) SetHidden(ctx context.Context, id string, hidden bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE recipients SET hidden = ? WHERE id = ?`, hidden, id)
	if err != nil {
		return fmt.Errorf("failed to set hidden flag: %w", err)
	}
	return requireOneRow(res, id)
}

func (r *SQLiteRepository) Username(ctx context.Context, aci uuid.UUID) (*string, error) {
	var username string
	err := r.db.QueryRowContext(ctx, `SELECT username FROM usernames WHERE aci = ?`, aci.String()).Scan(&username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select username: %w", err)
	}
	return &username, nil
}

func (r *SQLiteRepository) SetUsername(ctx context.Context, aci uuid.UUID, username *string) error {
	var err error
	if username == nil {
		_, err = r.db.ExecContext(ctx, `DELETE FROM usernames WHERE aci = ?`, aci.String())
	} else {
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO usernames (aci, username) VALUES (?, ?)
			ON CONFLICT(aci) DO UPDATE SET username = excluded.username`, aci.String(), *username)
	}
	if err != nil {
		return fmt.Errorf("failed to save username: %w", err)
	}
	return nil
}

func requireOneRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("recipient %s: %w", id, common.ErrorNotFound)
	}
	return nil
}
