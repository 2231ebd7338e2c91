package contacts

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

func (r *SQLiteRepository) Get(ctx context.Context, phoneNumber string) (*models.SystemContact, error) {
	var c models.SystemContact
	err := r.db.QueryRowContext(ctx, `
		SELECT phone_number, given_name, family_name, nickname, full_name, from_local_address_book
		FROM system_contacts WHERE phone_number = ?`, phoneNumber).
		Scan(&c.PhoneNumber, &c.GivenName, &c.FamilyName, &c.Nickname, &c.FullName, &c.FromLocalAddressBook)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get system contact: %w", err)
	}
	return &c, nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, c *models.SystemContact) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO system_contacts
		    (phone_number, given_name, family_name, nickname, full_name, from_local_address_book)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.PhoneNumber, c.GivenName, c.FamilyName, c.Nickname, c.FullName, c.FromLocalAddressBook)
	if err != nil {
		return fmt.Errorf("failed to insert system contact: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Remove(ctx context.Context, phoneNumber string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM system_contacts WHERE phone_number = ?`, phoneNumber); err != nil {
		return fmt.Errorf("failed to remove system contact: %w", err)
	}
	return nil
}
