package localstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/storagesync/internal/client/models"
	"github.com/dmitrijs2005/storagesync/internal/client/repositories/recipients"
	"github.com/dmitrijs2005/storagesync/internal/common"
	"github.com/dmitrijs2005/storagesync/internal/dbx"
)

// MergeFromStorageService resolves the identifiers of a contact record to a
// single recipient. Identifiers held by other recipients are moved over; a
// PNI or phone number already bound to a different ACI is split off into a
// new recipient instead of overwriting that ACI. Nil identifiers never
// clear what is stored.
func (s *Store) MergeFromStorageService(ctx context.Context, tx dbx.DBTX, local models.LocalIdentifiers, aci, pni *uuid.UUID, phoneNumber *string) (*models.Recipient, error) {
	if local.ContainsAnyOf(aci, pni, phoneNumber) {
		return nil, fmt.Errorf("refusing to merge identifiers of the local account")
	}
	repo := recipients.NewSQLiteRepository(tx)

	var byACI, byPNI, byPhone *models.Recipient
	var err error
	if aci != nil {
		if byACI, err = repo.GetByACI(ctx, *aci); err != nil {
			return nil, err
		}
	}
	if pni != nil {
		if byPNI, err = repo.GetByPNI(ctx, *pni); err != nil {
			return nil, err
		}
	}
	if phoneNumber != nil {
		if byPhone, err = repo.GetByPhoneNumber(ctx, *phoneNumber); err != nil {
			return nil, err
		}
	}

	target := byACI
	if target == nil {
		for _, c := range []*models.Recipient{byPNI, byPhone} {
			if c != nil && (aci == nil || c.ACI == nil) {
				target = c
				break
			}
		}
	}

	// Strip moved identifiers from their previous owners first so the
	// unique constraints hold when target is written.
	if pni != nil && byPNI != nil && !sameRecipient(byPNI, target) {
		byPNI.PNI = nil
		if err := repo.Update(ctx, byPNI); err != nil {
			return nil, fmt.Errorf("move pni: %w", err)
		}
		s.logger.Debug(ctx, "moved pni between recipients", "from", byPNI.ID)
	}
	if phoneNumber != nil && byPhone != nil && !sameRecipient(byPhone, target) {
		if sameRecipient(byPhone, byPNI) {
			byPhone = byPNI
		}
		byPhone.PhoneNumber = nil
		if err := repo.Update(ctx, byPhone); err != nil {
			return nil, fmt.Errorf("move phone number: %w", err)
		}
		s.logger.Debug(ctx, "moved phone number between recipients", "from", byPhone.ID)
	}

	if target == nil {
		target = &models.Recipient{ACI: aci, PNI: pni, PhoneNumber: phoneNumber, IsRegistered: true}
		if err := repo.Insert(ctx, target); err != nil {
			return nil, err
		}
		return target, nil
	}

	changed := false
	if aci != nil && !equalUUID(target.ACI, aci) {
		target.ACI, changed = aci, true
	}
	if pni != nil && !equalUUID(target.PNI, pni) {
		target.PNI, changed = pni, true
	}
	if phoneNumber != nil && (target.PhoneNumber == nil || *target.PhoneNumber != *phoneNumber) {
		target.PhoneNumber, changed = phoneNumber, true
	}
	if changed {
		if err := repo.Update(ctx, target); err != nil {
			return nil, err
		}
	}
	return target, nil
}

// SplitUnregisteredRecipient moves the ACI of an unregistered recipient
// onto a recipient of its own, leaving the phone number and PNI (and any
// state attached to them) where they are. The ACI-only recipient is
// returned. Recipients that only have an ACI are returned unchanged.
func (s *Store) SplitUnregisteredRecipient(ctx context.Context, tx dbx.DBTX, local models.LocalIdentifiers, r *models.Recipient) (*models.Recipient, error) {
	if r.ACI == nil || (r.PNI == nil && r.PhoneNumber == nil) {
		return r, nil
	}
	if local.ContainsAnyOf(r.ACI, r.PNI, r.PhoneNumber) {
		return r, nil
	}
	repo := recipients.NewSQLiteRepository(tx)

	// Registration state comes from the stored row, not from r.
	current, err := repo.GetByID(ctx, r.ID)
	if err != nil {
		return nil, fmt.Errorf("split recipient %s: %w", r.ID, err)
	}
	if current == nil {
		return nil, fmt.Errorf("split recipient %s: %w", r.ID, common.ErrorNotFound)
	}

	aci := *r.ACI
	current.ACI = nil
	if err := repo.Update(ctx, current); err != nil {
		return nil, fmt.Errorf("split recipient %s: %w", r.ID, err)
	}
	r.ACI = nil

	split := &models.Recipient{ACI: &aci, IsRegistered: false, UnregisteredAt: current.UnregisteredAt}
	if split.UnregisteredAt == nil {
		split.UnregisteredAt = r.UnregisteredAt
	}
	if err := repo.Insert(ctx, split); err != nil {
		return nil, fmt.Errorf("split recipient %s: %w", r.ID, err)
	}
	s.logger.Info(ctx, "split unregistered recipient", "recipient_id", r.ID, "aci_recipient_id", split.ID)
	return split, nil
}

func sameRecipient(a, b *models.Recipient) bool {
	return a != nil && b != nil && a.ID == b.ID
}

func equalUUID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
