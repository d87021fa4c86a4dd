package store

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// ShareQuery selects shares for listing. Empty fields do not filter.
type ShareQuery struct {
	OwnerID     string
	RecipientID string
	Statuses    []string
}

// InsertShare writes a new share row.
func (s *Store) InsertShare(ctx context.Context, sh *Share) error {
	return s.db.WithContext(ctx).Create(sh).Error
}

// GetShare reads a share without locking it.
func (s *Store) GetShare(ctx context.Context, shareID string) (*Share, error) {
	var sh Share
	if err := s.db.WithContext(ctx).Where("share_id = ?", shareID).First(&sh).Error; err != nil {
		return nil, notFound(err)
	}
	return &sh, nil
}

// LockShare reads a share and holds its row lock until the transaction ends.
// Call it only on a Store obtained from WithTx.
func (s *Store) LockShare(ctx context.Context, shareID string) (*Share, error) {
	var sh Share
	if err := s.forUpdate(ctx).Where("share_id = ?", shareID).First(&sh).Error; err != nil {
		return nil, notFound(err)
	}
	return &sh, nil
}

// RecordShareAccess bumps the access counters only if the row still has the
// given status and version. It reports false when another writer got there first.
func (s *Store) RecordShareAccess(ctx context.Context, shareID string, version int64, requiredStatus string, at time.Time) (bool, error) {
	res := s.db.WithContext(ctx).Model(&Share{}).
		Where("share_id = ? AND status = ? AND version = ?", shareID, requiredStatus, version).
		Updates(map[string]any{
			"access_count":  gorm.Expr("access_count + 1"),
			"last_accessed": at,
			"version":       gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// SetShareStatus overwrites the stored status.
func (s *Store) SetShareStatus(ctx context.Context, shareID, status string) error {
	res := s.db.WithContext(ctx).Model(&Share{}).
		Where("share_id = ?", shareID).
		Updates(map[string]any{
			"status":  status,
			"version": gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListShares returns matching shares, newest first.
func (s *Store) ListShares(ctx context.Context, q ShareQuery) ([]Share, error) {
	tx := s.db.WithContext(ctx).Model(&Share{})
	if q.OwnerID != "" {
		tx = tx.Where("owner_id = ?", q.OwnerID)
	}
	if q.RecipientID != "" {
		tx = tx.Where("recipient_id = ?", q.RecipientID)
	}
	if len(q.Statuses) > 0 {
		tx = tx.Where("status IN ?", q.Statuses)
	}

	var shares []Share
	if err := tx.Order("created_at DESC").Order("share_id ASC").Find(&shares).Error; err != nil {
		return nil, err
	}
	return shares, nil
}
