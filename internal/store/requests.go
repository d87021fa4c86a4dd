package store

import (
	"context"
	"time"
)

// RequestQuery selects requests for listing. Empty fields do not filter.
type RequestQuery struct {
	RequesterID string
	OwnerID     string
	Status      string
}

// InsertRequest writes a new request row.
func (s *Store) InsertRequest(ctx context.Context, r *ShareRequest) error {
	return s.db.WithContext(ctx).Create(r).Error
}

// GetRequest reads a request without locking it.
func (s *Store) GetRequest(ctx context.Context, requestID string) (*ShareRequest, error) {
	var r ShareRequest
	if err := s.db.WithContext(ctx).Where("request_id = ?", requestID).First(&r).Error; err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

// LockRequest reads a request and holds its row lock until the transaction ends.
func (s *Store) LockRequest(ctx context.Context, requestID string) (*ShareRequest, error) {
	var r ShareRequest
	if err := s.forUpdate(ctx).Where("request_id = ?", requestID).First(&r).Error; err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

// ResolveRequest moves a request out of fromStatus. It reports false if the
// request was no longer in fromStatus, which makes resolution happen once.
func (s *Store) ResolveRequest(ctx context.Context, requestID, fromStatus, toStatus, shareID string, at time.Time) (bool, error) {
	res := s.db.WithContext(ctx).Model(&ShareRequest{}).
		Where("request_id = ? AND status = ?", requestID, fromStatus).
		Updates(map[string]any{
			"status":       toStatus,
			"share_id":     shareID,
			"responded_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ListRequests returns matching requests, newest first.
func (s *Store) ListRequests(ctx context.Context, q RequestQuery) ([]ShareRequest, error) {
	tx := s.db.WithContext(ctx).Model(&ShareRequest{})
	if q.RequesterID != "" {
		tx = tx.Where("requester_id = ?", q.RequesterID)
	}
	if q.OwnerID != "" {
		tx = tx.Where("owner_id = ?", q.OwnerID)
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}

	var requests []ShareRequest
	if err := tx.Order("created_at DESC").Order("request_id ASC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}
