package store

import (
	"context"
	"time"
)

// AuditQuery selects audit entries. Zero values do not filter.
type AuditQuery struct {
	ActorID   string
	Actions   []string
	ShareID   string
	RequestID string
	Since     time.Time
	Until     time.Time
}

// AppendAudit inserts an audit entry. The table has no update or delete path.
func (s *Store) AppendAudit(ctx context.Context, e *AuditEntry) error {
	e.Timestamp = e.Timestamp.UTC()
	return s.db.WithContext(ctx).Create(e).Error
}

// QueryAudit returns matching entries in timestamp order.
func (s *Store) QueryAudit(ctx context.Context, q AuditQuery) ([]AuditEntry, error) {
	tx := s.db.WithContext(ctx).Model(&AuditEntry{})
	if q.ActorID != "" {
		tx = tx.Where("actor_id = ?", q.ActorID)
	}
	if len(q.Actions) > 0 {
		tx = tx.Where("action IN ?", q.Actions)
	}
	if q.ShareID != "" {
		tx = tx.Where("share_id = ?", q.ShareID)
	}
	if q.RequestID != "" {
		tx = tx.Where("request_id = ?", q.RequestID)
	}
	if !q.Since.IsZero() {
		tx = tx.Where("occurred_at >= ?", q.Since.UTC())
	}
	if !q.Until.IsZero() {
		tx = tx.Where("occurred_at <= ?", q.Until.UTC())
	}

	var entries []AuditEntry
	if err := tx.Order("occurred_at ASC").Order("seq ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// CountAudit counts entries by actor at or after since.
func (s *Store) CountAudit(ctx context.Context, actorID string, since time.Time) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&AuditEntry{}).
		Where("actor_id = ? AND occurred_at >= ?", actorID, since.UTC()).
		Count(&n).Error
	return n, err
}
