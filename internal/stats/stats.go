package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/PolarWolf314/credshare/internal/shares"
	"github.com/PolarWolf314/credshare/internal/store"
)

// DefaultWindow is the trailing period counted as recent activity.
const DefaultWindow = 7 * 24 * time.Hour

// Source is the read-only store surface a report needs.
type Source interface {
	ListShares(ctx context.Context, q store.ShareQuery) ([]store.Share, error)
	ListRequests(ctx context.Context, q store.RequestQuery) ([]store.ShareRequest, error)
	CountAudit(ctx context.Context, actorID string, since time.Time) (int64, error)
}

// StatusCounts tallies shares by derived status.
type StatusCounts struct {
	Active  int `json:"active"`
	Revoked int `json:"revoked"`
	Expired int `json:"expired"`
}

// Total is the number of shares counted.
func (c StatusCounts) Total() int {
	return c.Active + c.Revoked + c.Expired
}

func (c *StatusCounts) add(s shares.Status) {
	switch s {
	case shares.StatusActive:
		c.Active++
	case shares.StatusRevoked:
		c.Revoked++
	case shares.StatusExpired:
		c.Expired++
	case shares.StatusPending:
		// Shares are never stored as pending.
	}
}

// Report summarizes one user's sharing activity as of GeneratedAt.
type Report struct {
	UserID          string        `json:"user_id"`
	Owned           StatusCounts  `json:"owned"`
	Received        StatusCounts  `json:"received"`
	RecentActivity  int64         `json:"recent_activity"`
	Window          time.Duration `json:"window"`
	PendingIncoming int           `json:"pending_incoming"`
	PendingOutgoing int           `json:"pending_outgoing"`
	GeneratedAt     time.Time     `json:"generated_at"`
}

// Generate builds a report for userID. Recent activity counts the audit
// entries the user made in the window ending at now. A zero window means
// DefaultWindow.
func Generate(ctx context.Context, src Source, userID string, window time.Duration, now time.Time) (*Report, error) {
	if window <= 0 {
		window = DefaultWindow
	}
	now = now.UTC()
	r := &Report{UserID: userID, Window: window, GeneratedAt: now}

	owned, err := src.ListShares(ctx, store.ShareQuery{OwnerID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to count owned shares: %w", err)
	}
	for _, sh := range owned {
		r.Owned.add(shares.EffectiveStatus(shares.Status(sh.Status), sh.ExpiresAt, now))
	}

	received, err := src.ListShares(ctx, store.ShareQuery{RecipientID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to count received shares: %w", err)
	}
	for _, sh := range received {
		r.Received.add(shares.EffectiveStatus(shares.Status(sh.Status), sh.ExpiresAt, now))
	}

	if r.RecentActivity, err = src.CountAudit(ctx, userID, now.Add(-window)); err != nil {
		return nil, fmt.Errorf("failed to count recent activity: %w", err)
	}

	incoming, err := src.ListRequests(ctx, store.RequestQuery{OwnerID: userID, Status: "pending"})
	if err != nil {
		return nil, fmt.Errorf("failed to count pending requests: %w", err)
	}
	r.PendingIncoming = len(incoming)

	outgoing, err := src.ListRequests(ctx, store.RequestQuery{RequesterID: userID, Status: "pending"})
	if err != nil {
		return nil, fmt.Errorf("failed to count pending requests: %w", err)
	}
	r.PendingOutgoing = len(outgoing)

	return r, nil
}
