package shares

import (
	"fmt"
	"strings"
	"time"

	kerrors "github.com/PolarWolf314/credshare/internal/errors"
	"github.com/PolarWolf314/credshare/internal/store"
)

// Permission is the access level granted by a share.
type Permission string

const (
	PermissionRead  Permission = "read"
	PermissionWrite Permission = "write"
	PermissionAdmin Permission = "admin"
)

// ParsePermission accepts read, write or admin in any case.
func ParsePermission(s string) (Permission, error) {
	switch p := Permission(strings.ToLower(strings.TrimSpace(s))); p {
	case PermissionRead, PermissionWrite, PermissionAdmin:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q (use read, write or admin)", kerrors.ErrInvalidPermission, s)
	}
}

// Status is the lifecycle state of a share.
type Status string

const (
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
	StatusExpired Status = "expired"

	// StatusPending is never stored on a share; requests carry their own
	// pending state. It exists so status filters parse every documented value.
	StatusPending Status = "pending"
)

// ParseStatus accepts active, revoked, expired or pending in any case.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusActive, StatusRevoked, StatusExpired, StatusPending:
		return st, nil
	default:
		return "", fmt.Errorf("unknown share status %q", s)
	}
}

// EffectiveStatus derives the status a reader sees at now. Expiry is never
// written back; an active share past expires_at simply reads as expired.
func EffectiveStatus(stored Status, expiresAt *time.Time, now time.Time) Status {
	switch stored {
	case StatusActive:
		if expiresAt != nil && !expiresAt.After(now) {
			return StatusExpired
		}
		return StatusActive
	default:
		return stored
	}
}

// Usable reports whether the recipient may decrypt a share in this state.
func (s Status) Usable() bool {
	switch s {
	case StatusActive:
		return true
	default:
		return false
	}
}

// Role selects which side of a share a listing is for.
type Role string

const (
	RoleOwner     Role = "owner"
	RoleRecipient Role = "recipient"
)

// ParseRole accepts owner or recipient.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleOwner, RoleRecipient:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q (use owner or recipient)", s)
	}
}

// Share is share metadata. It never carries ciphertext or plaintext.
type Share struct {
	ID           string
	SecretID     string
	SecretTitle  string
	OwnerID      string
	RecipientID  string
	Permission   Permission
	Status       Status
	ExpiresAt    *time.Time
	CreatedAt    time.Time
	LastAccessed *time.Time
	AccessCount  int64
}

// DecryptedShare is what the recipient gets back from AccessShare.
type DecryptedShare struct {
	ShareID     string
	SecretID    string
	Title       string
	Value       string
	Notes       string
	Permission  Permission
	OwnerID     string
	AccessCount int64
}

// ShareFilter selects shares for ListShares. A zero Status matches all.
type ShareFilter struct {
	Role   Role
	Status Status
}

func fromRow(row *store.Share, now time.Time) Share {
	return Share{
		ID:           row.ShareID,
		SecretID:     row.SecretID,
		SecretTitle:  row.SecretTitle,
		OwnerID:      row.OwnerID,
		RecipientID:  row.RecipientID,
		Permission:   Permission(row.Permission),
		Status:       EffectiveStatus(Status(row.Status), row.ExpiresAt, now),
		ExpiresAt:    row.ExpiresAt,
		CreatedAt:    row.CreatedAt,
		LastAccessed: row.LastAccessed,
		AccessCount:  row.AccessCount,
	}
}
