package directory

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	kerrors "github.com/PolarWolf314/credshare/internal/errors"
	"github.com/PolarWolf314/credshare/internal/secrets"
	"github.com/PolarWolf314/credshare/internal/store"
	"github.com/PolarWolf314/credshare/internal/utils"
)

// Entry is one user as seen by other users.
type Entry struct {
	UserID         string
	Email          string
	DisplayName    string
	PublicKey      *rsa.PublicKey
	PublicKeyPEM   string
	KeyFingerprint string
	CreatedAt      time.Time
	LastActive     time.Time
}

// Registration creates or updates the caller's own directory entry.
type Registration struct {
	UserID       string
	Email        string
	DisplayName  string
	PublicKeyPEM string
}

// Directory maps user ids and emails to public keys, backed by the shared store.
type Directory struct {
	store *store.Store
	now   func() time.Time
}

// New returns a Directory over s. A nil clock means time.Now.
func New(s *store.Store, now func() time.Time) *Directory {
	if now == nil {
		now = time.Now
	}
	return &Directory{store: s, now: now}
}

// Resolve looks a user up by id or by case-insensitive email.
func (d *Directory) Resolve(ctx context.Context, identifier string) (Entry, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return Entry{}, kerrors.ErrRecipientNotFound
	}

	var (
		u   *store.User
		err error
	)
	if strings.Contains(identifier, "@") {
		u, err = d.store.FindUserByEmail(ctx, utils.NormalizeEmail(identifier))
	} else {
		u, err = d.store.FindUserByID(ctx, identifier)
	}
	if errors.Is(err, store.ErrNotFound) {
		return Entry{}, fmt.Errorf("%w: %s", kerrors.ErrRecipientNotFound, identifier)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("failed to look up %s: %w", identifier, err)
	}

	return toEntry(u)
}

// Publish replaces the user's current public key. Shares created afterwards
// are encrypted to the new key.
func (d *Directory) Publish(ctx context.Context, userID, publicKeyPEM string) error {
	pub, err := secrets.ParsePublicKeyPEM(publicKeyPEM)
	if err != nil {
		return fmt.Errorf("invalid public key: %w", err)
	}
	fingerprint, err := secrets.Fingerprint(pub)
	if err != nil {
		return err
	}

	err = d.store.UpdateUserKey(ctx, userID, publicKeyPEM, fingerprint)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", kerrors.ErrRecipientNotFound, userID)
	}
	return err
}

// Register creates the user or updates their email, display name and key.
// An email already held by a different user id is ErrEmailTaken.
func (d *Directory) Register(ctx context.Context, r Registration) (Entry, error) {
	email := utils.NormalizeEmail(r.Email)
	if !utils.IsValidEmail(email) {
		return Entry{}, fmt.Errorf("%w: %q", kerrors.ErrInvalidEmail, r.Email)
	}
	if r.UserID == "" {
		return Entry{}, fmt.Errorf("registration requires a user id")
	}

	pub, err := secrets.ParsePublicKeyPEM(r.PublicKeyPEM)
	if err != nil {
		return Entry{}, fmt.Errorf("invalid public key: %w", err)
	}
	fingerprint, err := secrets.Fingerprint(pub)
	if err != nil {
		return Entry{}, err
	}

	displayName := strings.TrimSpace(r.DisplayName)
	if displayName == "" {
		displayName = utils.DefaultDisplayName(email)
	}

	var result *store.User
	err = d.store.WithTx(ctx, func(tx *store.Store) error {
		holder, err := tx.FindUserByEmail(ctx, email)
		switch {
		case err == nil && holder.UserID != r.UserID:
			return fmt.Errorf("%w: %s", kerrors.ErrEmailTaken, email)
		case err != nil && !errors.Is(err, store.ErrNotFound):
			return err
		}

		existing, err := tx.FindUserByID(ctx, r.UserID)
		if errors.Is(err, store.ErrNotFound) {
			now := d.now().UTC()
			result = &store.User{
				UserID:         r.UserID,
				DisplayName:    displayName,
				Email:          email,
				PublicKey:      r.PublicKeyPEM,
				KeyFingerprint: fingerprint,
				CreatedAt:      now,
				LastActive:     now,
			}
			return tx.CreateUser(ctx, result)
		}
		if err != nil {
			return err
		}

		if err := tx.UpdateUserProfile(ctx, r.UserID, displayName, email); err != nil {
			return err
		}
		if err := tx.UpdateUserKey(ctx, r.UserID, r.PublicKeyPEM, fingerprint); err != nil {
			return err
		}
		existing.DisplayName = displayName
		existing.Email = email
		existing.PublicKey = r.PublicKeyPEM
		existing.KeyFingerprint = fingerprint
		result = existing
		return nil
	})
	if err != nil {
		return Entry{}, err
	}

	return toEntry(result)
}

// Touch records that the user was active.
func (d *Directory) Touch(ctx context.Context, userID string) error {
	return d.store.TouchUser(ctx, userID, d.now().UTC())
}

// List returns every registered user ordered by email.
func (d *Directory) List(ctx context.Context) ([]Entry, error) {
	users, err := d.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(users))
	for i := range users {
		e, err := toEntry(&users[i])
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func toEntry(u *store.User) (Entry, error) {
	pub, err := secrets.ParsePublicKeyPEM(u.PublicKey)
	if err != nil {
		return Entry{}, fmt.Errorf("directory entry for %s has an invalid public key: %w", u.UserID, err)
	}
	return Entry{
		UserID:         u.UserID,
		Email:          u.Email,
		DisplayName:    u.DisplayName,
		PublicKey:      pub,
		PublicKeyPEM:   u.PublicKey,
		KeyFingerprint: u.KeyFingerprint,
		CreatedAt:      u.CreatedAt,
		LastActive:     u.LastActive,
	}, nil
}
