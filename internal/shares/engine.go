package shares

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/PolarWolf314/credshare/internal/audit"
	"github.com/PolarWolf314/credshare/internal/directory"
	kerrors "github.com/PolarWolf314/credshare/internal/errors"
	logger "github.com/PolarWolf314/credshare/internal/logging"
	"github.com/PolarWolf314/credshare/internal/secrets"
	"github.com/PolarWolf314/credshare/internal/store"
	"github.com/PolarWolf314/credshare/internal/vault"
)

// Vault is the caller's own credential store.
type Vault interface {
	GetSecret(ctx context.Context, id string) (vault.Secret, error)
	ListSecrets(ctx context.Context) ([]vault.Secret, error)
	IsSessionActive() bool
}

// Directory resolves recipients to their current public key.
type Directory interface {
	Resolve(ctx context.Context, identifier string) (directory.Entry, error)
	Publish(ctx context.Context, userID, publicKeyPEM string) error
}

// Decrypter is the caller's private key. *secrets.PrivateKey satisfies it.
type Decrypter interface {
	Decrypt(ciphertext []byte) ([]byte, error)
}

// Options binds an Engine to one authenticated caller.
type Options struct {
	CallerID    string
	CallerEmail string

	Store     *store.Store
	Directory Directory
	Vault     Vault
	Key       Decrypter

	// Now defaults to time.Now.
	Now func() time.Time

	Logger logger.Logger
}

// Engine creates, opens, revokes and lists shares for its caller.
type Engine struct {
	callerID    string
	callerEmail string
	store       *store.Store
	dir         Directory
	vault       Vault
	key         Decrypter
	now         func() time.Time
	log         logger.Logger
}

// NewEngine validates opts and returns an Engine.
func NewEngine(opts Options) (*Engine, error) {
	if opts.CallerID == "" {
		return nil, fmt.Errorf("%w: no caller", kerrors.ErrUnauthorized)
	}
	if opts.Store == nil {
		return nil, kerrors.ErrStoreUnavailable
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		callerID:    opts.CallerID,
		callerEmail: opts.CallerEmail,
		store:       opts.Store,
		dir:         opts.Directory,
		vault:       opts.Vault,
		key:         opts.Key,
		now:         now,
		log:         opts.Logger,
	}, nil
}

// CallerID is the user this engine acts for.
func (e *Engine) CallerID() string {
	return e.callerID
}

// Now is the engine clock in UTC.
func (e *Engine) Now() time.Time {
	return e.now().UTC()
}

func (e *Engine) requireSession() error {
	if e.vault == nil || !e.vault.IsSessionActive() {
		return fmt.Errorf("%w: vault session is not active", kerrors.ErrUnauthorized)
	}
	return nil
}

// PreparedShare is an encrypted share that has not been stored yet.
type PreparedShare struct {
	row store.Share
}

// ShareID is the id the share will have once inserted.
func (p *PreparedShare) ShareID() string {
	return p.row.ShareID
}

// PrepareShare runs every check and the encryption for a new share without
// writing anything. Insert the result with InsertPrepared.
func (e *Engine) PrepareShare(ctx context.Context, secretID, recipientIdentifier string, permission Permission, ttl time.Duration) (*PreparedShare, error) {
	if err := e.requireSession(); err != nil {
		return nil, err
	}
	if _, err := ParsePermission(string(permission)); err != nil {
		return nil, err
	}
	if ttl < 0 {
		return nil, fmt.Errorf("share ttl cannot be negative")
	}

	secret, err := e.vault.GetSecret(ctx, secretID)
	if err != nil {
		if errors.Is(err, kerrors.ErrSecretNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", kerrors.ErrSecretNotFound, err)
	}
	if secret.OwnerID != e.callerID {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrSecretNotFound, secretID)
	}

	if e.dir == nil {
		return nil, fmt.Errorf("%w: no directory configured", kerrors.ErrRecipientNotFound)
	}
	recipient, err := e.dir.Resolve(ctx, recipientIdentifier)
	if err != nil {
		return nil, err
	}
	if recipient.UserID == e.callerID {
		return nil, kerrors.ErrSelfShareRejected
	}

	e.log.Debugf("Encrypting %q for %s (key %s)", secret.Title, recipient.UserID, recipient.KeyFingerprint)
	payload, err := secrets.EncryptString(recipient.PublicKey, secret.Value)
	if err != nil {
		return nil, err
	}
	var notes string
	if secret.Notes != "" {
		notes, err = secrets.EncryptString(recipient.PublicKey, secret.Notes)
		if err != nil {
			return nil, err
		}
	}

	now := e.Now()
	row := store.Share{
		ShareID:          uuid.NewString(),
		SecretID:         secret.ID,
		SecretTitle:      secret.Title,
		OwnerID:          e.callerID,
		RecipientID:      recipient.UserID,
		Permission:       string(permission),
		Status:           string(StatusActive),
		EncryptedPayload: payload,
		EncryptedNotes:   notes,
		CreatedAt:        now,
		Version:          1,
	}
	if ttl > 0 {
		expires := now.Add(ttl)
		row.ExpiresAt = &expires
	}
	return &PreparedShare{row: row}, nil
}

// InsertPrepared stores p and its share_created entry using tx, which must
// come from Store.WithTx.
func (e *Engine) InsertPrepared(ctx context.Context, tx *store.Store, p *PreparedShare) error {
	row := p.row
	if err := tx.InsertShare(ctx, &row); err != nil {
		return fmt.Errorf("failed to store share: %w", err)
	}
	_, err := audit.Append(ctx, tx, audit.Entry{
		Timestamp: row.CreatedAt,
		Actor:     e.callerID,
		Action:    audit.ActionShareCreated,
		ShareID:   row.ShareID,
	})
	return err
}

// CreateShare encrypts a vault secret for the recipient and stores it as an
// active share. Nothing is written unless every step succeeds.
func (e *Engine) CreateShare(ctx context.Context, secretID, recipientIdentifier string, permission Permission, ttl time.Duration) (string, error) {
	prepared, err := e.PrepareShare(ctx, secretID, recipientIdentifier, permission, ttl)
	if err != nil {
		return "", err
	}

	err = e.store.WithTx(ctx, func(tx *store.Store) error {
		return e.InsertPrepared(ctx, tx, prepared)
	})
	if err != nil {
		return "", err
	}

	e.log.Infof("Created share %s of %q for %s", prepared.row.ShareID, prepared.row.SecretTitle, prepared.row.RecipientID)
	return prepared.row.ShareID, nil
}

// AccessShare decrypts a share for its recipient and records the access.
//
// Missing, foreign, revoked and expired shares all fail with the same
// ErrShareNotAccessible. A decryption failure writes nothing.
func (e *Engine) AccessShare(ctx context.Context, shareID string) (*DecryptedShare, error) {
	if err := e.requireSession(); err != nil {
		return nil, err
	}
	if e.key == nil {
		return nil, fmt.Errorf("%w: no private key loaded", kerrors.ErrKeyStorage)
	}

	var result *DecryptedShare
	err := e.store.WithTx(ctx, func(tx *store.Store) error {
		row, err := tx.LockShare(ctx, shareID)
		if errors.Is(err, store.ErrNotFound) {
			return kerrors.ErrShareNotAccessible
		}
		if err != nil {
			return err
		}

		now := e.Now()
		if row.RecipientID != e.callerID {
			return kerrors.ErrShareNotAccessible
		}
		if !EffectiveStatus(Status(row.Status), row.ExpiresAt, now).Usable() {
			return kerrors.ErrShareNotAccessible
		}

		value, err := e.decrypt(row.EncryptedPayload)
		if err != nil {
			return err
		}
		var notes string
		if row.EncryptedNotes != "" {
			if notes, err = e.decrypt(row.EncryptedNotes); err != nil {
				return err
			}
		}

		ok, err := tx.RecordShareAccess(ctx, row.ShareID, row.Version, string(StatusActive), now)
		if err != nil {
			return err
		}
		if !ok {
			return kerrors.ErrShareNotAccessible
		}

		if _, err := audit.Append(ctx, tx, audit.Entry{
			Timestamp: now,
			Actor:     e.callerID,
			Action:    audit.ActionPasswordAccessed,
			ShareID:   row.ShareID,
		}); err != nil {
			return err
		}

		result = &DecryptedShare{
			ShareID:     row.ShareID,
			SecretID:    row.SecretID,
			Title:       row.SecretTitle,
			Value:       value,
			Notes:       notes,
			Permission:  Permission(row.Permission),
			OwnerID:     row.OwnerID,
			AccessCount: row.AccessCount + 1,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (e *Engine) decrypt(encoded string) (string, error) {
	raw, err := secrets.DecodeCiphertext(encoded)
	if err != nil {
		return "", err
	}
	out, err := e.key.Decrypt(raw)
	if err != nil {
		if errors.Is(err, kerrors.ErrDecryptionFailure) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", kerrors.ErrDecryptionFailure, err)
	}
	return string(out), nil
}

// RevokeShare permanently revokes a share the caller owns. It reports false,
// and records nothing, when the share is missing or owned by someone else.
// Revoking again succeeds and is recorded again.
func (e *Engine) RevokeShare(ctx context.Context, shareID string) (bool, error) {
	if err := e.requireSession(); err != nil {
		return false, err
	}

	revoked := false
	err := e.store.WithTx(ctx, func(tx *store.Store) error {
		row, err := tx.LockShare(ctx, shareID)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if row.OwnerID != e.callerID {
			return nil
		}

		if err := tx.SetShareStatus(ctx, row.ShareID, string(StatusRevoked)); err != nil {
			return err
		}
		if _, err := audit.Append(ctx, tx, audit.Entry{
			Timestamp: e.Now(),
			Actor:     e.callerID,
			Action:    audit.ActionShareRevoked,
			ShareID:   row.ShareID,
		}); err != nil {
			return err
		}
		revoked = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if revoked {
		e.log.Infof("Revoked share %s", shareID)
	} else {
		e.log.Debugf("Revoke of %s ignored: caller is not the owner", shareID)
	}
	return revoked, nil
}

// ListShares returns the caller's shares as owner or recipient, newest first.
// The status filter matches the derived status.
func (e *Engine) ListShares(ctx context.Context, f ShareFilter) ([]Share, error) {
	q := store.ShareQuery{}
	switch f.Role {
	case RoleOwner:
		q.OwnerID = e.callerID
	case RoleRecipient:
		q.RecipientID = e.callerID
	default:
		return nil, fmt.Errorf("unknown role %q", f.Role)
	}

	// Revoked is the only stored terminal state, so it can be pushed down.
	switch f.Status {
	case StatusRevoked:
		q.Statuses = []string{string(StatusRevoked)}
	case StatusActive, StatusExpired:
		q.Statuses = []string{string(StatusActive)}
	case StatusPending:
		return []Share{}, nil
	}

	rows, err := e.store.ListShares(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}

	now := e.Now()
	out := make([]Share, 0, len(rows))
	for i := range rows {
		sh := fromRow(&rows[i], now)
		if f.Status != "" && sh.Status != f.Status {
			continue
		}
		out = append(out, sh)
	}
	return out, nil
}

// GetShare returns metadata for a share the caller owns or received.
func (e *Engine) GetShare(ctx context.Context, shareID string) (Share, error) {
	row, err := e.store.GetShare(ctx, shareID)
	if errors.Is(err, store.ErrNotFound) {
		return Share{}, kerrors.ErrShareNotAccessible
	}
	if err != nil {
		return Share{}, err
	}
	if row.OwnerID != e.callerID && row.RecipientID != e.callerID {
		return Share{}, kerrors.ErrShareNotAccessible
	}
	return fromRow(row, e.Now()), nil
}
