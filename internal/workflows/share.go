package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	kerrors "github.com/PolarWolf314/credshare/internal/errors"
	"github.com/PolarWolf314/credshare/internal/shares"
	"github.com/PolarWolf314/credshare/internal/utils"
	"github.com/PolarWolf314/credshare/internal/vault"
)

// ShareOptions configures the share create workflow.
type ShareOptions struct {
	Common

	// Secret is a vault secret id or title.
	Secret string

	// Recipient is an email or user id.
	Recipient string

	// Permission defaults to read.
	Permission string

	// TTL overrides the configured default lifetime ("24h", "7d").
	TTL string

	// NoExpiry creates a share that never expires, ignoring TTL and the default.
	NoExpiry bool
}

// ShareResult contains the outcome of a share create operation.
type ShareResult struct {
	Share     shares.Share
	Recipient string
}

// Share encrypts one of the caller's vault secrets for a recipient.
func Share(ctx context.Context, opts ShareOptions) (*ShareResult, error) {
	s, err := openSession(ctx, opts.Common)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	perm := shares.PermissionRead
	if opts.Permission != "" {
		if perm, err = shares.ParsePermission(opts.Permission); err != nil {
			return nil, err
		}
	}

	ttl, err := s.resolveTTL(opts.TTL, opts.NoExpiry)
	if err != nil {
		return nil, err
	}

	secret, err := s.findSecret(ctx, opts.Secret)
	if err != nil {
		return nil, err
	}

	id, err := s.engine.CreateShare(ctx, secret.ID, opts.Recipient, perm, ttl)
	if err != nil {
		return nil, err
	}

	share, err := s.engine.GetShare(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ShareResult{Share: share, Recipient: s.describeUser(ctx, share.RecipientID)}, nil
}

// resolveTTL picks the flag value, then the configured default.
func (s *session) resolveTTL(flag string, noExpiry bool) (time.Duration, error) {
	if noExpiry {
		return 0, nil
	}
	if flag != "" {
		ttl, err := utils.ParseDuration(flag)
		if err != nil {
			return 0, fmt.Errorf("invalid ttl: %w", err)
		}
		if ttl <= 0 {
			return 0, fmt.Errorf("invalid ttl %q: must be positive", flag)
		}
		return ttl, nil
	}
	return s.config.DefaultTTL()
}

// findSecret looks a vault secret up by id, then by title.
func (s *session) findSecret(ctx context.Context, ref string) (vault.Secret, error) {
	secret, err := s.vault.GetSecret(ctx, ref)
	if err == nil {
		return secret, nil
	}
	if !errors.Is(err, kerrors.ErrSecretNotFound) {
		return vault.Secret{}, err
	}
	list, err := s.vault.ListSecrets(ctx)
	if err != nil {
		return vault.Secret{}, err
	}
	return vault.FindByTitle(list, ref)
}

// describeUser renders a user id as their email when the directory knows it.
func (s *session) describeUser(ctx context.Context, userID string) string {
	entry, err := s.directory.Resolve(ctx, userID)
	if err != nil {
		return userID
	}
	return entry.Email
}

// AccessOptions configures the share access workflow.
type AccessOptions struct {
	Common
	ShareID string
}

// Access decrypts a share received by the caller. Every successful call is
// recorded in the audit log.
//
// Returns ErrShareNotAccessible for any share the caller cannot read, without
// saying why.
func Access(ctx context.Context, opts AccessOptions) (*shares.DecryptedShare, error) {
	s, err := openSession(ctx, opts.Common)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	return s.engine.AccessShare(ctx, opts.ShareID)
}

// RevokeOptions configures the share revoke workflow.
type RevokeOptions struct {
	Common
	ShareID string
}

// RevokeResult reports whether anything changed.
type RevokeResult struct {
	ShareID string
	Revoked bool
}

// Revoke revokes a share the caller owns. Revoking an already revoked share
// succeeds again.
func Revoke(ctx context.Context, opts RevokeOptions) (*RevokeResult, error) {
	s, err := openSession(ctx, opts.Common)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	ok, err := s.engine.RevokeShare(ctx, opts.ShareID)
	if err != nil {
		return nil, err
	}
	return &RevokeResult{ShareID: opts.ShareID, Revoked: ok}, nil
}

// ListOptions configures the share list workflow.
type ListOptions struct {
	Common

	// Role is owner or recipient.
	Role string

	// Status filters by derived status. Empty lists all.
	Status string
}

// ListedShare is a share with both parties rendered for display.
type ListedShare struct {
	shares.Share
	Owner     string
	Recipient string
}

// List returns the caller's shares in one role, newest first.
func List(ctx context.Context, opts ListOptions) ([]ListedShare, error) {
	role := shares.RoleOwner
	var err error
	if opts.Role != "" {
		if role, err = shares.ParseRole(opts.Role); err != nil {
			return nil, err
		}
	}
	var status shares.Status
	if opts.Status != "" {
		if status, err = shares.ParseStatus(opts.Status); err != nil {
			return nil, err
		}
	}

	s, err := openSession(ctx, opts.Common)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	list, err := s.engine.ListShares(ctx, shares.ShareFilter{Role: role, Status: status})
	if err != nil {
		return nil, err
	}

	names := map[string]string{}
	name := func(id string) string {
		if n, ok := names[id]; ok {
			return n
		}
		n := s.describeUser(ctx, id)
		names[id] = n
		return n
	}

	out := make([]ListedShare, 0, len(list))
	for _, sh := range list {
		out = append(out, ListedShare{Share: sh, Owner: name(sh.OwnerID), Recipient: name(sh.RecipientID)})
	}
	return out, nil
}
