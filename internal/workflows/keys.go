package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/credshare/internal/shares"
)

// RotateKeysOptions configures the key rotation workflow.
type RotateKeysOptions struct {
	Common
}

// RotateKeysResult contains the outcome of a key rotation.
type RotateKeysResult struct {
	OldFingerprint string
	NewFingerprint string

	// Orphaned lists active shares received under the old key. They can no
	// longer be decrypted and must be shared again.
	Orphaned []shares.Share
}

// RotateKeys replaces the caller's keypair and publishes the new public key.
func RotateKeys(ctx context.Context, opts RotateKeysOptions) (*RotateKeysResult, error) {
	s, err := openSession(ctx, opts.Common)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	orphaned, err := s.engine.ListShares(ctx, shares.ShareFilter{Role: shares.RoleRecipient, Status: shares.StatusActive})
	if err != nil {
		return nil, err
	}

	old := s.public.Fingerprint
	_, public, err := s.keys.Rotate(s.config.User.UUID)
	if err != nil {
		return nil, err
	}
	if err := s.directory.Publish(ctx, s.config.User.UUID, public.PEM); err != nil {
		return nil, fmt.Errorf("new key generated but not published, run 'credshare init' to retry: %w", err)
	}
	s.log.Infof("Rotated key %s to %s", shortFingerprint(old), shortFingerprint(public.Fingerprint))

	return &RotateKeysResult{
		OldFingerprint: old,
		NewFingerprint: public.Fingerprint,
		Orphaned:       orphaned,
	}, nil
}
