package directory

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	kerrors "github.com/PolarWolf314/credshare/internal/errors"
	"github.com/PolarWolf314/credshare/internal/secrets"
	"github.com/PolarWolf314/credshare/internal/store"
)

func newTestDirectory(t *testing.T) *Directory {
	t.Helper()
	s, err := store.Open(store.Config{
		Driver: store.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "store.db"),
	})
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return New(s, nil)
}

func publicKeyPEM(t *testing.T, keys *secrets.KeyManager, userID string) string {
	t.Helper()
	_, pub, err := keys.GetOrCreateKeypair(userID)
	if err != nil {
		t.Fatalf("Failed to create keypair for %s: %v", userID, err)
	}
	return pub.PEM
}

func TestRegisterAndResolve(t *testing.T) {
	d := newTestDirectory(t)
	keys := secrets.NewKeyManager(t.TempDir(), 2048)
	ctx := context.Background()

	registered, err := d.Register(ctx, Registration{
		UserID:       "user-alice",
		Email:        "Alice@Example.com",
		PublicKeyPEM: publicKeyPEM(t, keys, "user-alice"),
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if registered.Email != "alice@example.com" {
		t.Errorf("Expected normalized email, got %s", registered.Email)
	}
	if registered.DisplayName != "alice" {
		t.Errorf("Expected display name derived from email, got %s", registered.DisplayName)
	}

	for _, id := range []string{"user-alice", "alice@example.com", "ALICE@EXAMPLE.COM", "  alice@example.com "} {
		e, err := d.Resolve(ctx, id)
		if err != nil {
			t.Fatalf("Resolve(%q) failed: %v", id, err)
		}
		if e.UserID != "user-alice" {
			t.Errorf("Resolve(%q) returned %s", id, e.UserID)
		}
		if e.PublicKey == nil {
			t.Errorf("Resolve(%q) returned no public key", id)
		}
	}

	if _, err := d.Resolve(ctx, "nobody@example.com"); !errors.Is(err, kerrors.ErrRecipientNotFound) {
		t.Errorf("Expected ErrRecipientNotFound, got %v", err)
	}
	if _, err := d.Resolve(ctx, ""); !errors.Is(err, kerrors.ErrRecipientNotFound) {
		t.Errorf("Expected ErrRecipientNotFound for empty identifier, got %v", err)
	}
}

func TestRegisterRejectsTakenEmail(t *testing.T) {
	d := newTestDirectory(t)
	keys := secrets.NewKeyManager(t.TempDir(), 2048)
	ctx := context.Background()

	if _, err := d.Register(ctx, Registration{
		UserID:       "user-alice",
		Email:        "alice@example.com",
		PublicKeyPEM: publicKeyPEM(t, keys, "user-alice"),
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, err := d.Register(ctx, Registration{
		UserID:       "user-mallory",
		Email:        "ALICE@example.com",
		PublicKeyPEM: publicKeyPEM(t, keys, "user-mallory"),
	})
	if !errors.Is(err, kerrors.ErrEmailTaken) {
		t.Errorf("Expected ErrEmailTaken, got %v", err)
	}
}

func TestRegisterRejectsInvalidEmail(t *testing.T) {
	d := newTestDirectory(t)
	_, err := d.Register(context.Background(), Registration{UserID: "u", Email: "not-an-email"})
	if !errors.Is(err, kerrors.ErrInvalidEmail) {
		t.Errorf("Expected ErrInvalidEmail, got %v", err)
	}
}

func TestRegisterUpdatesExistingUser(t *testing.T) {
	d := newTestDirectory(t)
	keys := secrets.NewKeyManager(t.TempDir(), 2048)
	ctx := context.Background()

	pem := publicKeyPEM(t, keys, "user-bob")
	if _, err := d.Register(ctx, Registration{UserID: "user-bob", Email: "bob@example.com", PublicKeyPEM: pem}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := d.Register(ctx, Registration{UserID: "user-bob", Email: "robert@example.com", DisplayName: "Robert", PublicKeyPEM: pem}); err != nil {
		t.Fatalf("Re-register failed: %v", err)
	}

	e, err := d.Resolve(ctx, "robert@example.com")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if e.DisplayName != "Robert" {
		t.Errorf("Expected display name Robert, got %s", e.DisplayName)
	}
	if _, err := d.Resolve(ctx, "bob@example.com"); !errors.Is(err, kerrors.ErrRecipientNotFound) {
		t.Errorf("Expected old email to be gone, got %v", err)
	}
}

func TestPublishReplacesKey(t *testing.T) {
	d := newTestDirectory(t)
	keys := secrets.NewKeyManager(t.TempDir(), 2048)
	ctx := context.Background()

	if _, err := d.Register(ctx, Registration{
		UserID:       "user-carol",
		Email:        "carol@example.com",
		PublicKeyPEM: publicKeyPEM(t, keys, "user-carol"),
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	before, _ := d.Resolve(ctx, "user-carol")

	_, rotated, err := keys.Rotate("user-carol")
	if err != nil {
		t.Fatalf("Rotate failed: %v", err)
	}
	if err := d.Publish(ctx, "user-carol", rotated.PEM); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	after, _ := d.Resolve(ctx, "user-carol")
	if after.KeyFingerprint == before.KeyFingerprint {
		t.Error("Expected fingerprint to change after publish")
	}
	if after.KeyFingerprint != rotated.Fingerprint {
		t.Errorf("Expected fingerprint %s, got %s", rotated.Fingerprint, after.KeyFingerprint)
	}

	if err := d.Publish(ctx, "user-nobody", rotated.PEM); !errors.Is(err, kerrors.ErrRecipientNotFound) {
		t.Errorf("Expected ErrRecipientNotFound, got %v", err)
	}
	if err := d.Publish(ctx, "user-carol", "garbage"); err == nil {
		t.Error("Expected error for invalid PEM")
	}
}

func TestListOrdersByEmail(t *testing.T) {
	d := newTestDirectory(t)
	keys := secrets.NewKeyManager(t.TempDir(), 2048)
	ctx := context.Background()

	for _, r := range []Registration{
		{UserID: "u2", Email: "zoe@example.com"},
		{UserID: "u1", Email: "adam@example.com"},
	} {
		r.PublicKeyPEM = publicKeyPEM(t, keys, r.UserID)
		if _, err := d.Register(ctx, r); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
	}

	entries, err := d.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 || entries[0].Email != "adam@example.com" {
		t.Errorf("Expected adam first, got %+v", entries)
	}
}
