package vault

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	kerrors "github.com/PolarWolf314/credshare/internal/errors"
)

func TestMemoryVault(t *testing.T) {
	ctx := context.Background()
	v := NewMemory("alice")

	s := v.Put(Secret{Title: "VPN", Value: "hunter2", OwnerID: "someone-else"})
	if s.ID == "" {
		t.Fatal("Expected an id to be assigned")
	}
	if s.OwnerID != "alice" {
		t.Errorf("Expected owner alice, got %s", s.OwnerID)
	}

	got, err := v.GetSecret(ctx, s.ID)
	if err != nil {
		t.Fatalf("GetSecret failed: %v", err)
	}
	if got.Value != "hunter2" {
		t.Errorf("Expected hunter2, got %s", got.Value)
	}

	if _, err := v.GetSecret(ctx, "missing"); !errors.Is(err, kerrors.ErrSecretNotFound) {
		t.Errorf("Expected ErrSecretNotFound, got %v", err)
	}

	if !v.IsSessionActive() {
		t.Error("Expected new vault to be unlocked")
	}
	v.Lock()
	if v.IsSessionActive() {
		t.Error("Expected locked vault to report inactive session")
	}
	v.Unlock()
	if !v.IsSessionActive() {
		t.Error("Expected unlocked vault to report active session")
	}
}

func TestFindByTitle(t *testing.T) {
	list := []Secret{
		{ID: "1", Title: "DB admin"},
		{ID: "2", Title: "VPN"},
		{ID: "3", Title: "vpn"},
	}

	s, err := FindByTitle(list, "db ADMIN")
	if err != nil {
		t.Fatalf("FindByTitle failed: %v", err)
	}
	if s.ID != "1" {
		t.Errorf("Expected id 1, got %s", s.ID)
	}

	if _, err := FindByTitle(list, "VPN"); !errors.Is(err, kerrors.ErrSecretNotFound) {
		t.Errorf("Expected ErrSecretNotFound for ambiguous title, got %v", err)
	}
	if _, err := FindByTitle(list, "wifi"); !errors.Is(err, kerrors.ErrSecretNotFound) {
		t.Errorf("Expected ErrSecretNotFound for missing title, got %v", err)
	}
}

func TestFileVaultPersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vault.toml")

	v, err := OpenFile(path, "alice")
	if err != nil {
		t.Fatalf("OpenFile failed on missing file: %v", err)
	}
	if list, _ := v.ListSecrets(ctx); len(list) != 0 {
		t.Fatalf("Expected empty vault, got %d secrets", len(list))
	}

	vpn, err := v.Add(ctx, "VPN", "hunter2", "office gateway")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := v.Add(ctx, "Admin", "s3cret", ""); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Vault file missing: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected vault mode 0600, got %o", info.Mode().Perm())
	}

	reopened, err := OpenFile(path, "alice")
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	got, err := reopened.GetSecret(ctx, vpn.ID)
	if err != nil {
		t.Fatalf("GetSecret failed: %v", err)
	}
	if got.Notes != "office gateway" {
		t.Errorf("Expected notes to round trip, got %q", got.Notes)
	}

	list, _ := reopened.ListSecrets(ctx)
	if len(list) != 2 || list[0].Title != "Admin" {
		t.Errorf("Expected secrets sorted by title, got %+v", list)
	}

	other, _ := OpenFile(path, "mallory")
	if _, err := other.GetSecret(ctx, vpn.ID); !errors.Is(err, kerrors.ErrSecretNotFound) {
		t.Errorf("Expected ErrSecretNotFound for another owner, got %v", err)
	}
}

func TestFileVaultRejectsEmptyInput(t *testing.T) {
	v, _ := OpenFile(filepath.Join(t.TempDir(), "vault.toml"), "alice")
	if _, err := v.Add(context.Background(), "  ", "x", ""); err == nil {
		t.Error("Expected error for empty title")
	}
	if _, err := v.Add(context.Background(), "VPN", "", ""); err == nil {
		t.Error("Expected error for empty value")
	}
}
