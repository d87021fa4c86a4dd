package workflows

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/PolarWolf314/credshare/internal/audit"
	"github.com/PolarWolf314/credshare/internal/configs"
	kerrors "github.com/PolarWolf314/credshare/internal/errors"
	"github.com/PolarWolf314/credshare/internal/requests"
	"github.com/PolarWolf314/credshare/internal/shares"
)

// team gives each user their own config root over one shared sqlite store.
type team struct {
	t     *testing.T
	roots map[string]string
}

func newTeam(t *testing.T) *team {
	t.Helper()
	saved := configs.UserCredshareSettings
	t.Cleanup(func() { configs.UserCredshareSettings = saved })

	t.Setenv("CREDSHARE_STORE_DRIVER", "sqlite")
	t.Setenv("CREDSHARE_STORE_DSN", filepath.Join(t.TempDir(), "team.db"))
	return &team{t: t, roots: map[string]string{}}
}

// as switches the local user, creating their root on first use.
func (tm *team) as(name string) {
	root, ok := tm.roots[name]
	if !ok {
		root = tm.t.TempDir()
		tm.roots[name] = root
	}
	configs.UseRoot(root)
}

func (tm *team) join(name, email string) *InitResult {
	tm.t.Helper()
	tm.as(name)
	res, err := Init(context.Background(), InitOptions{Email: email})
	if err != nil {
		tm.t.Fatalf("Init for %s failed: %v", email, err)
	}
	return res
}

func TestShareAccessRevoke(t *testing.T) {
	ctx := context.Background()
	tm := newTeam(t)
	alice := tm.join("alice", "alice@example.com")
	bob := tm.join("bob", "Bob@Example.com")

	if bob.Email != "bob@example.com" {
		t.Errorf("Expected normalized email, got %q", bob.Email)
	}
	if !alice.KeyCreated {
		t.Error("Expected a new keypair on first init")
	}

	tm.as("alice")
	secret, err := VaultAdd(ctx, VaultAddOptions{Title: "VPN", Value: "hunter2"})
	if err != nil {
		t.Fatalf("VaultAdd failed: %v", err)
	}
	shared, err := Share(ctx, ShareOptions{Secret: "vpn", Recipient: "bob@example.com", TTL: "7d"})
	if err != nil {
		t.Fatalf("Share failed: %v", err)
	}
	if shared.Share.SecretID != secret.ID {
		t.Errorf("Expected secret %s, got %s", secret.ID, shared.Share.SecretID)
	}
	if shared.Recipient != "bob@example.com" {
		t.Errorf("Expected recipient email, got %q", shared.Recipient)
	}
	if shared.Share.ExpiresAt == nil {
		t.Fatal("Expected an expiry from --ttl")
	}

	tm.as("bob")
	got, err := Access(ctx, AccessOptions{ShareID: shared.Share.ID})
	if err != nil {
		t.Fatalf("Access failed: %v", err)
	}
	if got.Value != "hunter2" {
		t.Errorf("Expected decrypted value, got %q", got.Value)
	}

	received, err := List(ctx, ListOptions{Role: "recipient"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(received) != 1 || received[0].Owner != "alice@example.com" {
		t.Fatalf("Unexpected received shares: %+v", received)
	}

	tm.as("alice")
	res, err := Revoke(ctx, RevokeOptions{ShareID: shared.Share.ID})
	if err != nil || !res.Revoked {
		t.Fatalf("Revoke failed: %+v %v", res, err)
	}

	tm.as("bob")
	if _, err := Access(ctx, AccessOptions{ShareID: shared.Share.ID}); !errors.Is(err, kerrors.ErrShareNotAccessible) {
		t.Errorf("Expected ErrShareNotAccessible after revoke, got %v", err)
	}

	log, err := Log(ctx, LogOptions{User: "alice@example.com"})
	if err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	var ops []audit.Action
	for _, e := range log.Entries {
		ops = append(ops, e.Action)
		if e.ActorEmail != "alice@example.com" {
			t.Errorf("Expected alice as actor, got %q", e.ActorEmail)
		}
	}
	if len(ops) != 2 || ops[0] != audit.ActionShareCreated || ops[1] != audit.ActionShareRevoked {
		t.Errorf("Unexpected actions for alice: %v", ops)
	}

	report, err := Stats(ctx, StatsOptions{})
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if report.Received.Revoked != 1 || report.RecentActivity != 1 {
		t.Errorf("Unexpected report for bob: %+v", report)
	}
}

func TestRequestApprove(t *testing.T) {
	ctx := context.Background()
	tm := newTeam(t)
	tm.join("alice", "alice@example.com")
	tm.join("bob", "bob@example.com")

	tm.as("alice")
	if _, err := VaultAdd(ctx, VaultAddOptions{Title: "Prod DB", Value: "s3cret"}); err != nil {
		t.Fatalf("VaultAdd failed: %v", err)
	}

	tm.as("bob")
	id, err := Request(ctx, RequestOptions{Owner: "alice@example.com", Title: "Prod DB", Message: "on call"})
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}

	tm.as("alice")
	incoming, err := Requests(ctx, RequestsOptions{Status: "pending"})
	if err != nil {
		t.Fatalf("Requests failed: %v", err)
	}
	if len(incoming) != 1 || incoming[0].Requester != "bob@example.com" {
		t.Fatalf("Unexpected incoming requests: %+v", incoming)
	}

	out, err := Respond(ctx, RespondOptions{RequestID: id, Decision: "approve", NoExpiry: true})
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	if out.Status != requests.StatusApproved || out.ShareID == "" {
		t.Fatalf("Unexpected outcome: %+v", out)
	}
	if _, err := Respond(ctx, RespondOptions{RequestID: id, Decision: "reject"}); !errors.Is(err, kerrors.ErrRequestAlreadyResolved) {
		t.Errorf("Expected ErrRequestAlreadyResolved, got %v", err)
	}

	tm.as("bob")
	got, err := Access(ctx, AccessOptions{ShareID: out.ShareID})
	if err != nil {
		t.Fatalf("Access failed: %v", err)
	}
	if got.Value != "s3cret" {
		t.Errorf("Expected approved secret, got %q", got.Value)
	}

	sent, err := Requests(ctx, RequestsOptions{Role: "sent"})
	if err != nil {
		t.Fatalf("Requests failed: %v", err)
	}
	if len(sent) != 1 || sent[0].Status != requests.StatusApproved {
		t.Errorf("Unexpected sent requests: %+v", sent)
	}
}

func TestRotateKeysOrphansReceivedShares(t *testing.T) {
	ctx := context.Background()
	tm := newTeam(t)
	tm.join("alice", "alice@example.com")
	tm.join("bob", "bob@example.com")

	tm.as("alice")
	if _, err := VaultAdd(ctx, VaultAddOptions{Title: "API", Value: "token"}); err != nil {
		t.Fatalf("VaultAdd failed: %v", err)
	}
	shared, err := Share(ctx, ShareOptions{Secret: "API", Recipient: "bob@example.com", NoExpiry: true})
	if err != nil {
		t.Fatalf("Share failed: %v", err)
	}

	tm.as("bob")
	res, err := RotateKeys(ctx, RotateKeysOptions{})
	if err != nil {
		t.Fatalf("RotateKeys failed: %v", err)
	}
	if res.OldFingerprint == res.NewFingerprint {
		t.Error("Expected a new fingerprint")
	}
	if len(res.Orphaned) != 1 || res.Orphaned[0].ID != shared.Share.ID {
		t.Errorf("Expected the received share to be orphaned, got %+v", res.Orphaned)
	}
	if _, err := Access(ctx, AccessOptions{ShareID: shared.Share.ID}); !errors.Is(err, kerrors.ErrDecryptionFailure) {
		t.Errorf("Expected ErrDecryptionFailure for the old share, got %v", err)
	}

	users, err := Users(ctx, UsersOptions{})
	if err != nil {
		t.Fatalf("Users failed: %v", err)
	}
	for _, u := range users.Users {
		if u.UserID == users.Self && u.KeyFingerprint != res.NewFingerprint {
			t.Errorf("Expected the rotated key to be published")
		}
	}
}

func TestExpiredShareUsesWorkflowClock(t *testing.T) {
	ctx := context.Background()
	tm := newTeam(t)
	tm.join("alice", "alice@example.com")
	tm.join("bob", "bob@example.com")

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	current := start
	saved := now
	now = func() time.Time { return current }
	t.Cleanup(func() { now = saved })

	tm.as("alice")
	if _, err := VaultAdd(ctx, VaultAddOptions{Title: "Wifi", Value: "guest"}); err != nil {
		t.Fatalf("VaultAdd failed: %v", err)
	}
	shared, err := Share(ctx, ShareOptions{Secret: "Wifi", Recipient: "bob@example.com", TTL: "1h"})
	if err != nil {
		t.Fatalf("Share failed: %v", err)
	}

	current = start.Add(2 * time.Hour)
	tm.as("bob")
	if _, err := Access(ctx, AccessOptions{ShareID: shared.Share.ID}); !errors.Is(err, kerrors.ErrShareNotAccessible) {
		t.Errorf("Expected ErrShareNotAccessible after expiry, got %v", err)
	}
	expired, err := List(ctx, ListOptions{Role: "recipient", Status: "expired"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(expired) != 1 || expired[0].Status != shares.StatusExpired {
		t.Errorf("Expected one expired share, got %+v", expired)
	}
}

func TestWorkflowErrors(t *testing.T) {
	ctx := context.Background()
	tm := newTeam(t)

	tm.as("nobody")
	if _, err := Share(ctx, ShareOptions{Secret: "x", Recipient: "a@example.com"}); !errors.Is(err, kerrors.ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}
	if _, err := Init(ctx, InitOptions{Email: "not-an-email"}); !errors.Is(err, kerrors.ErrInvalidEmail) {
		t.Errorf("Expected ErrInvalidEmail, got %v", err)
	}

	tm.join("alice", "alice@example.com")
	tm.as("mallory")
	if _, err := Init(ctx, InitOptions{Email: "alice@example.com"}); !errors.Is(err, kerrors.ErrEmailTaken) {
		t.Errorf("Expected ErrEmailTaken, got %v", err)
	}

	tm.as("alice")
	if _, err := Log(ctx, LogOptions{Since: "yesterday"}); !errors.Is(err, kerrors.ErrInvalidDateFormat) {
		t.Errorf("Expected ErrInvalidDateFormat, got %v", err)
	}
	if _, err := Log(ctx, LogOptions{Operations: "share_created,teleport"}); err == nil {
		t.Error("Expected an error for an unknown operation")
	}
	if _, err := Share(ctx, ShareOptions{Secret: "missing", Recipient: "alice@example.com"}); !errors.Is(err, kerrors.ErrSecretNotFound) {
		t.Errorf("Expected ErrSecretNotFound, got %v", err)
	}
	if _, err := Share(ctx, ShareOptions{Secret: "x", Recipient: "a@example.com", Permission: "root"}); !errors.Is(err, kerrors.ErrInvalidPermission) {
		t.Errorf("Expected ErrInvalidPermission, got %v", err)
	}
	if _, err := Respond(ctx, RespondOptions{RequestID: "r", Decision: "maybe"}); !errors.Is(err, kerrors.ErrInvalidDecision) {
		t.Errorf("Expected ErrInvalidDecision, got %v", err)
	}
}
