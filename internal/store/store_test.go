package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Config{
		Driver: DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "store.db"),
	})
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func testShare(id string) *Share {
	return &Share{
		ShareID:          id,
		SecretID:         "secret-1",
		SecretTitle:      "VPN",
		OwnerID:          "alice",
		RecipientID:      "bob",
		Permission:       "read",
		Status:           "active",
		EncryptedPayload: "Y2lwaGVydGV4dA==",
		CreatedAt:        time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Version:          1,
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(Config{Driver: "mysql", DSN: "x"}); err == nil {
		t.Fatal("Expected error for unsupported driver")
	}
}

func TestUserLookups(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	u := &User{UserID: "alice", Email: "alice@example.com", PublicKey: "pem", CreatedAt: time.Now().UTC()}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	byID, err := s.FindUserByID(ctx, "alice")
	if err != nil {
		t.Fatalf("FindUserByID failed: %v", err)
	}
	if byID.Email != "alice@example.com" {
		t.Errorf("Expected email alice@example.com, got %s", byID.Email)
	}

	if _, err := s.FindUserByEmail(ctx, "alice@example.com"); err != nil {
		t.Fatalf("FindUserByEmail failed: %v", err)
	}

	if _, err := s.FindUserByID(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	if err := s.UpdateUserKey(ctx, "alice", "new-pem", "fp"); err != nil {
		t.Fatalf("UpdateUserKey failed: %v", err)
	}
	byID, _ = s.FindUserByID(ctx, "alice")
	if byID.PublicKey != "new-pem" || byID.KeyFingerprint != "fp" {
		t.Errorf("Key not updated: %+v", byID)
	}

	if err := s.UpdateUserKey(ctx, "nobody", "x", "y"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown user, got %v", err)
	}
}

func TestRecordShareAccessChecksVersionAndStatus(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.InsertShare(ctx, testShare("share-1")); err != nil {
		t.Fatalf("InsertShare failed: %v", err)
	}

	at := time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC)
	ok, err := s.RecordShareAccess(ctx, "share-1", 1, "active", at)
	if err != nil || !ok {
		t.Fatalf("Expected first access to apply, ok=%v err=%v", ok, err)
	}

	// Same version again is stale.
	ok, err = s.RecordShareAccess(ctx, "share-1", 1, "active", at)
	if err != nil {
		t.Fatalf("RecordShareAccess failed: %v", err)
	}
	if ok {
		t.Error("Expected stale version to be rejected")
	}

	if err := s.SetShareStatus(ctx, "share-1", "revoked"); err != nil {
		t.Fatalf("SetShareStatus failed: %v", err)
	}

	got, err := s.GetShare(ctx, "share-1")
	if err != nil {
		t.Fatalf("GetShare failed: %v", err)
	}
	if got.AccessCount != 1 {
		t.Errorf("Expected access count 1, got %d", got.AccessCount)
	}
	if got.Version != 3 {
		t.Errorf("Expected version 3, got %d", got.Version)
	}

	ok, _ = s.RecordShareAccess(ctx, "share-1", got.Version, "active", at)
	if ok {
		t.Error("Expected access on revoked share to be rejected")
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx *Store) error {
		if err := tx.InsertShare(ctx, testShare("share-rollback")); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected boom, got %v", err)
	}

	if _, err := s.GetShare(ctx, "share-rollback"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected rolled back share to be missing, got %v", err)
	}
}

func TestListSharesFilters(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := testShare("share-a")
	second := testShare("share-b")
	second.RecipientID = "carol"
	second.Status = "revoked"
	second.CreatedAt = first.CreatedAt.Add(time.Hour)

	for _, sh := range []*Share{first, second} {
		if err := s.InsertShare(ctx, sh); err != nil {
			t.Fatalf("InsertShare failed: %v", err)
		}
	}

	owned, err := s.ListShares(ctx, ShareQuery{OwnerID: "alice"})
	if err != nil {
		t.Fatalf("ListShares failed: %v", err)
	}
	if len(owned) != 2 || owned[0].ShareID != "share-b" {
		t.Errorf("Expected newest first, got %+v", owned)
	}

	active, _ := s.ListShares(ctx, ShareQuery{OwnerID: "alice", Statuses: []string{"active"}})
	if len(active) != 1 || active[0].ShareID != "share-a" {
		t.Errorf("Expected only share-a active, got %+v", active)
	}

	received, _ := s.ListShares(ctx, ShareQuery{RecipientID: "carol"})
	if len(received) != 1 {
		t.Errorf("Expected 1 share for carol, got %d", len(received))
	}
}

func TestResolveRequestOnlyOnce(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	req := &ShareRequest{
		RequestID:           "req-1",
		SecretTitle:         "DB admin",
		RequesterID:         "bob",
		OwnerID:             "alice",
		RequestedPermission: "write",
		Status:              "pending",
		CreatedAt:           time.Now().UTC(),
	}
	if err := s.InsertRequest(ctx, req); err != nil {
		t.Fatalf("InsertRequest failed: %v", err)
	}

	at := time.Now().UTC()
	ok, err := s.ResolveRequest(ctx, "req-1", "pending", "approved", "share-1", at)
	if err != nil || !ok {
		t.Fatalf("Expected first resolution to apply, ok=%v err=%v", ok, err)
	}

	ok, err = s.ResolveRequest(ctx, "req-1", "pending", "rejected", "", at)
	if err != nil {
		t.Fatalf("ResolveRequest failed: %v", err)
	}
	if ok {
		t.Error("Expected second resolution to be rejected")
	}

	got, _ := s.GetRequest(ctx, "req-1")
	if got.Status != "approved" || got.ShareID != "share-1" {
		t.Errorf("Unexpected request state: %+v", got)
	}
}

func TestQueryAuditOrderAndFilters(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	entries := []*AuditEntry{
		{EntryID: "e3", ShareID: "s1", ActorID: "bob", Action: "password_accessed", Timestamp: base.Add(2 * time.Hour)},
		{EntryID: "e1", ShareID: "s1", ActorID: "alice", Action: "share_created", Timestamp: base},
		{EntryID: "e2", RequestID: "r1", ActorID: "alice", Action: "request_approved", Timestamp: base.Add(time.Hour)},
	}
	for _, e := range entries {
		if err := s.AppendAudit(ctx, e); err != nil {
			t.Fatalf("AppendAudit failed: %v", err)
		}
	}

	all, err := s.QueryAudit(ctx, AuditQuery{})
	if err != nil {
		t.Fatalf("QueryAudit failed: %v", err)
	}
	if len(all) != 3 || all[0].EntryID != "e1" || all[2].EntryID != "e3" {
		t.Errorf("Expected timestamp order e1,e2,e3, got %+v", all)
	}

	alice, _ := s.QueryAudit(ctx, AuditQuery{ActorID: "alice"})
	if len(alice) != 2 {
		t.Errorf("Expected 2 entries for alice, got %d", len(alice))
	}

	window, _ := s.QueryAudit(ctx, AuditQuery{Since: base.Add(30 * time.Minute), Until: base.Add(90 * time.Minute)})
	if len(window) != 1 || window[0].EntryID != "e2" {
		t.Errorf("Expected only e2 in window, got %+v", window)
	}

	n, err := s.CountAudit(ctx, "alice", base.Add(time.Minute))
	if err != nil {
		t.Fatalf("CountAudit failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 recent entry for alice, got %d", n)
	}
}
