package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PolarWolf314/credshare/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(store.Config{
		Driver: store.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "store.db"),
	})
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppend_AssignsIDAndTimestamp(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	e, err := Append(ctx, s, Entry{Actor: "alice", Action: ActionShareCreated, ShareID: "share-1"})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if e.ID == "" {
		t.Error("Expected entry id to be assigned")
	}
	if e.Timestamp.IsZero() || e.Timestamp.Location() != time.UTC {
		t.Errorf("Expected UTC timestamp, got %v", e.Timestamp)
	}

	entries, err := Query(ctx, s, Filter{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != e.ID {
		t.Errorf("Expected the appended entry back, got %+v", entries)
	}
}

func TestAppend_RejectsInvalidEntries(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		entry Entry
	}{
		{"no actor", Entry{Action: ActionShareCreated, ShareID: "s"}},
		{"unknown action", Entry{Actor: "a", Action: "share_deleted", ShareID: "s"}},
		{"no subject", Entry{Actor: "a", Action: ActionShareCreated}},
		{"two subjects", Entry{Actor: "a", Action: ActionShareCreated, ShareID: "s", RequestID: "r"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Append(ctx, s, tt.entry); err == nil {
				t.Error("Expected error")
			}
		})
	}

	entries, _ := Query(ctx, s, Filter{})
	if len(entries) != 0 {
		t.Errorf("Expected no entries to be written, got %d", len(entries))
	}
}

func TestQuery_FiltersLimitAndReverse(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	appendAt := func(offset time.Duration, actor string, action Action, shareID string) {
		t.Helper()
		if _, err := Append(ctx, s, Entry{Timestamp: base.Add(offset), Actor: actor, Action: action, ShareID: shareID}); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	appendAt(0, "alice", ActionShareCreated, "s1")
	appendAt(time.Hour, "bob", ActionPasswordAccessed, "s1")
	appendAt(2*time.Hour, "bob", ActionPasswordAccessed, "s1")
	appendAt(3*time.Hour, "alice", ActionShareRevoked, "s1")

	bob, _ := Query(ctx, s, Filter{Actor: "bob"})
	if len(bob) != 2 {
		t.Errorf("Expected 2 entries for bob, got %d", len(bob))
	}

	created, _ := Query(ctx, s, Filter{Actions: []Action{ActionShareCreated, ActionShareRevoked}})
	if len(created) != 2 || created[0].Action != ActionShareCreated {
		t.Errorf("Expected created then revoked, got %+v", created)
	}

	latest, _ := Query(ctx, s, Filter{Limit: 2})
	if len(latest) != 2 || latest[1].Action != ActionShareRevoked {
		t.Errorf("Expected the two most recent entries oldest first, got %+v", latest)
	}

	reversed, _ := Query(ctx, s, Filter{Limit: 2, Reverse: true})
	if len(reversed) != 2 || reversed[0].Action != ActionShareRevoked {
		t.Errorf("Expected the two most recent entries newest first, got %+v", reversed)
	}

	since, _ := Query(ctx, s, Filter{Since: base.Add(90 * time.Minute)})
	if len(since) != 2 {
		t.Errorf("Expected 2 entries since 10:30, got %d", len(since))
	}
}

func TestWriteJSONLines_RoundTrip(t *testing.T) {
	ts := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	entries := []Entry{
		{ID: "e1", Timestamp: ts, Actor: "alice", Action: ActionShareCreated, ShareID: "s1"},
		{ID: "e2", Timestamp: ts.Add(time.Minute), Actor: "bob", Action: ActionRequestCreated, RequestID: "r1"},
	}

	var buf bytes.Buffer
	if err := WriteJSONLines(&buf, entries); err != nil {
		t.Fatalf("WriteJSONLines failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &raw); err != nil {
		t.Fatalf("First line is not valid JSON: %v", err)
	}
	if _, ok := raw["request_id"]; ok {
		t.Error("Expected empty request_id to be omitted")
	}
	if raw["op"] != "share_created" {
		t.Errorf("Expected op share_created, got %v", raw["op"])
	}

	parsed, err := ParseEntries(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseEntries failed: %v", err)
	}
	if len(parsed) != 2 || !parsed[1].Timestamp.Equal(entries[1].Timestamp) || parsed[1].RequestID != "r1" {
		t.Errorf("Round trip mismatch: %+v", parsed)
	}
}

func TestParseEntries_SkipsMalformedLines(t *testing.T) {
	data := []byte(`{"ts":"2024-01-15T10:30:00.123456Z","actor":"alice","op":"share_created","share_id":"s1"}
this is not valid json
{"ts":"2024-01-15T10:35:00.456789Z","actor":"bob","op":"password_accessed","share_id":"s1"}
`)

	entries, err := ParseEntries(data)
	if err != nil {
		t.Fatalf("ParseEntries failed: %v", err)
	}

	if len(entries) != 2 {
		t.Errorf("Expected 2 valid entries (malformed should be skipped), got %d", len(entries))
	}
	if entries[1].Actor != "bob" {
		t.Errorf("Expected second actor bob, got %s", entries[1].Actor)
	}
}

func TestParseEntries_EmptyData(t *testing.T) {
	entries, err := ParseEntries([]byte{})
	if err != nil {
		t.Fatalf("ParseEntries failed: %v", err)
	}

	if entries != nil {
		t.Errorf("Expected nil entries for empty data, got %v", entries)
	}
}

func TestFormatDateTime(t *testing.T) {
	ts := time.Date(2026, 7, 4, 18, 5, 9, 0, time.FixedZone("X", 2*3600))
	if got := FormatDateTime(ts); got != "2026-07-04 16:05:09" {
		t.Errorf("Expected UTC rendering, got %s", got)
	}
	if got := FormatDate(ts); got != "2026-07-04" {
		t.Errorf("Expected 2026-07-04, got %s", got)
	}
}
