package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/PolarWolf314/credshare/internal/store"
)

// Action names a state change that was recorded.
type Action string

const (
	ActionShareCreated     Action = "share_created"
	ActionPasswordAccessed Action = "password_accessed"
	ActionShareRevoked     Action = "share_revoked"
	ActionRequestCreated   Action = "request_created"
	ActionRequestApproved  Action = "request_approved"
	ActionRequestRejected  Action = "request_rejected"
)

// Actions lists every known action in lifecycle order.
var Actions = []Action{
	ActionShareCreated,
	ActionPasswordAccessed,
	ActionShareRevoked,
	ActionRequestCreated,
	ActionRequestApproved,
	ActionRequestRejected,
}

// ParseAction rejects names that are not a known Action.
func ParseAction(s string) (Action, error) {
	for _, a := range Actions {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown audit action %q", s)
}

// Entry is one audit record. Exactly one of ShareID and RequestID is set.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"ts"`
	Actor     string    `json:"actor"`
	Action    Action    `json:"op"`
	ShareID   string    `json:"share_id,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

// Writer is the store surface Append needs. Pass the transaction-bound store
// so the entry commits with the state change it describes.
type Writer interface {
	AppendAudit(ctx context.Context, e *store.AuditEntry) error
}

// Reader is the store surface Query needs.
type Reader interface {
	QueryAudit(ctx context.Context, q store.AuditQuery) ([]store.AuditEntry, error)
}

// Append records e. It assigns the id, and the timestamp when unset.
// There is no way to change or remove an entry once written.
func Append(ctx context.Context, w Writer, e Entry) (Entry, error) {
	if e.Actor == "" {
		return Entry{}, fmt.Errorf("audit entry requires an actor")
	}
	if _, err := ParseAction(string(e.Action)); err != nil {
		return Entry{}, err
	}
	if (e.ShareID == "") == (e.RequestID == "") {
		return Entry{}, fmt.Errorf("audit entry needs exactly one of share id or request id")
	}

	e.ID = uuid.NewString()
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	e.Timestamp = e.Timestamp.UTC()

	row := &store.AuditEntry{
		EntryID:   e.ID,
		ShareID:   e.ShareID,
		RequestID: e.RequestID,
		ActorID:   e.Actor,
		Action:    string(e.Action),
		Timestamp: e.Timestamp,
	}
	if err := w.AppendAudit(ctx, row); err != nil {
		return Entry{}, fmt.Errorf("failed to append audit entry: %w", err)
	}
	return e, nil
}

// Filter selects entries. Zero values do not filter.
type Filter struct {
	Actor     string
	Actions   []Action
	ShareID   string
	RequestID string
	Since     time.Time
	Until     time.Time

	// Limit keeps the N most recent matches. 0 means no limit.
	Limit int

	// Reverse orders newest first.
	Reverse bool
}

// Query returns matching entries oldest first, or newest first with Reverse.
func Query(ctx context.Context, r Reader, f Filter) ([]Entry, error) {
	q := store.AuditQuery{
		ActorID:   f.Actor,
		ShareID:   f.ShareID,
		RequestID: f.RequestID,
		Since:     f.Since,
		Until:     f.Until,
	}
	for _, a := range f.Actions {
		q.Actions = append(q.Actions, string(a))
	}

	rows, err := r.QueryAudit(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, Entry{
			ID:        row.EntryID,
			Timestamp: row.Timestamp.UTC(),
			Actor:     row.ActorID,
			Action:    Action(row.Action),
			ShareID:   row.ShareID,
			RequestID: row.RequestID,
		})
	}

	if f.Limit > 0 && len(entries) > f.Limit {
		entries = entries[len(entries)-f.Limit:]
	}
	if f.Reverse {
		for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
			entries[i], entries[j] = entries[j], entries[i]
		}
	}
	return entries, nil
}

// WriteJSONLines writes entries as JSON Lines, one object per line.
func WriteJSONLines(w io.Writer, entries []Entry) error {
	enc := json.NewEncoder(w)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			return err
		}
	}
	return nil
}

// ParseEntries parses JSON Lines data into audit entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var entries []Entry
	start := 0

	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := data[start:i]
			start = i + 1

			if len(line) == 0 {
				continue
			}

			var entry Entry
			if err := json.Unmarshal(line, &entry); err != nil {
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

// FormatDate formats a timestamp as YYYY-MM-DD in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// FormatDateTime formats a timestamp as YYYY-MM-DD HH:MM:SS in UTC.
func FormatDateTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}

// Subject is the share or request the entry is about.
func (e Entry) Subject() string {
	if e.ShareID != "" {
		return "share " + e.ShareID
	}
	return "request " + e.RequestID
}
