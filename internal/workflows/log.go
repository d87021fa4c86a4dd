package workflows

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PolarWolf314/credshare/internal/audit"
	kerrors "github.com/PolarWolf314/credshare/internal/errors"
)

// LogOptions configures the log workflow.
type LogOptions struct {
	Common

	// Limit is the maximum number of entries to return. 0 means no limit.
	Limit int

	// Reverse orders entries from most recent to oldest when true.
	Reverse bool

	// User filters entries by actor email or user id.
	User string

	// Operations filters entries by action (comma-separated).
	Operations string

	// ShareID and RequestID filter entries about one subject.
	ShareID   string
	RequestID string

	// Since filters entries on or after this date (YYYY-MM-DD format).
	Since string

	// Until filters entries on or before this date (YYYY-MM-DD format).
	Until string
}

// LogEntry is an audit entry with its actor rendered for display.
type LogEntry struct {
	audit.Entry
	ActorEmail string
}

// LogResult contains the outcome of a log operation.
type LogResult struct {
	Entries []LogEntry
}

// Log reads and filters the shared audit log.
//
// Returns ErrInvalidDateFormat if the date format is invalid.
// Returns ErrRecipientNotFound if User names nobody in the directory.
func Log(ctx context.Context, opts LogOptions) (*LogResult, error) {
	filter := audit.Filter{
		ShareID:   strings.TrimSpace(opts.ShareID),
		RequestID: strings.TrimSpace(opts.RequestID),
		Limit:     opts.Limit,
		Reverse:   opts.Reverse,
	}

	if opts.Operations != "" {
		for _, op := range strings.Split(opts.Operations, ",") {
			op = strings.ToLower(strings.TrimSpace(op))
			if op == "" {
				continue
			}
			action, err := audit.ParseAction(op)
			if err != nil {
				return nil, err
			}
			filter.Actions = append(filter.Actions, action)
		}
	}

	if opts.Since != "" {
		since, err := time.Parse("2006-01-02", opts.Since)
		if err != nil {
			return nil, fmt.Errorf("%w: --since date format invalid, use YYYY-MM-DD", kerrors.ErrInvalidDateFormat)
		}
		filter.Since = since
	}
	if opts.Until != "" {
		until, err := time.Parse("2006-01-02", opts.Until)
		if err != nil {
			return nil, fmt.Errorf("%w: --until date format invalid, use YYYY-MM-DD", kerrors.ErrInvalidDateFormat)
		}
		// Include the entire day.
		filter.Until = until.Add(24*time.Hour - time.Nanosecond)
	}

	s, err := openSession(ctx, opts.Common)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	if opts.User != "" {
		entry, err := s.directory.Resolve(ctx, opts.User)
		if err != nil {
			return nil, err
		}
		filter.Actor = entry.UserID
	}

	entries, err := audit.Query(ctx, s.store, filter)
	if err != nil {
		return nil, err
	}

	emails := map[string]string{}
	result := &LogResult{Entries: make([]LogEntry, 0, len(entries))}
	for _, e := range entries {
		email, ok := emails[e.Actor]
		if !ok {
			email = s.describeUser(ctx, e.Actor)
			emails[e.Actor] = email
		}
		result.Entries = append(result.Entries, LogEntry{Entry: e, ActorEmail: email})
	}
	return result, nil
}
