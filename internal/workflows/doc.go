// Package workflows provides high-level orchestration for credshare commands.
//
// Each exported function implements one command: it opens a session for the
// local user (config, keypair, store, directory and vault), runs the
// operation and closes the session. The cmd/ package stays a thin layer that
// parses flags, calls a workflow and formats the result.
//
// # Error Handling
//
// Workflows return sentinel errors from the internal/errors package so the
// CLI can map them to messages with errors.Is:
//
//	_, err := workflows.Access(ctx, opts)
//	if errors.Is(err, kerrors.ErrShareNotAccessible) {
//	    // Same message for missing, revoked and expired shares
//	}
//
// A damaged keypair aborts session creation with ErrKeyStorage.
package workflows
