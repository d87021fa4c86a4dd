// Package audit records every state change made to shares and requests.
//
// Entries live in the audit_entries table of the shared store and are only
// ever inserted. Append takes the transaction-bound store so an entry
// commits or rolls back together with the change it describes; a failed
// append fails the whole operation.
//
// # Actions
//
//	share_created       owner created a share
//	password_accessed   recipient decrypted a share
//	share_revoked       owner revoked a share
//	request_created     requester asked an owner for a secret
//	request_approved    owner approved a request (a share_created entry precedes it)
//	request_rejected    owner rejected a request
//
// # Export
//
// WriteJSONLines exports entries as JSON Lines:
//
//	{"id":"…","ts":"2026-01-02T03:04:05Z","actor":"…","op":"share_created","share_id":"…"}
//
// ParseEntries reads that format back. Malformed lines are skipped so a
// truncated export is still usable.
package audit
