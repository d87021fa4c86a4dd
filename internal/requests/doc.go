// Package requests lets a user ask an owner for one of their secrets.
//
// A request names the secret by title, since the requester cannot see the
// owner's vault. The owner approves it, which creates a share through the
// share engine, or rejects it:
//
//	pending ──approve──▶ approved (linked to the new share)
//	   └─────reject───▶ rejected
//
// Resolution is guarded twice: the request row is locked and re-checked
// inside the transaction, and the final update only matches a row that is
// still pending. A second response fails with ErrRequestAlreadyResolved.
package requests
