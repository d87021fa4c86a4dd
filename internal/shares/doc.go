// Package shares grants one user access to one secret of another.
//
// An Engine acts for a single authenticated caller. Creating a share reads
// the secret from the caller's vault, resolves the recipient's current
// public key in the directory, and stores the secret encrypted to that key.
// Only the recipient's private key can open it.
//
// # Lifecycle
//
//	active ──revoke──▶ revoked
//	   │
//	   └──expires_at passes──▶ expired (derived on read, never written)
//
// Both end states are terminal. A share is usable only while its stored
// status is active and expires_at, if set, is still in the future.
//
// # Consistency
//
// AccessShare locks the share row, checks recipient and status, decrypts,
// then bumps access_count with a write conditioned on the status and version
// it read. If a revoke committed in between, the write matches no row and
// the access fails, so no plaintext is returned after revocation. Every
// state change and its audit entry commit in the same transaction.
package shares
