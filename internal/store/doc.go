// Package store is the persistent store shared by every credshare user.
//
// It keeps four tables, managed with gorm:
//
//   - users: the directory (user id, email, public key)
//   - shares: one row per grant, holding recipient-encrypted ciphertext
//   - share_requests: access requests and their resolution
//   - audit_entries: the append-only audit log
//
// # Engines
//
// Two engines are supported:
//
//   - sqlite (github.com/glebarez/sqlite, pure Go): a local file. Several
//     users on one machine can point at the same file; replicating it between
//     machines is out of scope.
//   - postgres (gorm.io/driver/postgres): the shared remote database for
//     multi-user, multi-machine deployments.
//
// # Consistency
//
// Every state change and its audit entry are written in one transaction
// (WithTx). Check-then-act sequences lock the row first (LockShare,
// LockRequest): postgres takes a FOR UPDATE row lock, sqlite runs with a
// single connection so writers are serialized. The final writes are also
// conditional (RecordShareAccess checks status and version, ResolveRequest
// checks the prior status), so a lost race is reported as "no rows
// affected" instead of silently overwriting.
//
// A Store obtained inside WithTx is bound to that transaction. Do not call
// methods on the outer Store from inside the callback: with sqlite this
// would wait for the connection the transaction holds.
package store
