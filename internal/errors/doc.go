// Package errors provides typed error values for credshare.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching. Every
// operation of the share engine and request workflow returns one of these
// values (possibly wrapped), so the CLI layer can map each one to a message.
//
// # Error Categories
//
//   - Sharing errors: ErrSecretNotFound, ErrRecipientNotFound, ErrShareNotAccessible, ...
//   - Crypto errors: ErrEncryptionFailure, ErrDecryptionFailure, ErrKeyStorage
//   - User errors: ErrEmailTaken, ErrInvalidEmail, ErrNotInitialized
//   - Store and input errors: ErrStoreUnavailable, ErrInvalidDateFormat
//
// ErrShareNotAccessible is deliberately returned for a share that does not
// exist, belongs to someone else, or is revoked or expired. Callers must not
// try to tell these apart.
//
// ErrKeyStorage is the only error that ends a user session: without a usable
// private key no inbound share can be decrypted.
//
// # Usage
//
//	shareID, err := engine.CreateShare(ctx, secretID, "bob@example.com", shares.PermissionRead, 0)
//	if errors.Is(err, kerrors.ErrRecipientNotFound) {
//	    // Show user-friendly message
//	}
package errors
