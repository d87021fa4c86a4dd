package errors

import "errors"

// Sharing errors are returned by the share engine and request workflow.
var (
	// ErrSecretNotFound indicates the vault has no secret with that id owned by the caller.
	ErrSecretNotFound = errors.New("secret not found")

	// ErrRecipientNotFound indicates the identifier does not resolve to a known user.
	ErrRecipientNotFound = errors.New("recipient not found")

	// ErrSelfShareRejected indicates a user attempted to share a secret with themselves.
	ErrSelfShareRejected = errors.New("cannot share a secret with yourself")

	// ErrSelfRequestRejected indicates a user attempted to request a secret from themselves.
	ErrSelfRequestRejected = errors.New("cannot request a secret from yourself")

	// ErrShareNotAccessible covers missing, foreign, revoked and expired shares alike.
	ErrShareNotAccessible = errors.New("share is not accessible")

	// ErrRequestAlreadyResolved indicates the request was already approved or rejected.
	ErrRequestAlreadyResolved = errors.New("request has already been resolved")

	// ErrRequestNotFound indicates no request exists with that id.
	ErrRequestNotFound = errors.New("request not found")

	// ErrUnauthorized indicates the caller is neither owner nor recipient for the action,
	// or has no active vault session.
	ErrUnauthorized = errors.New("not authorized")

	// ErrInvalidPermission indicates a permission other than read, write or admin.
	ErrInvalidPermission = errors.New("invalid permission")

	// ErrInvalidDecision indicates a request response other than approve or reject.
	ErrInvalidDecision = errors.New("invalid decision")
)

// Cryptographic errors indicate failures during encryption or decryption operations.
var (
	// ErrEncryptionFailure indicates a secret could not be encrypted for the recipient.
	ErrEncryptionFailure = errors.New("failed to encrypt secret for recipient")

	// ErrDecryptionFailure indicates the share payload could not be decrypted with the local key.
	ErrDecryptionFailure = errors.New("failed to decrypt shared secret")

	// ErrKeyStorage indicates the local key material is missing, unreadable or corrupt.
	ErrKeyStorage = errors.New("local key storage is missing or corrupt")
)

// User errors indicate issues with user-related operations.
var (
	// ErrEmailTaken indicates another user is already registered with that email.
	ErrEmailTaken = errors.New("email already registered to another user")

	// ErrInvalidEmail indicates the email format is invalid.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrNotInitialized indicates the local user has not run init yet.
	ErrNotInitialized = errors.New("credshare has not been initialized")
)

// Store and input errors.
var (
	// ErrStoreUnavailable indicates the persistent store could not be opened.
	ErrStoreUnavailable = errors.New("persistent store unavailable")

	// ErrInvalidDateFormat indicates a date filter could not be parsed.
	ErrInvalidDateFormat = errors.New("invalid date format")
)
