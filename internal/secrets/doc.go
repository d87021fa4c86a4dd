// Package secrets owns the local user's keypair and the encryption used for
// shares.
//
// # Key Management
//
// KeyManager keeps one RSA keypair per local user under the keys directory:
//
//	<keys>/<user_id>/privkey        PKCS#1 PEM, 0600
//	<keys>/<user_id>/pubkey.pem     PKIX PEM, 0600
//	<keys>/<user_id>/metadata.toml  created_at, key_bits, fingerprint
//
// The directory is 0700. The first GetOrCreateKeypair call generates the
// pair; later calls load it and check that the three files agree. Missing
// files, unparseable keys, or a public key or fingerprint that does not
// match the private key all fail with ErrKeyStorage.
//
// The private key is only reachable through a PrivateKey handle, which can
// decrypt and nothing else.
//
// # Share Encryption
//
// Shares are encrypted for the recipient's public key with RSA-OAEP using
// SHA-256 for both the hash and MGF1. A 2048-bit key can seal up to 190
// bytes directly. Longer values use a hybrid envelope:
//
//	OAEP(32-byte key) || 24-byte nonce || secretbox(plaintext)
//
// The decoder tells the two forms apart by length: exactly the modulus size
// is direct, anything longer is the envelope. Ciphertext is stored as
// standard base64.
package secrets
