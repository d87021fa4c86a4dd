package secrets

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"

	kerrors "github.com/PolarWolf314/credshare/internal/errors"
)

const (
	symmetricKeySize = 32
	nonceSize        = 24
)

// oaepCeiling is the largest plaintext RSA-OAEP with SHA-256 can seal under pub.
func oaepCeiling(pub *rsa.PublicKey) int {
	return pub.Size() - 2*sha256.Size - 2
}

// EncryptForRecipient encrypts plaintext so only the holder of pub's private
// key can read it.
//
// Short plaintext is sealed directly with RSA-OAEP (SHA-256), giving exactly
// pub.Size() bytes. Anything longer gets a fresh 32-byte key wrapped with
// RSA-OAEP, followed by a 24-byte nonce and the NaCl secretbox of the
// plaintext.
func EncryptForRecipient(pub *rsa.PublicKey, plaintext []byte) ([]byte, error) {
	if pub == nil {
		return nil, fmt.Errorf("%w: no public key", kerrors.ErrEncryptionFailure)
	}

	if len(plaintext) <= oaepCeiling(pub) {
		out, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, plaintext, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", kerrors.ErrEncryptionFailure, err)
		}
		return out, nil
	}

	symKey, err := CreateSymmetricKey()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrEncryptionFailure, err)
	}
	wrapped, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, symKey, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrEncryptionFailure, err)
	}

	var key [symmetricKeySize]byte
	copy(key[:], symKey)

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrEncryptionFailure, err)
	}

	out := make([]byte, 0, len(wrapped)+nonceSize+len(plaintext)+secretbox.Overhead)
	out = append(out, wrapped...)
	out = append(out, nonce[:]...)
	return secretbox.Seal(out, plaintext, &nonce, &key), nil
}

// Decrypt reverses EncryptForRecipient. Any failure, including ciphertext
// produced for a different key, is ErrDecryptionFailure.
func (p *PrivateKey) Decrypt(ciphertext []byte) ([]byte, error) {
	if p == nil || p.key == nil {
		return nil, fmt.Errorf("%w: no private key", kerrors.ErrDecryptionFailure)
	}
	k := p.key.Size()

	switch {
	case len(ciphertext) == k:
		out, err := rsa.DecryptOAEP(sha256.New(), nil, p.key, ciphertext, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", kerrors.ErrDecryptionFailure, err)
		}
		return out, nil

	case len(ciphertext) >= k+nonceSize+secretbox.Overhead:
		symKey, err := rsa.DecryptOAEP(sha256.New(), nil, p.key, ciphertext[:k], nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", kerrors.ErrDecryptionFailure, err)
		}
		if len(symKey) != symmetricKeySize {
			return nil, fmt.Errorf("%w: wrapped key has wrong length", kerrors.ErrDecryptionFailure)
		}
		var key [symmetricKeySize]byte
		copy(key[:], symKey)

		var nonce [nonceSize]byte
		copy(nonce[:], ciphertext[k:k+nonceSize])

		out, ok := secretbox.Open(nil, ciphertext[k+nonceSize:], &nonce, &key)
		if !ok {
			return nil, fmt.Errorf("%w: failed to decrypt ciphertext with secretbox", kerrors.ErrDecryptionFailure)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: ciphertext has unexpected length %d", kerrors.ErrDecryptionFailure, len(ciphertext))
	}
}

// DecryptString decodes base64 ciphertext and decrypts it.
func (p *PrivateKey) DecryptString(encoded string) (string, error) {
	raw, err := DecodeCiphertext(encoded)
	if err != nil {
		return "", err
	}
	out, err := p.Decrypt(raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// EncryptString encrypts s for pub and returns it base64 encoded for storage.
func EncryptString(pub *rsa.PublicKey, s string) (string, error) {
	out, err := EncryptForRecipient(pub, []byte(s))
	if err != nil {
		return "", err
	}
	return EncodeCiphertext(out), nil
}

// EncodeCiphertext is the storage encoding for ciphertext.
func EncodeCiphertext(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// DecodeCiphertext reverses EncodeCiphertext.
func DecodeCiphertext(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: stored ciphertext is not valid base64", kerrors.ErrDecryptionFailure)
	}
	return b, nil
}

// CreateSymmetricKey generates a new random symmetric key.
func CreateSymmetricKey() ([]byte, error) {
	symKey := make([]byte, symmetricKeySize)
	if _, err := rand.Read(symKey); err != nil {
		return nil, err
	}
	return symKey, nil
}
