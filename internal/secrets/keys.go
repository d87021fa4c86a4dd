package secrets

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/subtle"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PolarWolf314/credshare/internal/configs"
	kerrors "github.com/PolarWolf314/credshare/internal/errors"
)

const (
	privateKeyFile = "privkey"
	publicKeyFile  = "pubkey.pem"
	metadataFile   = "metadata.toml"
)

// KeyMetadata is stored next to a keypair and checked on every load.
type KeyMetadata struct {
	CreatedAt   time.Time `toml:"created_at"`
	KeyBits     int       `toml:"key_bits"`
	Fingerprint string    `toml:"fingerprint"`
}

// PublicKeyMaterial is the shareable half of a keypair.
type PublicKeyMaterial struct {
	Key         *rsa.PublicKey
	PEM         string
	Fingerprint string
	CreatedAt   time.Time
}

// PrivateKey is a handle to a user's private key. The key itself never
// leaves this package; callers can only decrypt with it.
type PrivateKey struct {
	key *rsa.PrivateKey
}

// KeyManager creates, loads and rotates the local user's keypair.
type KeyManager struct {
	dir  string
	bits int
	now  func() time.Time
}

// NewKeyManager returns a KeyManager rooted at dir. Key sizes below
// configs.MinKeyBits are raised to it.
func NewKeyManager(dir string, bits int) *KeyManager {
	if bits < configs.MinKeyBits {
		bits = configs.MinKeyBits
	}
	return &KeyManager{dir: dir, bits: bits, now: time.Now}
}

func (m *KeyManager) userDir(userID string) (string, error) {
	if userID == "" || strings.ContainsAny(userID, `/\`) || userID == "." || userID == ".." {
		return "", fmt.Errorf("%w: invalid user id %q", kerrors.ErrKeyStorage, userID)
	}
	return filepath.Join(m.dir, userID), nil
}

// HasKeypair reports whether any key material exists for userID.
func (m *KeyManager) HasKeypair(userID string) bool {
	dir, err := m.userDir(userID)
	if err != nil {
		return false
	}
	for _, name := range []string{privateKeyFile, publicKeyFile, metadataFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// GetOrCreateKeypair loads the user's keypair, generating and persisting one
// on first use. Partial or inconsistent material is ErrKeyStorage; it is
// never silently replaced.
func (m *KeyManager) GetOrCreateKeypair(userID string) (*PrivateKey, PublicKeyMaterial, error) {
	dir, err := m.userDir(userID)
	if err != nil {
		return nil, PublicKeyMaterial{}, err
	}

	present := 0
	for _, name := range []string{privateKeyFile, publicKeyFile, metadataFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		switch {
		case err == nil:
			present++
		case !errors.Is(err, os.ErrNotExist):
			return nil, PublicKeyMaterial{}, fmt.Errorf("%w: %v", kerrors.ErrKeyStorage, err)
		}
	}

	switch present {
	case 0:
		return m.generate(dir)
	case 3:
		return m.load(dir)
	default:
		return nil, PublicKeyMaterial{}, fmt.Errorf("%w: incomplete key material in %s", kerrors.ErrKeyStorage, dir)
	}
}

// Rotate replaces the user's keypair. Shares encrypted under the old public
// key can no longer be decrypted.
func (m *KeyManager) Rotate(userID string) (*PrivateKey, PublicKeyMaterial, error) {
	dir, err := m.userDir(userID)
	if err != nil {
		return nil, PublicKeyMaterial{}, err
	}
	return m.generate(dir)
}

func (m *KeyManager) generate(dir string) (*PrivateKey, PublicKeyMaterial, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, m.bits)
	if err != nil {
		return nil, PublicKeyMaterial{}, fmt.Errorf("failed to generate RSA key pair: %w", err)
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, PublicKeyMaterial{}, fmt.Errorf("%w: failed to create key directory at %s: %v", kerrors.ErrKeyStorage, dir, err)
	}
	if err := os.Chmod(dir, 0700); err != nil {
		return nil, PublicKeyMaterial{}, fmt.Errorf("%w: %v", kerrors.ErrKeyStorage, err)
	}

	pubPEM, err := EncodePublicKeyPEM(&privateKey.PublicKey)
	if err != nil {
		return nil, PublicKeyMaterial{}, err
	}
	fingerprint, err := Fingerprint(&privateKey.PublicKey)
	if err != nil {
		return nil, PublicKeyMaterial{}, err
	}

	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	})

	meta := KeyMetadata{
		CreatedAt:   m.now().UTC(),
		KeyBits:     m.bits,
		Fingerprint: fingerprint,
	}

	// Metadata goes last so an interrupted write leaves it stale, which load rejects.
	if err := writeFileAtomic(filepath.Join(dir, privateKeyFile), privPEM); err != nil {
		return nil, PublicKeyMaterial{}, fmt.Errorf("%w: failed to save private key: %v", kerrors.ErrKeyStorage, err)
	}
	if err := writeFileAtomic(filepath.Join(dir, publicKeyFile), []byte(pubPEM)); err != nil {
		return nil, PublicKeyMaterial{}, fmt.Errorf("%w: failed to save public key: %v", kerrors.ErrKeyStorage, err)
	}
	if err := configs.SaveTOML(filepath.Join(dir, metadataFile), meta); err != nil {
		return nil, PublicKeyMaterial{}, fmt.Errorf("%w: failed to save key metadata: %v", kerrors.ErrKeyStorage, err)
	}

	return &PrivateKey{key: privateKey}, PublicKeyMaterial{
		Key:         &privateKey.PublicKey,
		PEM:         pubPEM,
		Fingerprint: fingerprint,
		CreatedAt:   meta.CreatedAt,
	}, nil
}

func (m *KeyManager) load(dir string) (*PrivateKey, PublicKeyMaterial, error) {
	privateKey, err := LoadPrivateKey(filepath.Join(dir, privateKeyFile))
	if err != nil {
		return nil, PublicKeyMaterial{}, fmt.Errorf("%w: %v", kerrors.ErrKeyStorage, err)
	}

	pubData, err := os.ReadFile(filepath.Join(dir, publicKeyFile))
	if err != nil {
		return nil, PublicKeyMaterial{}, fmt.Errorf("%w: %v", kerrors.ErrKeyStorage, err)
	}
	publicKey, err := ParsePublicKeyPEM(string(pubData))
	if err != nil {
		return nil, PublicKeyMaterial{}, fmt.Errorf("%w: %v", kerrors.ErrKeyStorage, err)
	}
	if !privateKey.PublicKey.Equal(publicKey) {
		return nil, PublicKeyMaterial{}, fmt.Errorf("%w: public key does not match private key", kerrors.ErrKeyStorage)
	}

	var meta KeyMetadata
	if err := configs.LoadTOML(filepath.Join(dir, metadataFile), &meta); err != nil {
		return nil, PublicKeyMaterial{}, fmt.Errorf("%w: failed to read key metadata: %v", kerrors.ErrKeyStorage, err)
	}
	fingerprint, err := Fingerprint(publicKey)
	if err != nil {
		return nil, PublicKeyMaterial{}, err
	}
	if subtle.ConstantTimeCompare([]byte(fingerprint), []byte(meta.Fingerprint)) != 1 {
		return nil, PublicKeyMaterial{}, fmt.Errorf("%w: key fingerprint does not match metadata", kerrors.ErrKeyStorage)
	}

	return &PrivateKey{key: privateKey}, PublicKeyMaterial{
		Key:         publicKey,
		PEM:         string(pubData),
		Fingerprint: fingerprint,
		CreatedAt:   meta.CreatedAt,
	}, nil
}

// LoadPrivateKey loads an RSA private key from disk.
func LoadPrivateKey(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(data)
	if block == nil || block.Type != "RSA PRIVATE KEY" {
		return nil, fmt.Errorf("failed to decode PEM block containing private key")
	}
	return x509.ParsePKCS1PrivateKey(block.Bytes)
}

// ParsePublicKeyPEM parses a PKIX "PUBLIC KEY" block holding an RSA key.
func ParsePublicKeyPEM(data string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(data))
	if block == nil || block.Type != "PUBLIC KEY" {
		return nil, fmt.Errorf("failed to decode PEM block containing public key")
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("not an RSA public key")
	}
	return rsaPub, nil
}

// EncodePublicKeyPEM renders pub as a PKIX PEM block.
func EncodePublicKeyPEM(pub *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", fmt.Errorf("failed to marshal public key: %w", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})), nil
}

// Fingerprint is the hex SHA-256 of the DER-encoded public key.
func Fingerprint(pub *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", fmt.Errorf("failed to marshal public key: %w", err)
	}
	sum := sha256.Sum256(der)
	return hex.EncodeToString(sum[:]), nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
