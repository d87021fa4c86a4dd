package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/PolarWolf314/credshare/internal/configs"
	kerrors "github.com/PolarWolf314/credshare/internal/errors"
)

type fileContents struct {
	Secrets []Secret `toml:"secret"`
}

// File is a vault kept in a TOML file readable only by the owner.
type File struct {
	mu      sync.RWMutex
	path    string
	ownerID string
	secrets []Secret
}

// OpenFile loads the vault at path. A missing file is an empty vault.
func OpenFile(path, ownerID string) (*File, error) {
	f := &File{path: path, ownerID: ownerID}

	var contents fileContents
	err := configs.LoadTOML(path, &contents)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to load vault at %s: %w", path, err)
	default:
		f.secrets = contents.Secrets
	}
	return f, nil
}

// Add stores a new secret and writes the file.
func (f *File) Add(ctx context.Context, title, value, notes string) (Secret, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Secret{}, fmt.Errorf("secret title cannot be empty")
	}
	if value == "" {
		return Secret{}, fmt.Errorf("secret value cannot be empty")
	}

	s := Secret{
		ID:      uuid.NewString(),
		Title:   title,
		Value:   value,
		Notes:   notes,
		OwnerID: f.ownerID,
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	next := append(append([]Secret(nil), f.secrets...), s)
	if err := configs.SaveTOML(f.path, fileContents{Secrets: next}); err != nil {
		return Secret{}, fmt.Errorf("failed to save vault: %w", err)
	}
	f.secrets = next
	return s, nil
}

func (f *File) GetSecret(ctx context.Context, id string) (Secret, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, s := range f.secrets {
		if s.ID == id && s.OwnerID == f.ownerID {
			return s, nil
		}
	}
	return Secret{}, fmt.Errorf("%w: %s", kerrors.ErrSecretNotFound, id)
}

// ListSecrets returns the owner's secrets sorted by title.
func (f *File) ListSecrets(ctx context.Context) ([]Secret, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Secret, 0, len(f.secrets))
	for _, s := range f.secrets {
		if s.OwnerID == f.ownerID {
			out = append(out, s)
		}
	}
	sortSecrets(out)
	return out, nil
}

// IsSessionActive is true once the file has been opened by its owner.
func (f *File) IsSessionActive() bool {
	return f.ownerID != ""
}

// Path is where the vault is stored.
func (f *File) Path() string {
	return f.path
}
