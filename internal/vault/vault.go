package vault

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	kerrors "github.com/PolarWolf314/credshare/internal/errors"
)

// Secret is one credential owned by the local user.
type Secret struct {
	ID      string `toml:"id"`
	Title   string `toml:"title"`
	Value   string `toml:"value"`
	Notes   string `toml:"notes,omitempty"`
	OwnerID string `toml:"owner_id"`
}

// Memory is an in-process vault. It starts unlocked.
type Memory struct {
	mu      sync.RWMutex
	ownerID string
	secrets map[string]Secret
	locked  bool
}

// NewMemory returns an empty vault owned by ownerID.
func NewMemory(ownerID string) *Memory {
	return &Memory{ownerID: ownerID, secrets: make(map[string]Secret)}
}

// Put stores s, assigning an id if it has none. The owner is always the vault's.
func (m *Memory) Put(s Secret) Secret {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.OwnerID = m.ownerID
	m.secrets[s.ID] = s
	return s
}

func (m *Memory) GetSecret(ctx context.Context, id string) (Secret, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.secrets[id]
	if !ok || s.OwnerID != m.ownerID {
		return Secret{}, fmt.Errorf("%w: %s", kerrors.ErrSecretNotFound, id)
	}
	return s, nil
}

func (m *Memory) ListSecrets(ctx context.Context) ([]Secret, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Secret, 0, len(m.secrets))
	for _, s := range m.secrets {
		out = append(out, s)
	}
	sortSecrets(out)
	return out, nil
}

func (m *Memory) IsSessionActive() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return !m.locked
}

// Lock ends the session; sharing operations fail until Unlock.
func (m *Memory) Lock() {
	m.mu.Lock()
	m.locked = true
	m.mu.Unlock()
}

func (m *Memory) Unlock() {
	m.mu.Lock()
	m.locked = false
	m.mu.Unlock()
}

// FindByTitle returns the one secret whose title matches case-insensitively.
// No match, or more than one, is ErrSecretNotFound.
func FindByTitle(list []Secret, title string) (Secret, error) {
	var found []Secret
	for _, s := range list {
		if strings.EqualFold(strings.TrimSpace(s.Title), strings.TrimSpace(title)) {
			found = append(found, s)
		}
	}
	switch len(found) {
	case 1:
		return found[0], nil
	case 0:
		return Secret{}, fmt.Errorf("%w: no secret titled %q", kerrors.ErrSecretNotFound, title)
	default:
		return Secret{}, fmt.Errorf("%w: %d secrets titled %q, pass a secret id", kerrors.ErrSecretNotFound, len(found), title)
	}
}

func sortSecrets(list []Secret) {
	sort.Slice(list, func(i, j int) bool {
		if !strings.EqualFold(list[i].Title, list[j].Title) {
			return strings.ToLower(list[i].Title) < strings.ToLower(list[j].Title)
		}
		return list[i].ID < list[j].ID
	})
}
