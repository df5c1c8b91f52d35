package securestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"linkup/models"
)

// Keys used by the client
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
	KeyProfileImage = "userProfileImage"
)

// ErrNotFound is returned by Get for absent keys
var ErrNotFound = errors.New("securestore: key not found")

// Store is process wide key/value secret storage. Implementations must be
// safe for concurrent use.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// MemoryStore keeps values in memory only
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore returns an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	delete(m.values, key)
	m.mu.Unlock()
	return nil
}

// Token returns the stored access token, or "" when signed out
func Token(s Store) (string, error) {
	tok, err := s.Get(KeyAccessToken)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return tok, err
}

// LoadUser decodes the stored account user
func LoadUser(s Store) (*models.AccountUser, error) {
	raw, err := s.Get(KeyUser)
	if err != nil {
		return nil, err
	}
	var u models.AccountUser
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("decode stored user: %w", err)
	}
	return &u, nil
}

// SaveUser encodes and stores the account user
func SaveUser(s Store, u *models.AccountUser) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.Set(KeyUser, string(raw))
}

// Clear removes every key written on sign in
func Clear(s Store) error {
	for _, k := range []string{KeyAccessToken, KeyRefreshToken, KeyUser} {
		if err := s.Delete(k); err != nil {
			return fmt.Errorf("delete %s: %w", k, err)
		}
	}
	return nil
}
