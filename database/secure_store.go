package database

import (
	"linkup/securestore"
)

// SecretStore persists credential store entries in the secure_store table
type SecretStore struct {
	db *DB
}

// NewSecretStore returns a securestore.Store backed by db
func NewSecretStore(db *DB) *SecretStore {
	return &SecretStore{db: db}
}

func (s *SecretStore) Get(key string) (string, error) {
	var value string
	err := s.db.sql.QueryRow("SELECT value FROM secure_store WHERE key = ?", key).Scan(&value)
	if err != nil {
		if notFound(err) == ErrNotFound {
			return "", securestore.ErrNotFound
		}
		return "", err
	}
	return value, nil
}

func (s *SecretStore) Set(key, value string) error {
	_, err := s.db.sql.Exec(
		`INSERT INTO secure_store (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now(),
	)
	return err
}

func (s *SecretStore) Delete(key string) error {
	_, err := s.db.sql.Exec("DELETE FROM secure_store WHERE key = ?", key)
	return err
}
