package credstore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const defaultService = "booktracker"

// KeyringStore keeps each key as a separate secret under one service name.
type KeyringStore struct {
	service string
}

var _ Store = (*KeyringStore)(nil)

// NewKeyringStore returns a keyring-backed store. An empty service uses
// "booktracker".
func NewKeyringStore(service string) *KeyringStore {
	if strings.TrimSpace(service) == "" {
		service = defaultService
	}
	return &KeyringStore{service: service}
}

// Save stores value under key, replacing any previous value.
func (s *KeyringStore) Save(key, value string) error {
	if err := keyring.Set(s.service, key, value); err != nil {
		return fmt.Errorf("keyring set %s: %w", key, err)
	}
	return nil
}

// Get returns the value stored under key.
func (s *KeyringStore) Get(key string) (string, bool, error) {
	value, err := keyring.Get(s.service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("keyring get %s: %w", key, err)
	}
	return value, true, nil
}

// Delete removes key. Removing a missing key is not an error.
func (s *KeyringStore) Delete(key string) error {
	if err := keyring.Delete(s.service, key); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keyring delete %s: %w", key, err)
	}
	return nil
}
