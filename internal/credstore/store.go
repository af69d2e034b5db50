// Package credstore persists the session credentials (api key and user id).
//
// Three backends implement Store:
//
//   - KeyringStore: the OS secret service (Keychain, Secret Service, Windows
//     Credential Manager) via github.com/zalando/go-keyring.
//   - FileStore: a 0600 TOML file for hosts without a secret service.
//   - MemoryStore: process-local, used by tests and ephemeral sessions.
//
// Absence is never an error: Get reports it through its bool result and
// Delete of an absent key succeeds.
package credstore

import (
	"fmt"
	"strings"
)

// Logical keys holding the session.
const (
	KeyAPIKey = "api_key"
	KeyUserID = "user_id"
)

// Backend names accepted by Open.
const (
	BackendKeyring = "keyring"
	BackendFile    = "file"
	BackendMemory  = "memory"
)

// Store is durable string key/value storage for session credentials.
type Store interface {
	Save(key, value string) error
	Get(key string) (value string, ok bool, err error)
	Delete(key string) error
}

// Open returns the Store for backend. path is only used by the file backend.
func Open(backend, path string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendKeyring:
		return NewKeyringStore(""), nil
	case BackendFile:
		return NewFileStore(path)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown credential store %q", backend)
	}
}
