// Package config loads booktracker's configuration.
//
// # Resolution Order
//
//  1. Built-in defaults
//  2. The TOML file (explicit path, or ~/.config/booktracker/config.toml)
//  3. Environment variables, after loading ./.env when it exists
//  4. Command-line flags, applied by the caller
//
// A missing config file is not an error. Empty or whitespace-only values fall
// back to the previous layer.
//
// # TOML Format
//
//	base_url = "http://localhost:3000"
//	credential_store = "keyring"   # keyring | file | memory
//	credentials_path = "~/.local/share/booktracker/credentials.toml"
//	log_file = "~/.local/state/booktracker/booktracker.log"
//	log_level = "info"             # debug | info | warn | error
//
// # Environment
//
//   - BOOKTRACKER_BASE_URL
//   - BOOKTRACKER_CREDENTIAL_STORE
//   - BOOKTRACKER_LOG_LEVEL
//
// Paths support tilde expansion and are made absolute.
package config
