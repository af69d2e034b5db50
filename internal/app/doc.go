// Package app is the composition root for booktracker.
//
// # Overview
//
// Build wires configuration, logging, the credential store, the API client
// and the session controller together. Run builds a Runtime and hands it to
// the TUI; the cli package uses Build directly for one-shot subcommands.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Build()    │
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()        file, .env, environment
//	       ├─────> logging.New()        slog to the log file
//	       ├─────> credstore.Open()     keyring | file | memory
//	       ├─────> api.NewClient()      reads the store before each call
//	       └─────> session.New()        flag seeded from the store, once
//
// The session controller is created exactly once per process and handed to
// every consumer; there is no package-level session state.
package app
