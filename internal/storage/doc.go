// Package storage is a small key-value store for client-side state: session
// tokens and user preferences.
//
// Drivers:
//   - "memory" (default): process-local map, nothing survives a restart
//   - "file": JSON snapshot plus an append-only journal on an afero filesystem
//   - "sqlite": a single kv table in a SQLite database file
//   - "keyring": the OS credential store (Secret Service, Keychain, WinCred)
package storage
