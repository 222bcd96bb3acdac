package storage

import (
	"errors"
	"time"

	"github.com/spf13/afero"
)

var (
	ErrClosed   = errors.New("storage closed")
	ErrEmptyKey = errors.New("storage key is empty")
)

// Config configures storage.
//
// Driver values: "memory" (or empty / "none"), "file", "sqlite", "keyring".
type Config struct {
	Driver string
	// Path is the file or database path (file and sqlite drivers).
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
	// Service namespaces keys in the OS keyring.
	Service string
	// Fs backs the file driver; nil means the OS filesystem.
	Fs afero.Fs
}

const DefaultKeyringService = "trackerdesk"
