package app

import (
	"os"
	"path/filepath"
	"strings"

	"trackerdesk/internal/config"
	"trackerdesk/internal/storage"
)

// mapStorageConfig turns the storage section into a storage.Config. The
// config has already passed config.Resolve.
func mapStorageConfig(cfg *config.Config, s config.Settings) storage.Config {
	sc := cfg.Storage
	driver := strings.ToLower(strings.TrimSpace(sc.Driver))
	switch driver {
	case "", "none":
		driver = "memory"
	case "sqlite3":
		driver = "sqlite"
	}
	return storage.Config{
		Driver:      driver,
		Path:        expandHome(strings.TrimSpace(sc.Path)),
		BusyTimeout: s.StorageBusyTimeout,
		Service:     strings.TrimSpace(sc.Service),
	}
}

// expandHome resolves a leading "~/" against the user's home directory.
func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
