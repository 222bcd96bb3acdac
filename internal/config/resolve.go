package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultAPITimeout      = 15 * time.Second
	DefaultTelegramTimeout = 8 * time.Second
	DefaultGraceWindow     = 5 * time.Second
	DefaultToastTTL        = 4 * time.Second
)

// Settings are the typed values derived from a Config.
type Settings struct {
	APITimeout         time.Duration
	TelegramTimeout    time.Duration
	StorageBusyTimeout time.Duration
	GraceWindow        time.Duration
	ToastTTL           time.Duration
	RestoreIndex       bool
	GroupLog           int64
	Location           *time.Location
}

// Resolve parses durations and enums and applies defaults. All problems are
// reported together.
func Resolve(cfg *Config) (Settings, error) {
	if cfg == nil {
		return Settings{}, errors.New("config is nil")
	}
	var (
		s    Settings
		errs []error
		err  error
	)
	collect := func(e error) {
		if e != nil {
			errs = append(errs, e)
		}
	}

	base := strings.TrimSpace(cfg.API.BaseURL)
	if base == "" {
		collect(errors.New("api.base_url is required"))
	} else if u, perr := url.Parse(base); perr != nil || u.Scheme == "" || u.Host == "" {
		collect(fmt.Errorf("api.base_url: %q is not an absolute url", base))
	}
	if cfg.API.RatePerSec < 0 {
		collect(errors.New("api.rate_per_sec must be >= 0"))
	}

	s.APITimeout, err = parseDuration("api.timeout", cfg.API.Timeout, DefaultAPITimeout)
	collect(err)
	s.TelegramTimeout, err = parseDuration("telegram.timeout", cfg.Telegram.Timeout, DefaultTelegramTimeout)
	collect(err)
	s.StorageBusyTimeout, err = parseDuration("storage.busy_timeout", cfg.Storage.BusyTimeout, 0)
	collect(err)
	s.GraceWindow, err = parseDuration("undo.grace_window", cfg.Undo.GraceWindow, DefaultGraceWindow)
	collect(err)
	s.ToastTTL, err = parseDuration("undo.toast_ttl", cfg.Undo.ToastTTL, DefaultToastTTL)
	collect(err)

	switch strings.ToLower(strings.TrimSpace(cfg.Undo.Restore)) {
	case "", "append":
	case "index":
		s.RestoreIndex = true
	default:
		collect(fmt.Errorf("undo.restore: %q (want append or index)", cfg.Undo.Restore))
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Storage.Driver)) {
	case "", "none", "memory", "keyring":
	case "file", "sqlite", "sqlite3":
		if strings.TrimSpace(cfg.Storage.Path) == "" {
			collect(fmt.Errorf("storage.path is required for driver %q", cfg.Storage.Driver))
		}
	default:
		collect(fmt.Errorf("storage.driver: unknown driver %q", cfg.Storage.Driver))
	}

	if g := strings.TrimSpace(cfg.Telegram.GroupLog); g != "" {
		s.GroupLog, err = strconv.ParseInt(g, 10, 64)
		if err != nil {
			collect(fmt.Errorf("telegram.group_log: %q is not a chat id", g))
		}
	}
	if cfg.Logging.Telegram.Enabled && strings.TrimSpace(cfg.Telegram.Token) == "" {
		collect(errors.New("logging.telegram.enabled requires telegram.token"))
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Preferences.Language)) {
	case "", "en", "cs":
	default:
		collect(fmt.Errorf("preferences.language: %q (want en or cs)", cfg.Preferences.Language))
	}
	s.Location = time.Local
	if tz := strings.TrimSpace(cfg.Preferences.Timezone); tz != "" {
		loc, lerr := time.LoadLocation(tz)
		if lerr != nil {
			collect(fmt.Errorf("preferences.timezone: %w", lerr))
		} else {
			s.Location = loc
		}
	}

	if len(errs) > 0 {
		return Settings{}, errors.Join(errs...)
	}
	return s, nil
}

// Validate is a ConfigManager validator built on Resolve.
func Validate(_ context.Context, cfg *Config) error {
	_, err := Resolve(cfg)
	return err
}
