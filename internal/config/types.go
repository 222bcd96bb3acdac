package config

// Config is the on-disk configuration (JSON or YAML).
//
// All durations are Go duration strings (e.g. "500ms", "5s", "1m").
type Config struct {
	API         APIConfig         `json:"api"`
	Logging     LoggingConfig     `json:"logging"`
	Telegram    TelegramConfig    `json:"telegram"`
	Storage     StorageConfig     `json:"storage"`
	Undo        UndoConfig        `json:"undo"`
	Preferences PreferencesConfig `json:"preferences"`
}

// APIConfig points the client at the tracker backend.
//
// Defaults: timeout "15s", rate_per_sec 5, user_agent "trackerdesk".
type APIConfig struct {
	BaseURL    string `json:"base_url"`
	Timeout    string `json:"timeout,omitempty"`
	RatePerSec int    `json:"rate_per_sec,omitempty"`
	UserAgent  string `json:"user_agent,omitempty"`
}

type LoggingConfig struct {
	Level    string          `json:"level"`
	Console  bool            `json:"console"`
	File     LoggingFile     `json:"file"`
	Telegram LoggingTelegram `json:"telegram"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// LoggingTelegram forwards warnings to telegram.group_log.
type LoggingTelegram struct {
	Enabled    bool   `json:"enabled"`
	ThreadID   int    `json:"thread_id"`
	MinLevel   string `json:"min_level"`
	RatePerSec int    `json:"rate_per_sec"`
}

// TelegramConfig is only used by the ops log sink; no updates are polled.
type TelegramConfig struct {
	Token string `json:"token"`
	// GroupLog is the numeric chat id receiving log lines.
	GroupLog string `json:"group_log"`
	Timeout  string `json:"timeout,omitempty"`
}

// StorageConfig selects the key-value store for tokens and preferences.
//
// Example:
//
//	"storage": { "driver": "file", "path": "~/.config/trackerdesk/state.json" }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path,omitempty"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // sqlite
	Service     string `json:"service,omitempty"`      // keyring
}

// UndoConfig tunes optimistic deletes and toasts.
//
// Defaults: grace_window "5s", toast_ttl "4s", restore "append".
type UndoConfig struct {
	GraceWindow string `json:"grace_window,omitempty"`
	ToastTTL    string `json:"toast_ttl,omitempty"`
	// Restore is "append" (end of list) or "index" (original position).
	Restore string `json:"restore,omitempty"`
}

type PreferencesConfig struct {
	// Language is the default when none is stored: "en" or "cs".
	Language string `json:"language,omitempty"`
	// Timezone is an IANA name used for next-run times; empty means local.
	Timezone string `json:"timezone,omitempty"`
}
