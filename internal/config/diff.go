package config

import (
	"strings"

	logx "trackerdesk/pkg/logx"
)

// SummarizeChange returns the sections that differ between two configs and
// safe structured attrs for logging. Tokens are never logged.
func SummarizeChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}
	changed := make([]string, 0, 6)
	attrs := make([]logx.Field, 0, 12)

	if oldCfg.API != newCfg.API {
		changed = append(changed, "api")
		attrs = append(attrs,
			logx.String("api.base_url", newCfg.API.BaseURL),
			logx.String("api.timeout", newCfg.API.Timeout),
			logx.Int("api.rate_per_sec", newCfg.API.RatePerSec),
		)
	}
	if oldCfg.Logging != newCfg.Logging {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logging.level", newCfg.Logging.Level),
			logx.Bool("logging.console", newCfg.Logging.Console),
			logx.Bool("logging.file_enabled", newCfg.Logging.File.Enabled),
			logx.Bool("logging.telegram_enabled", newCfg.Logging.Telegram.Enabled),
		)
	}
	if strings.TrimSpace(oldCfg.Telegram.GroupLog) != strings.TrimSpace(newCfg.Telegram.GroupLog) ||
		oldCfg.Telegram.Timeout != newCfg.Telegram.Timeout ||
		oldCfg.Telegram.Token != newCfg.Telegram.Token {
		changed = append(changed, "telegram")
		attrs = append(attrs,
			logx.Bool("telegram.token_set", strings.TrimSpace(newCfg.Telegram.Token) != ""),
			logx.Bool("telegram.group_log_set", strings.TrimSpace(newCfg.Telegram.GroupLog) != ""),
		)
	}
	if oldCfg.Storage != newCfg.Storage {
		// Storage is opened once; a change only takes effect on restart.
		changed = append(changed, "storage")
		attrs = append(attrs, logx.String("storage.driver", newCfg.Storage.Driver))
	}
	if oldCfg.Undo != newCfg.Undo {
		changed = append(changed, "undo")
		attrs = append(attrs,
			logx.String("undo.grace_window", newCfg.Undo.GraceWindow),
			logx.String("undo.toast_ttl", newCfg.Undo.ToastTTL),
			logx.String("undo.restore", newCfg.Undo.Restore),
		)
	}
	if oldCfg.Preferences != newCfg.Preferences {
		changed = append(changed, "preferences")
		attrs = append(attrs,
			logx.String("preferences.language", newCfg.Preferences.Language),
			logx.String("preferences.timezone", newCfg.Preferences.Timezone),
		)
	}
	return changed, attrs
}
