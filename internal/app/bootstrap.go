package app

import (
	"strings"

	"trackerdesk/internal/config"
	"trackerdesk/internal/optimistic"
	"trackerdesk/internal/telegram"
	logx "trackerdesk/pkg/logx"
)

// mapLoggingConfig maps the logging section; the ops chat comes from
// telegram.group_log.
func mapLoggingConfig(cfg *config.Config, s config.Settings) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    expandHome(strings.TrimSpace(cfg.Logging.File.Path)),
		},
		Telegram: logx.TelegramConfig{
			Enabled:    cfg.Logging.Telegram.Enabled && s.GroupLog != 0,
			ChatID:     s.GroupLog,
			ThreadID:   cfg.Logging.Telegram.ThreadID,
			MinLevel:   cfg.Logging.Telegram.MinLevel,
			RatePerSec: cfg.Logging.Telegram.RatePerSec,
		},
	}
}

// newLogSender returns nil when no bot token is configured.
func newLogSender(cfg *config.Config, s config.Settings) (logx.Sender, error) {
	if strings.TrimSpace(cfg.Telegram.Token) == "" {
		return nil, nil
	}
	snd, err := telegram.New(telegram.Config{Token: cfg.Telegram.Token, Timeout: s.TelegramTimeout})
	if err != nil {
		return nil, err
	}
	return snd, nil
}

func restorePolicy(s config.Settings) optimistic.RestorePolicy {
	if s.RestoreIndex {
		return optimistic.RestoreIndex
	}
	return optimistic.RestoreAppend
}
