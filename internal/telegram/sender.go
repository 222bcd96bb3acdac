// Package telegram delivers ops log lines to a Telegram chat.
package telegram

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"
)

// Config configures the sender.
type Config struct {
	Token string
	// Timeout bounds each Bot API call.
	Timeout time.Duration
}

// Sender posts plain text messages through the Bot API. It never polls for
// updates, so it can share a token with a bot running elsewhere.
type Sender struct {
	bot *tele.Bot
}

// New creates a Sender. The bot is created offline so no getMe call is made.
func New(cfg Config) (*Sender, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	b, err := tele.NewBot(tele.Settings{
		Token:   cfg.Token,
		Offline: true,
		Client:  &http.Client{Timeout: timeout},
	})
	if err != nil {
		return nil, err
	}
	return &Sender{bot: b}, nil
}

// Send implements logx.Sender.
func (s *Sender) Send(ctx context.Context, chatID int64, threadID int, text string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if chatID == 0 || strings.TrimSpace(text) == "" {
		return nil
	}
	opts := &tele.SendOptions{DisableWebPagePreview: true, ThreadID: threadID}
	_, err := s.bot.Send(&tele.Chat{ID: chatID}, text, opts)
	return err
}
