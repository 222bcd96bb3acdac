package logx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestLoggerWritesFields(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := NewWriter(&buf, "debug").With(String("comp", "rules"))
	log.Info("rule saved", String("id", "r1"), Int("count", 2), Err(errors.New("boom")))

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	for k, want := range map[string]any{"comp": "rules", "id": "r1", "count": float64(2), "err": "boom", "message": "rule saved"} {
		if m[k] != want {
			t.Fatalf("%s = %v, want %v", k, m[k], want)
		}
	}
	if c, _ := m["caller"].(string); !strings.HasPrefix(c, "logx_test.go:") {
		t.Fatalf("caller = %q", c)
	}
}

func TestLevelFiltering(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := NewWriter(&buf, "warn")
	log.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info written at warn level: %q", buf.String())
	}
	if log.Enabled(LevelDebug) {
		t.Fatal("debug should be disabled")
	}
	if !log.Enabled(LevelError) {
		t.Fatal("error should be enabled")
	}
}

func TestZeroLoggerIsSafe(t *testing.T) {
	t.Parallel()
	var log Logger
	if !log.IsZero() {
		t.Fatal("zero logger should report IsZero")
	}
	log.Error("dropped")
	if Nop().IsZero() {
		t.Fatal("Nop should not be zero")
	}
}

func TestFormatTelegramJSON(t *testing.T) {
	t.Parallel()
	got := formatTelegramJSON([]byte(`{"level":"warn","time":"x","message":"delete failed","id":"r1","caller":"a.go:1"}`))
	want := "[WARN] delete failed\n- caller=a.go:1\n- id=r1"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got := formatTelegramJSON([]byte("plain text\n")); got != "plain text" {
		t.Fatalf("non-JSON got %q", got)
	}
}

type chanSender struct {
	mu   sync.Mutex
	msgs []string
	got  chan struct{}
}

func (c *chanSender) Send(_ context.Context, chatID int64, _ int, text string) error {
	c.mu.Lock()
	c.msgs = append(c.msgs, text)
	c.mu.Unlock()
	c.got <- struct{}{}
	return nil
}

func TestTelegramSinkForwardsWarnings(t *testing.T) {
	t.Parallel()
	snd := &chanSender{got: make(chan struct{}, 4)}
	svc, log := New(Config{
		Level:    "debug",
		Telegram: TelegramConfig{Enabled: true, ChatID: 42, MinLevel: "warn", RatePerSec: 5},
	}, snd)
	defer svc.Close()

	log.Info("not forwarded")
	log.Warn("remote delete failed", String("id", "r9"))

	select {
	case <-snd.got:
	case <-time.After(2 * time.Second):
		t.Fatal("telegram sink did not receive the warning")
	}
	snd.mu.Lock()
	defer snd.mu.Unlock()
	if len(snd.msgs) != 1 || !strings.HasPrefix(snd.msgs[0], "[WARN] remote delete failed") {
		t.Fatalf("messages = %q", snd.msgs)
	}
}
