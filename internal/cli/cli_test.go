package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackerdesk/internal/api"
	"trackerdesk/internal/app"
	"trackerdesk/internal/confirm"
)

func TestMain(m *testing.M) {
	pterm.DisableStyling()
	os.Exit(m.Run())
}

// syncBuffer is written by the command and the toast printer concurrently.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type backend struct {
	mu      sync.Mutex
	rules   []api.Rule
	sheets  []api.Sheet
	created []api.CreateRule
	patches map[string]api.RulePatch
	deleted []string
	srv     *httptest.Server
}

func (b *backend) deletedIDs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.deleted...)
}

func (b *backend) createdRules() []api.CreateRule {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]api.CreateRule(nil), b.created...)
}

func (b *backend) patch(id string) api.RulePatch {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.patches[id]
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{
		rules: []api.Rule{
			{ID: "r1", Name: "Sleep", RuleType: api.RuleTypeHealth, CronSchedule: "0 8 * * *", IsActive: true},
			{ID: "r2", Name: "Steps", RuleType: api.RuleTypeHealth, CronSchedule: "0 */4 * * *", IsActive: false},
			{ID: "w1", Name: "Tasks", RuleType: api.RuleTypeWarlord, CronSchedule: "0 9 * * 1", IsActive: true},
		},
		sheets:  []api.Sheet{{ID: "s1", SheetName: "Health log", GoogleSheetID: "g1", IsActive: true}},
		patches: map[string]api.RulePatch{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/rules/", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		rt := r.URL.Query().Get("rule_type")
		out := []api.Rule{}
		for _, rule := range b.rules {
			if rt == "" || rule.RuleType == rt {
				out = append(out, rule)
			}
		}
		writeJSON(w, out)
	})
	mux.HandleFunc("POST /api/v1/rules/", func(w http.ResponseWriter, r *http.Request) {
		var in api.CreateRule
		_ = json.NewDecoder(r.Body).Decode(&in)
		b.mu.Lock()
		b.created = append(b.created, in)
		b.mu.Unlock()
		writeJSON(w, api.Rule{ID: "new", Name: in.Name, RuleType: in.RuleType, CronSchedule: in.CronSchedule, TargetColumn: in.TargetColumn, MetricName: in.MetricName, IsActive: in.IsActive})
	})
	mux.HandleFunc("PATCH /api/v1/rules/{id}", func(w http.ResponseWriter, r *http.Request) {
		var p api.RulePatch
		_ = json.NewDecoder(r.Body).Decode(&p)
		b.mu.Lock()
		defer b.mu.Unlock()
		id := r.PathValue("id")
		b.patches[id] = p
		for i, rule := range b.rules {
			if rule.ID != id {
				continue
			}
			if p.IsActive != nil {
				rule.IsActive = *p.IsActive
			}
			if p.Name != nil {
				rule.Name = *p.Name
			}
			if p.CronSchedule != nil {
				rule.CronSchedule = *p.CronSchedule
			}
			if p.PromptText != nil {
				rule.PromptText = *p.PromptText
			}
			b.rules[i] = rule
			writeJSON(w, rule)
			return
		}
		http.NotFound(w, r)
	})
	mux.HandleFunc("DELETE /api/v1/rules/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.deleted = append(b.deleted, r.PathValue("id"))
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/v1/sheets/", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, b.sheets)
	})
	mux.HandleFunc("GET /api/v1/sheets/{id}/headers", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []api.ColumnHeader{{Column: "B", Name: "Hours"}, {Column: "C", Name: "Glasses"}})
	})
	mux.HandleFunc("GET /api/v1/sheets/{id}/rule-count", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]int{"count": 2})
	})
	mux.HandleFunc("DELETE /api/v1/sheets/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.deleted = append(b.deleted, "sheet:"+r.PathValue("id"))
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/v1/dashboard/summary", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, api.DashboardSummary{HealthRulesActive: 1, WarlordRulesActive: 1, SheetsConnected: 1})
	})
	mux.HandleFunc("GET /api/v1/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, api.Health{Status: "ok", Version: "1.4.0"})
	})
	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)
	return b
}

// harness runs commands against one backend and one state directory.
type harness struct {
	t       *testing.T
	backend *backend
	cfgPath string
}

func newHarness(t *testing.T, grace string) *harness {
	t.Helper()
	b := newBackend(t)
	dir := t.TempDir()
	cfg := "api:\n  base_url: " + b.srv.URL + "\n  rate_per_sec: 100\n" +
		"storage:\n  driver: file\n  path: " + filepath.Join(dir, "state") + "\n" +
		"undo:\n  grace_window: " + grace + "\n"
	p := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(cfg), 0o600))
	return &harness{t: t, backend: b, cfgPath: p}
}

func (h *harness) run(input string, args ...string) (string, error) {
	h.t.Helper()
	out := &syncBuffer{}
	err := Execute(context.Background(), append([]string{"--config", h.cfgPath}, args...), WithIO(strings.NewReader(input), out))
	return out.String(), err
}

func TestRulesList(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "5s")
	out, err := h.run("", "rules", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Sleep")
	assert.Contains(t, out, "Daily at 08:00")
	assert.Contains(t, out, "Every 4 hours")
	assert.NotContains(t, out, "Tasks")
}

func TestRulesCreate(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "5s")
	out, err := h.run("", "rules", "create",
		"--name", "Water", "--sheet", "s1", "--metric", "Glasses", "--prompt", "How many glasses?",
		"--freq", "weekly", "--hour", "20", "--day", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Rule created.")
	assert.Contains(t, out, "Every Friday at 20:00")

	created := h.backend.createdRules()
	require.Len(t, created, 1)
	c := created[0]
	assert.Equal(t, "0 20 * * 5", c.CronSchedule)
	assert.Equal(t, "C", c.TargetColumn)
	assert.Equal(t, api.RuleTypeHealth, c.RuleType)
	assert.True(t, c.IsActive)
}

func TestRulesCreateValidation(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "5s")
	_, err := h.run("", "rules", "create", "--name", "Water", "--sheet", "s1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "metric is required")
	assert.Contains(t, err.Error(), "prompt is required")

	_, err = h.run("", "rules", "create", "--freq", "monthly")
	require.Error(t, err)
	assert.Empty(t, h.backend.createdRules())
}

func TestRulesToggleAndEdit(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "5s")
	out, err := h.run("", "rules", "toggle", "r1")
	require.NoError(t, err)
	assert.Contains(t, out, "Rule paused.")
	require.NotNil(t, h.backend.patch("r1").IsActive)
	assert.False(t, *h.backend.patch("r1").IsActive)

	out, err = h.run("", "rules", "edit", "r2", "--freq", "hourly", "--interval", "6")
	require.NoError(t, err)
	assert.Contains(t, out, "Rule saved.")
	p := h.backend.patch("r2")
	require.NotNil(t, p.CronSchedule)
	assert.Equal(t, "0 */6 * * *", *p.CronSchedule)
	require.NotNil(t, p.Name)
	assert.Equal(t, "Steps", *p.Name, "unchanged fields keep their values")

	_, err = h.run("", "rules", "toggle", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `rule "nope" not found`)
}

func TestRulesDeleteUndoWithEnter(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "5s")
	out, err := h.run("y\n\n", "rules", "delete", "r1")
	require.NoError(t, err)
	assert.Contains(t, out, "Delete rule")
	assert.Contains(t, out, "Rule deleted. Press Enter to undo.")
	assert.Contains(t, out, "Restored rule r1.")
	assert.Empty(t, h.backend.deletedIDs())
}

func TestRulesDeleteCommitsAfterGrace(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "20ms")
	_, err := h.run("y\n", "rules", "delete", "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, h.backend.deletedIDs())
}

func TestRulesDeleteDeclined(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "20ms")
	out, err := h.run("n\n", "rules", "delete", "r1")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled.")
	assert.Empty(t, h.backend.deletedIDs())

	_, err = h.run("y\n", "rules", "delete", "w1")
	require.Error(t, err, "warlord rules are not on the rules screen")
	assert.Contains(t, err.Error(), "not found")
}

func TestWarlordCommands(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "20ms")
	out, err := h.run("", "warlord", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Tasks")
	assert.Contains(t, out, "Every Monday at 09:00")
	assert.NotContains(t, out, "Sleep")

	_, err = h.run("", "warlord", "create", "--name", "Chores", "--sheet", "s1", "--hour", "18")
	require.NoError(t, err)
	created := h.backend.createdRules()
	require.Len(t, created, 1)
	assert.Equal(t, "A", created[0].TargetColumn)
	assert.Nil(t, created[0].MetricName)
	assert.Equal(t, "0 18 * * *", created[0].CronSchedule)

	out, err = h.run("", "warlord", "prompt", "w1", "Ask", "about", "overdue", "rows")
	require.NoError(t, err)
	assert.Contains(t, out, "Prompt saved.")
	require.NotNil(t, h.backend.patch("w1").PromptText)
	assert.Equal(t, "Ask about overdue rows", *h.backend.patch("w1").PromptText)

	_, err = h.run("", "--yes", "warlord", "delete", "w1")
	require.NoError(t, err)
	assert.Equal(t, []string{"w1"}, h.backend.deletedIDs())
}

func TestSheetsDeleteNamesRuleCount(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "20ms")
	out, err := h.run("y\n", "sheets", "delete", "s1")
	require.NoError(t, err)
	assert.Contains(t, out, `"Health log" will be disconnected. 2 rules using it will stop working.`)
	assert.Contains(t, out, "Sheet disconnected.")
	assert.Equal(t, []string{"sheet:s1"}, h.backend.deletedIDs())
}

func TestDashboard(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "5s")
	out, err := h.run("", "dashboard", "-n", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Health rules active")
	assert.Contains(t, out, "Sleep")
	assert.Contains(t, out, "Tasks")
	assert.NotContains(t, out, "Steps", "paused rules have no next run")
}

func TestPrefsPersist(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "5s")
	out, err := h.run("", "prefs", "lang")
	require.NoError(t, err)
	assert.Equal(t, "en\n", out)

	out, err = h.run("", "prefs", "lang", "toggle")
	require.NoError(t, err)
	assert.Equal(t, "cs\n", out)

	out, err = h.run("", "prefs", "lang")
	require.NoError(t, err)
	assert.Equal(t, "cs\n", out)

	out, err = h.run("", "prefs", "theme", "light")
	require.NoError(t, err)
	assert.Equal(t, "light\n", out)

	_, err = h.run("", "prefs", "theme", "neon")
	require.Error(t, err)
}

func TestSessionLoginAndLogout(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "5s")
	out, err := h.run("", "session", "status")
	require.NoError(t, err)
	assert.Regexp(t, `Signed in\s*\|\s*no`, out)

	out, err = h.run("", "session", "login", "--access", "tok-1", "--refresh", "ref-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in.")

	out, err = h.run("", "session", "status")
	require.NoError(t, err)
	assert.Regexp(t, `Signed in\s*\|\s*yes`, out)
	assert.Regexp(t, `Refresh token\s*\|\s*yes`, out)

	_, err = h.run("", "session", "logout")
	require.NoError(t, err)
	out, err = h.run("", "session", "status")
	require.NoError(t, err)
	assert.Regexp(t, `Signed in\s*\|\s*no`, out)
}

func TestHealth(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "5s")
	out, err := h.run("", "health")
	require.NoError(t, err)
	assert.Contains(t, out, "ok")
	assert.Contains(t, out, "1.4.0")
}

func TestScheduleCommandsWorkWithoutConfig(t *testing.T) {
	t.Parallel()
	missing := filepath.Join(t.TempDir(), "none.yaml")
	run := func(args ...string) string {
		t.Helper()
		out := &syncBuffer{}
		require.NoError(t, Execute(context.Background(), append([]string{"--config", missing}, args...), WithIO(strings.NewReader(""), out)))
		return out.String()
	}

	assert.Equal(t, "0 9 * * 1\n", run("schedule", "encode", "--freq", "weekly", "--hour", "9", "--day", "1"))
	assert.Equal(t, "0 */3 * * *\n", run("schedule", "encode", "--freq", "hourly"))
	assert.Equal(t, "Every 6 hours\n", run("schedule", "humanize", "0 */6 * * *"))
	assert.Contains(t, run("schedule", "humanize", "*/5 * * * *"), "*/5 * * * *")

	out := run("schedule", "next", "--tz", "UTC", "-n", "2", "0 8 * * *")
	assert.Equal(t, 2, strings.Count(out, "08:00 UTC"))
}

func TestScheduleNextRejectsBadCount(t *testing.T) {
	t.Parallel()
	missing := filepath.Join(t.TempDir(), "none.yaml")
	for _, n := range []string{"0", "-1"} {
		err := Execute(context.Background(), []string{"--config", missing, "schedule", "next", "-n", n, "0 8 * * *"}, WithIO(strings.NewReader(""), &syncBuffer{}))
		require.Error(t, err, "count %s", n)
		assert.Contains(t, err.Error(), "--count must be at least 1")
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	t.Parallel()
	p := filepath.Join(t.TempDir(), "nested", "config.yaml")
	run := func(args ...string) (string, error) {
		out := &syncBuffer{}
		err := Execute(context.Background(), append([]string{"--config", p}, args...), WithIO(strings.NewReader(""), out))
		return out.String(), err
	}

	_, err := run("config", "init")
	require.NoError(t, err)
	_, err = run("config", "init")
	require.Error(t, err, "existing file is kept")

	out, err := run("config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "http://localhost:8000")
	assert.Contains(t, out, "5s")
}

func TestUndoListenerReleasesInputAfterCommit(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "20ms")
	ctx := context.Background()
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })

	a, err := app.New(ctx, h.cfgPath, app.WithPrompter(confirm.Func(func(context.Context, confirm.Options) bool { return true })))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.CloseTimeout(time.Second) })
	require.NoError(t, a.Rules.Load(ctx))

	e := &env{in: confirm.NewLines(pr), out: &syncBuffer{}}
	require.NoError(t, e.runDelete(ctx, a, "rule", "r1", a.Rules.Delete))
	assert.Equal(t, []string{"r1"}, h.backend.deletedIDs())

	go func() { _, _ = io.WriteString(pw, "next\n") }()
	rctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	line, err := e.in.ReadLine(rctx)
	require.NoError(t, err)
	assert.Equal(t, "next\n", line)
}
