package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token(context.Context) (string, error) { return string(s), nil }

type seen struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   string
}

type backend struct {
	mu   sync.Mutex
	reqs []seen
}

func (b *backend) last(t *testing.T) seen {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	require.NotEmpty(t, b.reqs)
	return b.reqs[len(b.reqs)-1]
}

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *backend) {
	t.Helper()
	b := &backend{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.reqs = append(b.reqs, seen{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Header: r.Header.Clone(), Body: string(body)})
		b.mu.Unlock()
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	c, err := New(Config{BaseURL: srv.URL + "/", RatePerSec: 100}, WithTokenSource(staticToken("tok-1")), WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c, b
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestRulesSendsFilterAndHeaders(t *testing.T) {
	t.Parallel()
	c, b := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, []Rule{{ID: "r1", Name: "Sleep", RuleType: RuleTypeHealth, CronSchedule: "0 8 * * *"}})
	})

	rules, err := c.Rules(context.Background(), RuleTypeHealth)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "Sleep", rules[0].Name)

	req := b.last(t)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/api/v1/rules/", req.Path)
	assert.Equal(t, "rule_type=health_tracker", req.Query)
	assert.Equal(t, "Bearer tok-1", req.Header.Get("Authorization"))
	_, err = uuid.Parse(req.Header.Get("X-Request-ID"))
	assert.NoError(t, err, "request id is a uuid")
}

func TestDeleteAndPatchPaths(t *testing.T) {
	t.Parallel()
	c, b := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, Sheet{ID: "s1", SheetName: "Log"})
	})
	ctx := context.Background()

	require.NoError(t, c.DeleteRule(ctx, "r 1"))
	assert.Equal(t, "/api/v1/rules/r 1", b.last(t).Path)

	require.NoError(t, c.DeleteSheet(ctx, "s1"))
	assert.Equal(t, "/api/v1/sheets/s1", b.last(t).Path)

	name := "Daily log"
	_, err := c.RenameSheet(ctx, "s1", &name)
	require.NoError(t, err)
	req := b.last(t)
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.JSONEq(t, `{"display_name":"Daily log"}`, req.Body)

	_, err = c.RenameSheet(ctx, "s1", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"display_name":null}`, b.last(t).Body)
}

func TestRulePatchOmitsUnsetFields(t *testing.T) {
	t.Parallel()
	c, b := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) { writeJSON(w, Rule{ID: "r1"}) })
	off := false
	_, err := c.UpdateRule(context.Background(), "r1", RulePatch{IsActive: &off})
	require.NoError(t, err)
	assert.JSONEq(t, `{"is_active":false}`, b.last(t).Body)
}

func TestWarlordCreateAndFilter(t *testing.T) {
	t.Parallel()
	c, b := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			writeJSON(w, Rule{ID: "w1", RuleType: RuleTypeWarlord})
			return
		}
		writeJSON(w, []Rule{{ID: "a", RuleType: RuleTypeHealth}, {ID: "b", RuleType: RuleTypeWarlord}})
	})
	ctx := context.Background()

	rules, err := c.WarlordRules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "b", rules[0].ID)
	assert.Empty(t, b.last(t).Query, "warlord listing is not filtered server-side")

	_, err = c.CreateWarlordRule(ctx, CreateWarlordRule{Name: "Tasks", SheetIntegrationID: "s1", CronSchedule: "0 9 * * *", PromptText: "p"})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"sheet_integration_id":"s1","name":"Tasks","rule_type":"warlord","cron_schedule":"0 9 * * *",
		"target_column":"A","metric_name":null,"prompt_text":"p","is_active":true
	}`, b.last(t).Body)
}

func TestQueryEndpoints(t *testing.T) {
	t.Parallel()
	c, b := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/sheets/s1/rule-count":
			writeJSON(w, map[string]int{"count": 3})
		case "/api/v1/interactions/":
			writeJSON(w, []Interaction{{ID: "i1", Channel: "voice"}})
		default:
			writeJSON(w, AuthURL{URL: "https://accounts.example/auth"})
		}
	})
	ctx := context.Background()

	n, err := c.SheetRuleCount(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	logs, err := c.VoiceLogs(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "channel=voice", b.last(t).Query)

	u, err := c.ConnectSheet(ctx, "https://docs.google.com/spreadsheets/d/x")
	require.NoError(t, err)
	assert.Equal(t, "https://accounts.example/auth", u.URL)
	assert.Equal(t, "/api/v1/sheets/connect", b.last(t).Path)
	assert.Contains(t, b.last(t).Query, "sheet_url=https%3A%2F%2Fdocs.google.com")
}

func TestErrorMapping(t *testing.T) {
	t.Parallel()
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/me":
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"detail":"token expired"}`)
		default:
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, "boom")
		}
	})
	ctx := context.Background()

	_, err := c.Me(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "token expired", se.Detail)

	err = c.DeleteRule(ctx, "r1")
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.Code)
	assert.Equal(t, "boom", se.Detail)
	assert.False(t, errors.Is(err, ErrUnauthorized))
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	t.Parallel()
	_, err := New(Config{})
	assert.Error(t, err)
	_, err = New(Config{BaseURL: "not a url"})
	assert.Error(t, err)
}
