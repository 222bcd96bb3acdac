// Package api is the REST client for the tracker backend.
//
// All calls go to {base}/api/v1, carry the bearer token from a TokenSource
// and a fresh X-Request-ID, and are paced by a client-side rate limiter.
// Non-2xx responses become *StatusError; 401 also matches ErrUnauthorized.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	logx "trackerdesk/pkg/logx"
)

const (
	DefaultTimeout    = 15 * time.Second
	DefaultRatePerSec = 5
	defaultUserAgent  = "trackerdesk"
	maxErrorBody      = 4 << 10
)

var ErrUnauthorized = errors.New("unauthorized")

// StatusError is a non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	// Detail is the backend's "detail" field when present, else the raw body.
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, e.Detail)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUnauthorized && e.Code == http.StatusUnauthorized
}

// TokenSource yields the bearer token. An error means no Authorization
// header is sent.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	RatePerSec int
	UserAgent  string
}

type Client struct {
	base    string
	http    *http.Client
	tokens  TokenSource
	limiter *rate.Limiter
	ua      string
	log     logx.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default client (tests pass httptest clients).
func WithHTTPClient(h *http.Client) Option  { return func(c *Client) { c.http = h } }
func WithTokenSource(ts TokenSource) Option { return func(c *Client) { c.tokens = ts } }
func WithLogger(l logx.Logger) Option       { return func(c *Client) { c.log = l } }

func New(cfg Config, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("api base url is empty")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, errors.Wrapf(err, "invalid api base url %q", base)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = DefaultRatePerSec
	}
	ua := strings.TrimSpace(cfg.UserAgent)
	if ua == "" {
		ua = defaultUserAgent
	}
	c := &Client{
		base:    base + "/api/v1",
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
		ua:      ua,
	}
	for _, o := range opts {
		o(c)
	}
	if c.log.IsZero() {
		c.log = logx.Nop()
	}
	c.log = c.log.With(logx.String("comp", "api"))
	return c, nil
}

// do sends one request. body is JSON-encoded when non-nil; out is decoded
// from the response when non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "rate limit wait")
	}

	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "encode %s %s", method, path)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return errors.Wrapf(err, "build %s %s", method, path)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.ua)
	req.Header.Set("X-Request-ID", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if tok, terr := c.tokens.Token(ctx); terr == nil && tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	c.log.Debug("api call",
		logx.String("method", method),
		logx.String("path", path),
		logx.Int("status", resp.StatusCode),
		logx.String("request_id", reqID),
		logx.Duration("took", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Detail: errorDetail(raw)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decode %s %s", method, path)
	}
	return nil
}

// errorDetail extracts {"detail": "..."} bodies and falls back to the text.
func errorDetail(raw []byte) string {
	var d struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(raw, &d); err == nil && d.Detail != nil {
		if s, ok := d.Detail.(string); ok {
			return s
		}
		b, _ := json.Marshal(d.Detail)
		return string(b)
	}
	return strings.TrimSpace(string(raw))
}

func esc(id string) string { return url.PathEscape(id) }
