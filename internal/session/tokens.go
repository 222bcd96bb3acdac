package session

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"trackerdesk/internal/storage"
)

const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
)

// ErrNoToken is returned by Token when nobody is signed in.
var ErrNoToken = errors.New("not signed in")

// Tokens stores the access and refresh tokens. Signatures are never checked
// here; the backend does that. Only the exp claim is read.
type Tokens struct {
	store storage.Store
	now   func() time.Time
}

type TokensOption func(*Tokens)

// WithNow overrides the clock used by IsExpired.
func WithNow(now func() time.Time) TokensOption {
	return func(t *Tokens) {
		if now != nil {
			t.now = now
		}
	}
}

func NewTokens(store storage.Store, opts ...TokensOption) *Tokens {
	t := &Tokens{store: store, now: time.Now}
	for _, o := range opts {
		o(t)
	}
	return t
}

func (t *Tokens) AccessToken(ctx context.Context) (string, error) {
	v, _, err := t.store.Get(ctx, AccessTokenKey)
	return v, err
}

func (t *Tokens) RefreshToken(ctx context.Context) (string, error) {
	v, _, err := t.store.Get(ctx, RefreshTokenKey)
	return v, err
}

// SetTokens stores access and, when non-empty, refresh. An empty refresh
// token keeps the one already stored.
func (t *Tokens) SetTokens(ctx context.Context, access, refresh string) error {
	if err := t.store.Put(ctx, AccessTokenKey, access); err != nil {
		return err
	}
	if refresh == "" {
		return nil
	}
	return t.store.Put(ctx, RefreshTokenKey, refresh)
}

func (t *Tokens) Clear(ctx context.Context) error {
	return errors.Join(
		t.store.Delete(ctx, AccessTokenKey),
		t.store.Delete(ctx, RefreshTokenKey),
	)
}

// Expiry returns the exp claim of the access token. ok is false when the
// token carries no exp claim.
func (t *Tokens) Expiry(ctx context.Context) (exp time.Time, ok bool, err error) {
	raw, err := t.AccessToken(ctx)
	if err != nil {
		return time.Time{}, false, err
	}
	if raw == "" {
		return time.Time{}, false, ErrNoToken
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false, err
	}
	nd, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, false, err
	}
	if nd == nil {
		return time.Time{}, false, nil
	}
	return nd.Time, true, nil
}

// IsExpired reports whether the stored access token is unusable: missing,
// malformed, or past its exp. A well-formed token without exp never expires.
func (t *Tokens) IsExpired(ctx context.Context) bool {
	exp, ok, err := t.Expiry(ctx)
	if err != nil {
		return true
	}
	if !ok {
		return false
	}
	return !t.now().Before(exp)
}

// Token returns the access token for bearer auth.
func (t *Tokens) Token(ctx context.Context) (string, error) {
	v, err := t.AccessToken(ctx)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", ErrNoToken
	}
	return v, nil
}
