package storage

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/zalando/go-keyring"

	logx "trackerdesk/pkg/logx"
)

// keyringStore keeps each key as one secret under Config.Service. The OS
// keyring has no notion of a closed handle, so Close only flips a flag.
type keyringStore struct {
	service string
	log     logx.Logger
	closed  atomic.Bool
}

func openKeyring(cfg Config, log logx.Logger) (Store, error) {
	svc := strings.TrimSpace(cfg.Service)
	if svc == "" {
		svc = DefaultKeyringService
	}
	return &keyringStore{service: svc, log: log}, nil
}

func (s *keyringStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := s.check(ctx, key); err != nil {
		return "", false, err
	}
	v, err := keyring.Get(s.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *keyringStore) Put(ctx context.Context, key, value string) error {
	if err := s.check(ctx, key); err != nil {
		return err
	}
	return keyring.Set(s.service, key, value)
}

func (s *keyringStore) Delete(ctx context.Context, key string) error {
	if err := s.check(ctx, key); err != nil {
		return err
	}
	err := keyring.Delete(s.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

func (s *keyringStore) Close() error {
	s.closed.Store(true)
	return nil
}

func (s *keyringStore) check(ctx context.Context, key string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return checkKey(key)
}
