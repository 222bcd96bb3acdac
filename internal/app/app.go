// Package app wires configuration, storage, the backend client and the
// screen controllers into one App.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"trackerdesk/internal/api"
	"trackerdesk/internal/clock"
	"trackerdesk/internal/config"
	"trackerdesk/internal/confirm"
	"trackerdesk/internal/console"
	"trackerdesk/internal/eventbus"
	"trackerdesk/internal/notifier"
	"trackerdesk/internal/session"
	"trackerdesk/internal/storage"
	logx "trackerdesk/pkg/logx"
)

type App struct {
	cfgm     *config.ConfigManager
	settings config.Settings

	log  logx.Logger
	logs *logx.Service
	bus  eventbus.Bus

	store storage.Store

	Tokens *session.Tokens
	Prefs  *session.Prefs
	Client *api.Client
	Toasts *notifier.Center

	Rules     *console.Rules
	Warlord   *console.Warlord
	Sheets    *console.Sheets
	Dashboard *console.Dashboard
}

type options struct {
	prompt     confirm.Prompter
	httpClient *http.Client
	clock      clock.Clock
	fs         afero.Fs
	store      storage.Store
}

type Option func(*options)

// WithPrompter sets the confirmation dialog; the default reads stdin.
func WithPrompter(p confirm.Prompter) Option { return func(o *options) { o.prompt = p } }

func WithHTTPClient(h *http.Client) Option { return func(o *options) { o.httpClient = h } }

func WithClock(c clock.Clock) Option { return func(o *options) { o.clock = c } }

// WithFs backs the file storage driver.
func WithFs(fs afero.Fs) Option { return func(o *options) { o.fs = fs } }

// WithStore bypasses the storage section entirely.
func WithStore(s storage.Store) Option { return func(o *options) { o.store = s } }

// New loads the config at cfgPath and builds every component. Nothing is
// contacted over the network until a controller is used.
func New(ctx context.Context, cfgPath string, opts ...Option) (*App, error) {
	o := options{clock: clock.Real()}
	for _, fn := range opts {
		fn(&o)
	}
	if o.prompt == nil {
		o.prompt = confirm.NewTerminal(os.Stdin, os.Stdout)
	}

	cfgm := config.NewConfigManager(cfgPath)
	cfgm.SetValidator(config.Validate)
	cfg, err := cfgm.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	settings, err := config.Resolve(cfg)
	if err != nil {
		return nil, err
	}

	sender, err := newLogSender(cfg, settings)
	if err != nil {
		return nil, fmt.Errorf("telegram log sink: %w", err)
	}
	logSvc, log := logx.New(mapLoggingConfig(cfg, settings), sender)
	cfgm.SetLogger(log)
	log = log.With(logx.String("comp", "app"))

	store := o.store
	if store == nil {
		sc := mapStorageConfig(cfg, settings)
		sc.Fs = o.fs
		store, err = storage.Open(sc, log.With(logx.String("comp", "storage")))
		if err != nil {
			_ = logSvc.Close()
			return nil, err
		}
		log.Debug("storage opened", logx.String("driver", sc.Driver))
	}

	lang, _ := session.ParseLanguage(cfg.Preferences.Language)
	tokens := session.NewTokens(store, session.WithNow(o.clock.Now))
	prefs := session.NewPrefs(store, lang)

	apiOpts := []api.Option{
		api.WithTokenSource(tokens),
		api.WithLogger(log.With(logx.String("comp", "api"))),
	}
	if o.httpClient != nil {
		apiOpts = append(apiOpts, api.WithHTTPClient(o.httpClient))
	}
	client, err := api.New(api.Config{
		BaseURL:    cfg.API.BaseURL,
		Timeout:    settings.APITimeout,
		RatePerSec: cfg.API.RatePerSec,
		UserAgent:  cfg.API.UserAgent,
	}, apiOpts...)
	if err != nil {
		_ = store.Close()
		_ = logSvc.Close()
		return nil, err
	}

	bus := eventbus.New()
	toasts := notifier.New(
		notifier.WithClock(o.clock),
		notifier.WithTTL(settings.ToastTTL),
		notifier.WithBus(bus),
		notifier.WithLogger(log),
	)
	deps := console.Deps{
		Prompt:  o.prompt,
		Notify:  toasts,
		Clock:   o.clock,
		Grace:   settings.GraceWindow,
		Restore: restorePolicy(settings),
		Log:     log,
	}

	return &App{
		cfgm:      cfgm,
		settings:  settings,
		log:       log,
		logs:      logSvc,
		bus:       bus,
		store:     store,
		Tokens:    tokens,
		Prefs:     prefs,
		Client:    client,
		Toasts:    toasts,
		Rules:     console.NewRules(client, deps),
		Warlord:   console.NewWarlord(client, deps),
		Sheets:    console.NewSheets(client, deps),
		Dashboard: console.NewDashboard(client, settings.Location),
	}, nil
}

func (a *App) Settings() config.Settings { return a.settings }

func (a *App) Config() *config.Config { return a.cfgm.Get() }

func (a *App) Logger() logx.Logger { return a.log }

func (a *App) Bus() eventbus.Bus { return a.bus }

// Watch reloads the config file while ctx is live and calls onReload after
// each applied change. Logging settings apply at once; the other sections
// take effect on the next start.
func (a *App) Watch(ctx context.Context, onReload func(*config.Config)) error {
	g, gctx := errgroup.WithContext(ctx)
	sub := a.cfgm.Subscribe(4)

	g.Go(func() error { return a.cfgm.Watch(gctx) })
	g.Go(func() error {
		defer a.cfgm.Unsubscribe(sub)
		applied := a.cfgm.Get()
		for {
			select {
			case <-gctx.Done():
				return nil
			case next, ok := <-sub:
				if !ok {
					return nil
				}
				a.applyReload(applied, next)
				applied = next
				if onReload != nil {
					onReload(next)
				}
			}
		}
	})
	g.Go(func() error {
		events, unsub := a.bus.Subscribe(64)
		defer unsub()
		for {
			select {
			case <-gctx.Done():
				return nil
			case e, ok := <-events:
				if !ok {
					return nil
				}
				a.log.Debug("event", logx.String("type", e.Type), logx.Time("time", e.Time))
			}
		}
	})
	return g.Wait()
}

func (a *App) applyReload(prev, next *config.Config) {
	sections, attrs := config.SummarizeChange(prev, next)
	if len(sections) == 0 {
		a.log.Info("config reloaded (no changes)")
		return
	}
	s, err := config.Resolve(next)
	if err != nil {
		a.log.Warn("config reload rejected", logx.Err(err))
		return
	}
	a.logs.Apply(mapLoggingConfig(next, s))

	var restart []string
	for _, sec := range sections {
		if sec != "logging" {
			restart = append(restart, sec)
		}
	}
	if len(restart) > 0 {
		a.log.Warn("config sections change on restart", logx.String("sections", strings.Join(restart, ",")))
	}
	fields := append([]logx.Field{logx.String("changed", strings.Join(sections, ","))}, attrs...)
	a.log.Info("config reloaded", fields...)
}

// Close releases storage and flushes the log sinks within ctx.
func (a *App) Close(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		var errs []error
		if a.store != nil {
			errs = append(errs, a.store.Close())
		}
		if a.logs != nil {
			errs = append(errs, a.logs.Close())
		}
		done <- errors.Join(errs...)
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CloseTimeout is Close bounded by d.
func (a *App) CloseTimeout(d time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return a.Close(ctx)
}
