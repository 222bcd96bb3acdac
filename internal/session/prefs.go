package session

import (
	"context"
	"fmt"
	"strings"

	"trackerdesk/internal/storage"
)

const (
	LanguageKey = "lang"
	ThemeKey    = "theme"
)

type Language string

const (
	English Language = "en"
	Czech   Language = "cs"
)

type Theme string

const (
	Dark  Theme = "dark"
	Light Theme = "light"
)

func ParseLanguage(s string) (Language, error) {
	switch l := Language(strings.ToLower(strings.TrimSpace(s))); l {
	case English, Czech:
		return l, nil
	default:
		return "", fmt.Errorf("unsupported language %q (want en or cs)", s)
	}
}

func ParseTheme(s string) (Theme, error) {
	switch th := Theme(strings.ToLower(strings.TrimSpace(s))); th {
	case Dark, Light:
		return th, nil
	default:
		return "", fmt.Errorf("unsupported theme %q (want dark or light)", s)
	}
}

// Prefs persists the language and theme. Unknown stored values read as the
// defaults.
type Prefs struct {
	store       storage.Store
	defaultLang Language
}

// NewPrefs returns Prefs whose unset language reads as def (English when
// def is empty).
func NewPrefs(store storage.Store, def Language) *Prefs {
	if def == "" {
		def = English
	}
	return &Prefs{store: store, defaultLang: def}
}

func (p *Prefs) Language(ctx context.Context) (Language, error) {
	v, ok, err := p.store.Get(ctx, LanguageKey)
	if err != nil || !ok {
		return p.defaultLang, err
	}
	l, perr := ParseLanguage(v)
	if perr != nil {
		return p.defaultLang, nil
	}
	return l, nil
}

func (p *Prefs) SetLanguage(ctx context.Context, l Language) error {
	if _, err := ParseLanguage(string(l)); err != nil {
		return err
	}
	return p.store.Put(ctx, LanguageKey, string(l))
}

// ToggleLanguage flips en and cs and persists the result.
func (p *Prefs) ToggleLanguage(ctx context.Context) (Language, error) {
	cur, err := p.Language(ctx)
	if err != nil {
		return "", err
	}
	next := Czech
	if cur == Czech {
		next = English
	}
	return next, p.SetLanguage(ctx, next)
}

func (p *Prefs) Theme(ctx context.Context) (Theme, error) {
	v, ok, err := p.store.Get(ctx, ThemeKey)
	if err != nil || !ok {
		return Dark, err
	}
	th, perr := ParseTheme(v)
	if perr != nil {
		return Dark, nil
	}
	return th, nil
}

func (p *Prefs) SetTheme(ctx context.Context, th Theme) error {
	if _, err := ParseTheme(string(th)); err != nil {
		return err
	}
	return p.store.Put(ctx, ThemeKey, string(th))
}

func (p *Prefs) ToggleTheme(ctx context.Context) (Theme, error) {
	cur, err := p.Theme(ctx)
	if err != nil {
		return "", err
	}
	next := Light
	if cur == Light {
		next = Dark
	}
	return next, p.SetTheme(ctx, next)
}
