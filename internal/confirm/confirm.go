// Package confirm implements the confirmation prompters used before
// destructive actions.
package confirm

import (
	"context"
	"sync"
)

// Options describes one confirmation prompt.
type Options struct {
	Title       string
	Message     string
	ConfirmText string
	CancelText  string
	Danger      bool
}

// Labels returns the confirm/cancel button labels, defaulted when empty.
func (o Options) Labels() (confirm, cancel string) {
	confirm, cancel = o.ConfirmText, o.CancelText
	if confirm == "" {
		confirm = "Confirm"
	}
	if cancel == "" {
		cancel = "Cancel"
	}
	return confirm, cancel
}

// Prompter asks the user to confirm an action. Confirm never fails: a
// cancelled context resolves as a negative answer.
type Prompter interface {
	Confirm(ctx context.Context, opts Options) bool
}

// Func adapts a plain function to a Prompter.
type Func func(ctx context.Context, opts Options) bool

func (f Func) Confirm(ctx context.Context, opts Options) bool { return f(ctx, opts) }

// Modal is a single-slot prompter driven by Accept/Cancel, the way a dialog
// box is: Confirm shows the prompt and blocks until one of them is called.
//
// Opening a new prompt while one is visible resolves the previous one as
// cancelled.
type Modal struct {
	mu      sync.Mutex
	visible bool
	opts    Options
	resolve chan bool

	// shown, if set, is notified each time a prompt becomes visible.
	shown func(Options)
}

// NewModal returns a Modal. onShow may be nil.
func NewModal(onShow func(Options)) *Modal {
	return &Modal{shown: onShow}
}

func (m *Modal) Confirm(ctx context.Context, opts Options) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	ch := make(chan bool, 1)

	m.mu.Lock()
	if m.resolve != nil {
		m.resolve <- false
	}
	m.visible = true
	m.opts = opts
	m.resolve = ch
	shown := m.shown
	m.mu.Unlock()

	if shown != nil {
		shown(opts)
	}

	select {
	case v := <-ch:
		return v
	case <-ctx.Done():
		m.mu.Lock()
		if m.resolve == ch {
			m.visible = false
			m.resolve = nil
		}
		m.mu.Unlock()
		return false
	}
}

// Accept resolves the visible prompt with true. No-op when nothing is visible.
func (m *Modal) Accept() { m.finish(true) }

// Cancel resolves the visible prompt with false. No-op when nothing is visible.
func (m *Modal) Cancel() { m.finish(false) }

func (m *Modal) finish(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visible = false
	if m.resolve == nil {
		return
	}
	m.resolve <- v
	m.resolve = nil
}

// Visible reports whether a prompt is waiting for an answer.
func (m *Modal) Visible() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.visible
}

// Current returns the options of the last prompt shown.
func (m *Modal) Current() Options {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opts
}
