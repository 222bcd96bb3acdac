package notifier

import (
	"sync"
	"time"

	"trackerdesk/internal/clock"
	"trackerdesk/internal/eventbus"
	logx "trackerdesk/pkg/logx"
)

// DefaultTTL is how long a plain toast stays visible.
const DefaultTTL = 4 * time.Second

const defaultHistory = 200

const (
	EventShown     = "toast.shown"
	EventDismissed = "toast.dismissed"
	EventUndone    = "toast.undone"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Toast is a snapshot of one notification.
type Toast struct {
	ID        int           `json:"id"`
	Kind      Kind          `json:"kind"`
	Message   string        `json:"message"`
	Undoable  bool          `json:"undoable,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	TTL       time.Duration `json:"ttl"`
}

// Event is the Data payload of published bus events.
type Event struct {
	Toast  Toast  `json:"toast"`
	Reason string `json:"reason,omitempty"`
}

type entry struct {
	toast Toast
	undo  func()
	timer clock.Timer
}

// Center implements optimistic.Notifier. It is safe for concurrent use.
type Center struct {
	mu sync.Mutex

	clk        clock.Clock
	ttl        time.Duration
	bus        eventbus.Bus
	log        logx.Logger
	maxHistory int

	nextID  int
	active  []*entry
	history []Toast
}

type Option func(*Center)

func WithClock(c clock.Clock) Option { return func(n *Center) { n.clk = c } }

// WithTTL overrides DefaultTTL for plain toasts.
func WithTTL(d time.Duration) Option {
	return func(n *Center) {
		if d > 0 {
			n.ttl = d
		}
	}
}

func WithBus(b eventbus.Bus) Option   { return func(n *Center) { n.bus = b } }
func WithLogger(l logx.Logger) Option { return func(n *Center) { n.log = l } }

func WithHistory(max int) Option {
	return func(n *Center) {
		if max > 0 {
			n.maxHistory = max
		}
	}
}

func New(opts ...Option) *Center {
	c := &Center{
		clk:        clock.Real(),
		ttl:        DefaultTTL,
		maxHistory: defaultHistory,
	}
	for _, o := range opts {
		o(c)
	}
	if c.log.IsZero() {
		c.log = logx.Nop()
	}
	c.log = c.log.With(logx.String("comp", "notifier"))
	return c
}

func (c *Center) Success(message string) int { return c.show(KindSuccess, message, nil, c.ttl) }
func (c *Center) Info(message string) int    { return c.show(KindInfo, message, nil, c.ttl) }

// Error shows an error toast. It satisfies optimistic.Notifier.
func (c *Center) Error(message string) { c.ErrorID(message) }

// ErrorID is Error returning the toast id.
func (c *Center) ErrorID(message string) int { return c.show(KindError, message, nil, c.ttl) }

// Undoable shows a success toast with an undo action that stays up for d.
// It satisfies optimistic.Notifier.
func (c *Center) Undoable(message string, onUndo func(), d time.Duration) {
	c.UndoableID(message, onUndo, d)
}

// UndoableID is Undoable returning the toast id.
func (c *Center) UndoableID(message string, onUndo func(), d time.Duration) int {
	if d <= 0 {
		d = c.ttl
	}
	return c.show(KindSuccess, message, onUndo, d)
}

func (c *Center) show(kind Kind, message string, onUndo func(), d time.Duration) int {
	c.mu.Lock()
	c.nextID++
	e := &entry{
		toast: Toast{
			ID:        c.nextID,
			Kind:      kind,
			Message:   message,
			Undoable:  onUndo != nil,
			CreatedAt: c.clk.Now(),
			TTL:       d,
		},
		undo: onUndo,
	}
	c.active = append(c.active, e)
	c.history = append(c.history, e.toast)
	if len(c.history) > c.maxHistory {
		c.history = c.history[len(c.history)-c.maxHistory:]
	}
	id := e.toast.ID
	e.timer = c.clk.AfterFunc(d, func() { c.dismiss(id, "expired") })
	t := e.toast
	c.mu.Unlock()

	c.log.Debug("toast shown", logx.Int("id", id), logx.String("kind", string(kind)), logx.String("message", message))
	c.publish(EventShown, t, "")
	return id
}

// Undo runs the undo action of toast id and dismisses it. It reports false
// when the toast is gone or has no undo action.
func (c *Center) Undo(id int) bool {
	c.mu.Lock()
	if e := c.findLocked(id); e == nil || e.undo == nil {
		c.mu.Unlock()
		return false
	}
	e := c.takeLocked(id)
	if e.timer != nil {
		e.timer.Stop()
	}
	c.mu.Unlock()

	// The callback may call back into the center.
	e.undo()
	c.log.Debug("toast undone", logx.Int("id", id))
	c.publish(EventUndone, e.toast, "")
	c.publish(EventDismissed, e.toast, "undone")
	return true
}

// UndoLatest undoes the most recent undoable toast that is still visible.
func (c *Center) UndoLatest() bool {
	c.mu.Lock()
	id := 0
	for i := len(c.active) - 1; i >= 0; i-- {
		if c.active[i].undo != nil {
			id = c.active[i].toast.ID
			break
		}
	}
	c.mu.Unlock()
	if id == 0 {
		return false
	}
	return c.Undo(id)
}

// Dismiss closes toast id without running its undo action.
func (c *Center) Dismiss(id int) bool { return c.dismiss(id, "closed") }

func (c *Center) dismiss(id int, reason string) bool {
	c.mu.Lock()
	e := c.takeLocked(id)
	if e != nil && e.timer != nil {
		e.timer.Stop()
	}
	c.mu.Unlock()
	if e == nil {
		return false
	}
	c.publish(EventDismissed, e.toast, reason)
	return true
}

func (c *Center) findLocked(id int) *entry {
	for _, e := range c.active {
		if e.toast.ID == id {
			return e
		}
	}
	return nil
}

func (c *Center) takeLocked(id int) *entry {
	for i, e := range c.active {
		if e.toast.ID == id {
			c.active = append(c.active[:i], c.active[i+1:]...)
			return e
		}
	}
	return nil
}

// List returns the visible toasts, oldest first.
func (c *Center) List() []Toast {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Toast, len(c.active))
	for i, e := range c.active {
		out[i] = e.toast
	}
	return out
}

// History returns every toast shown, oldest first, bounded by WithHistory.
func (c *Center) History() []Toast {
	c.mu.Lock()
	out := append([]Toast(nil), c.history...)
	c.mu.Unlock()
	return out
}

func (c *Center) publish(typ string, t Toast, reason string) {
	if c.bus == nil {
		return
	}
	c.bus.Publish(eventbus.Event{Type: typ, Time: c.clk.Now(), Data: Event{Toast: t, Reason: reason}})
}
