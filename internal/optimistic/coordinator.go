package optimistic

import (
	"context"
	"sync"
	"time"

	"trackerdesk/internal/clock"
	"trackerdesk/internal/confirm"
	logx "trackerdesk/pkg/logx"
)

// DefaultGraceWindow is how long a deletion stays undoable before it is
// sent to the backend.
const DefaultGraceWindow = 5 * time.Second

// Notifier raises the user-visible notifications of a deletion.
type Notifier interface {
	Undoable(message string, onUndo func(), d time.Duration)
	Error(message string)
}

// Mutator performs the remote delete.
type Mutator interface {
	Delete(ctx context.Context, id string) error
}

// MutatorFunc adapts a function to a Mutator.
type MutatorFunc func(ctx context.Context, id string) error

func (f MutatorFunc) Delete(ctx context.Context, id string) error { return f(ctx, id) }

// Outcome is the terminal state of one Delete call.
type Outcome int

const (
	// Declined: the confirmation prompt was answered negatively.
	Declined Outcome = iota
	// Undone: undo (or context cancellation) arrived inside the grace window.
	Undone
	// Committed: the remote delete succeeded.
	Committed
	// RolledBack: the remote delete failed and the item was restored.
	RolledBack
)

func (o Outcome) String() string {
	switch o {
	case Declined:
		return "declined"
	case Undone:
		return "undone"
	case Committed:
		return "committed"
	case RolledBack:
		return "rolled_back"
	default:
		return "unknown"
	}
}

// RestorePolicy decides where a restored item goes.
type RestorePolicy int

const (
	// RestoreAppend puts the item at the end of the list.
	RestoreAppend RestorePolicy = iota
	// RestoreIndex puts the item back at the index it was removed from.
	RestoreIndex
)

// Request describes one deletion.
type Request struct {
	Confirm confirm.Options
	// UndoMessage is shown on the undoable notification.
	UndoMessage string
	// FailureMessage is shown when the remote delete fails.
	FailureMessage string
}

func (r Request) undoMessage() string {
	if r.UndoMessage != "" {
		return r.UndoMessage
	}
	return "Deleted."
}

func (r Request) failureMessage() string {
	if r.FailureMessage != "" {
		return r.FailureMessage
	}
	return "Delete failed."
}

type phase int

const (
	phaseConfirming phase = iota
	phasePending
	phaseCommitting
	phaseDone
)

// record is the pending deletion of one item.
type record[T any] struct {
	ctx      context.Context
	id       string
	req      Request
	snapshot T
	index    int
	timer    clock.Timer
	phase    phase
	done     chan Outcome
}

// Option configures a Coordinator.
type Option func(*options)

type options struct {
	grace   time.Duration
	clock   clock.Clock
	restore RestorePolicy
	log     logx.Logger
}

// WithGraceWindow overrides DefaultGraceWindow. Non-positive values are ignored.
func WithGraceWindow(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.grace = d
		}
	}
}

// WithClock sets the clock used for the grace timer.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithRestorePolicy sets where restored items are reinserted.
func WithRestorePolicy(p RestorePolicy) Option {
	return func(o *options) { o.restore = p }
}

// WithLogger sets the coordinator's logger.
func WithLogger(l logx.Logger) Option {
	return func(o *options) { o.log = l }
}

// Coordinator runs delete-with-undo transactions against a List.
//
// Per id, at most one deletion runs at a time; the grace timer firing is the
// commit point, after which undo is ignored.
type Coordinator[T any] struct {
	list    *List[T]
	prompt  confirm.Prompter
	notify  Notifier
	mutator Mutator
	opt     options

	mu       sync.Mutex
	inflight map[string]*record[T]
}

// New returns a Coordinator over list.
func New[T any](list *List[T], prompt confirm.Prompter, notify Notifier, mutator Mutator, opts ...Option) *Coordinator[T] {
	o := options{grace: DefaultGraceWindow, clock: clock.Real(), restore: RestoreAppend}
	for _, fn := range opts {
		fn(&o)
	}
	if o.log.IsZero() {
		o.log = logx.Nop()
	}
	return &Coordinator[T]{
		list:     list,
		prompt:   prompt,
		notify:   notify,
		mutator:  mutator,
		opt:      o,
		inflight: map[string]*record[T]{},
	}
}

// GraceWindow returns the configured grace window.
func (c *Coordinator[T]) GraceWindow() time.Duration { return c.opt.grace }

// InFlight reports whether a deletion of id is confirming, pending or committing.
func (c *Coordinator[T]) InFlight(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inflight[id]
	return ok
}

// Delete confirms, optimistically removes, and after the grace window
// remotely deletes the item with id. It blocks until a terminal outcome.
//
// The returned error is non-nil only when the deletion could not start
// (ErrNotFound, ErrInFlight) or ctx ended during the grace window; remote
// failures are reported through the Notifier and the RolledBack outcome.
func (c *Coordinator[T]) Delete(ctx context.Context, id string, req Request) (Outcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	log := c.opt.log.With(logx.String("id", id))

	c.mu.Lock()
	if _, busy := c.inflight[id]; busy {
		c.mu.Unlock()
		return Declined, ErrInFlight
	}
	if !c.list.Contains(id) {
		c.mu.Unlock()
		return Declined, ErrNotFound
	}
	rec := &record[T]{ctx: ctx, id: id, req: req, phase: phaseConfirming, done: make(chan Outcome, 1)}
	c.inflight[id] = rec
	c.mu.Unlock()

	if !c.prompt.Confirm(ctx, req.Confirm) {
		c.mu.Lock()
		delete(c.inflight, id)
		c.mu.Unlock()
		log.Debug("delete declined")
		return Declined, nil
	}

	c.mu.Lock()
	snap, idx, ok := c.list.Remove(id)
	if !ok {
		delete(c.inflight, id)
		c.mu.Unlock()
		return Declined, ErrNotFound
	}
	rec.snapshot, rec.index = snap, idx
	rec.phase = phasePending
	rec.timer = c.opt.clock.AfterFunc(c.opt.grace, func() { c.commit(rec) })
	c.mu.Unlock()

	log.Debug("delete pending", logx.Duration("grace", c.opt.grace))
	c.notify.Undoable(req.undoMessage(), func() { c.undo(rec) }, c.opt.grace)

	select {
	case out := <-rec.done:
		return out, nil
	case <-ctx.Done():
		if c.cancelPending(rec) {
			log.Debug("delete abandoned inside grace window")
			return Undone, ctx.Err()
		}
		// Already past the commit point; the remote call sees ctx itself.
		return <-rec.done, nil
	}
}

func (c *Coordinator[T]) undo(rec *record[T]) {
	if c.cancelPending(rec) {
		c.opt.log.Debug("delete undone", logx.String("id", rec.id))
		rec.done <- Undone
	}
}

// cancelPending moves rec from pending to done, restoring the snapshot.
// It reports false if rec is no longer pending.
func (c *Coordinator[T]) cancelPending(rec *record[T]) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rec.phase != phasePending {
		return false
	}
	rec.phase = phaseDone
	if rec.timer != nil {
		rec.timer.Stop()
	}
	c.restoreLocked(rec)
	delete(c.inflight, rec.id)
	return true
}

func (c *Coordinator[T]) commit(rec *record[T]) {
	c.mu.Lock()
	if rec.phase != phasePending {
		c.mu.Unlock()
		return
	}
	rec.phase = phaseCommitting
	c.mu.Unlock()

	err := c.mutator.Delete(rec.ctx, rec.id)

	c.mu.Lock()
	rec.phase = phaseDone
	if err != nil {
		c.restoreLocked(rec)
	}
	delete(c.inflight, rec.id)
	c.mu.Unlock()

	if err != nil {
		c.opt.log.Warn("remote delete failed; restored", logx.String("id", rec.id), logx.Err(err))
		c.notify.Error(rec.req.failureMessage())
		rec.done <- RolledBack
		return
	}
	c.opt.log.Info("deleted", logx.String("id", rec.id))
	rec.done <- Committed
}

func (c *Coordinator[T]) restoreLocked(rec *record[T]) {
	if c.opt.restore == RestoreIndex {
		c.list.Insert(rec.index, rec.snapshot)
		return
	}
	c.list.Append(rec.snapshot)
}
