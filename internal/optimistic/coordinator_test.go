package optimistic

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"trackerdesk/internal/clock"
	"trackerdesk/internal/confirm"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type item struct {
	ID   string
	Name string
}

func itemKey(i item) string { return i.ID }

type undoCall struct {
	msg    string
	onUndo func()
	d      time.Duration
}

type recNotifier struct {
	undoable chan undoCall

	mu     sync.Mutex
	errors []string
}

func newRecNotifier() *recNotifier {
	return &recNotifier{undoable: make(chan undoCall, 4)}
}

func (n *recNotifier) Undoable(msg string, onUndo func(), d time.Duration) {
	n.undoable <- undoCall{msg: msg, onUndo: onUndo, d: d}
}

func (n *recNotifier) Error(msg string) {
	n.mu.Lock()
	n.errors = append(n.errors, msg)
	n.mu.Unlock()
}

func (n *recNotifier) errorCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.errors)
}

type recMutator struct {
	calls atomic.Int32
	mu    sync.Mutex
	ids   []string
	fn    func(id string) error
}

func (m *recMutator) Delete(_ context.Context, id string) error {
	m.calls.Add(1)
	m.mu.Lock()
	m.ids = append(m.ids, id)
	m.mu.Unlock()
	if m.fn != nil {
		return m.fn(id)
	}
	return nil
}

func yes() confirm.Prompter {
	return confirm.Func(func(context.Context, confirm.Options) bool { return true })
}

func no() confirm.Prompter {
	return confirm.Func(func(context.Context, confirm.Options) bool { return false })
}

type fixture struct {
	list  *List[item]
	clk   *clock.Fake
	note  *recNotifier
	mut   *recMutator
	coord *Coordinator[item]
}

func newFixture(p confirm.Prompter, opts ...Option) *fixture {
	f := &fixture{
		list: NewList(itemKey, item{ID: "a", Name: "A"}, item{ID: "b", Name: "B"}),
		clk:  clock.NewFake(time.Unix(1_700_000_000, 0)),
		note: newRecNotifier(),
		mut:  &recMutator{},
	}
	opts = append([]Option{WithClock(f.clk)}, opts...)
	f.coord = New[item](f.list, p, f.note, f.mut, opts...)
	return f
}

type result struct {
	out Outcome
	err error
}

func (f *fixture) start(ctx context.Context, id string) <-chan result {
	ch := make(chan result, 1)
	go func() {
		out, err := f.coord.Delete(ctx, id, Request{
			Confirm:        confirm.Options{Title: "Delete rule", Danger: true},
			UndoMessage:    "Rule deleted",
			FailureMessage: "Delete failed",
		})
		ch <- result{out: out, err: err}
	}()
	return ch
}

func ids(items []item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestDeleteUndoInsideGraceWindow(t *testing.T) {
	f := newFixture(yes())
	res := f.start(context.Background(), "b")

	call := <-f.note.undoable
	assert.Equal(t, "Rule deleted", call.msg)
	assert.Equal(t, DefaultGraceWindow, call.d)
	assert.Equal(t, []string{"a"}, ids(f.list.Items()))
	assert.True(t, f.coord.InFlight("b"))

	f.clk.Advance(4 * time.Second)
	call.onUndo()

	r := <-res
	require.NoError(t, r.err)
	assert.Equal(t, Undone, r.out)
	assert.ElementsMatch(t, []string{"a", "b"}, ids(f.list.Items()))
	assert.False(t, f.coord.InFlight("b"))

	f.clk.Advance(time.Minute)
	assert.Zero(t, f.mut.calls.Load())
	assert.Zero(t, f.clk.Pending())
}

func TestDeleteCommitsAfterGraceWindow(t *testing.T) {
	f := newFixture(yes())
	res := f.start(context.Background(), "b")
	call := <-f.note.undoable

	f.clk.Advance(DefaultGraceWindow - time.Millisecond)
	assert.Zero(t, f.mut.calls.Load())

	f.clk.Advance(time.Millisecond)
	r := <-res
	require.NoError(t, r.err)
	assert.Equal(t, Committed, r.out)
	assert.Equal(t, int32(1), f.mut.calls.Load())
	assert.Equal(t, []string{"b"}, f.mut.ids)
	assert.Equal(t, []string{"a"}, ids(f.list.Items()))

	// A late undo after the commit point is ignored.
	call.onUndo()
	assert.Equal(t, []string{"a"}, ids(f.list.Items()))
	assert.Zero(t, f.note.errorCount())
}

func TestDeleteRollsBackOnRemoteFailure(t *testing.T) {
	f := newFixture(yes())
	f.mut.fn = func(string) error { return errors.New("503 from backend") }
	res := f.start(context.Background(), "b")
	<-f.note.undoable

	f.clk.Advance(DefaultGraceWindow)
	r := <-res
	require.NoError(t, r.err)
	assert.Equal(t, RolledBack, r.out)
	assert.ElementsMatch(t, []string{"a", "b"}, ids(f.list.Items()))
	assert.Equal(t, 1, f.note.errorCount())
	assert.Equal(t, []string{"Delete failed"}, f.note.errors)

	restored, ok := f.list.Find("b")
	require.True(t, ok)
	assert.Equal(t, item{ID: "b", Name: "B"}, restored)
}

func TestDeleteDeclined(t *testing.T) {
	f := newFixture(no())
	r := <-f.start(context.Background(), "b")
	require.NoError(t, r.err)
	assert.Equal(t, Declined, r.out)
	assert.Equal(t, []string{"a", "b"}, ids(f.list.Items()))
	assert.Empty(t, f.note.undoable)
	assert.Zero(t, f.note.errorCount())
	assert.Zero(t, f.mut.calls.Load())
	assert.False(t, f.coord.InFlight("b"))
}

func TestUndoIsIdempotent(t *testing.T) {
	f := newFixture(yes())
	res := f.start(context.Background(), "b")
	call := <-f.note.undoable

	call.onUndo()
	call.onUndo()
	r := <-res
	assert.Equal(t, Undone, r.out)
	assert.Equal(t, 2, f.list.Len())

	f.clk.Advance(time.Minute)
	call.onUndo()
	assert.Equal(t, 2, f.list.Len())
	assert.Zero(t, f.mut.calls.Load())
}

func TestUndoDuringRemoteCallIsIgnored(t *testing.T) {
	f := newFixture(yes())
	var late func()
	f.mut.fn = func(string) error {
		late()
		return nil
	}
	res := f.start(context.Background(), "b")
	call := <-f.note.undoable
	late = call.onUndo

	f.clk.Advance(DefaultGraceWindow)
	r := <-res
	assert.Equal(t, Committed, r.out)
	assert.Equal(t, []string{"a"}, ids(f.list.Items()))
}

func TestDeleteRejectsOverlappingInvocation(t *testing.T) {
	modal := confirm.NewModal(nil)
	f := newFixture(modal)
	res := f.start(context.Background(), "b")

	require.Eventually(t, modal.Visible, time.Second, time.Millisecond)
	_, err := f.coord.Delete(context.Background(), "b", Request{})
	assert.ErrorIs(t, err, ErrInFlight)

	modal.Cancel()
	r := <-res
	assert.Equal(t, Declined, r.out)
	assert.False(t, f.coord.InFlight("b"))
}

func TestDeleteUnknownID(t *testing.T) {
	f := newFixture(yes())
	out, err := f.coord.Delete(context.Background(), "zzz", Request{})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, Declined, out)
}

func TestContextCancelInsideGraceWindowRestores(t *testing.T) {
	f := newFixture(yes())
	ctx, cancel := context.WithCancel(context.Background())
	res := f.start(ctx, "b")
	<-f.note.undoable

	cancel()
	r := <-res
	assert.ErrorIs(t, r.err, context.Canceled)
	assert.Equal(t, Undone, r.out)
	assert.ElementsMatch(t, []string{"a", "b"}, ids(f.list.Items()))

	f.clk.Advance(time.Minute)
	assert.Zero(t, f.mut.calls.Load())
}

func TestRestoreIndexPolicy(t *testing.T) {
	f := newFixture(yes(), WithRestorePolicy(RestoreIndex), WithGraceWindow(2*time.Second))
	f.list.Append(item{ID: "c"})
	res := f.start(context.Background(), "a")
	call := <-f.note.undoable
	assert.Equal(t, 2*time.Second, call.d)
	assert.Equal(t, []string{"b", "c"}, ids(f.list.Items()))

	call.onUndo()
	<-res
	assert.Equal(t, []string{"a", "b", "c"}, ids(f.list.Items()))
}

func TestRestoreAppendPolicy(t *testing.T) {
	f := newFixture(yes())
	res := f.start(context.Background(), "a")
	call := <-f.note.undoable
	call.onUndo()
	<-res
	assert.Equal(t, []string{"b", "a"}, ids(f.list.Items()))
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "declined", Declined.String())
	assert.Equal(t, "undone", Undone.String())
	assert.Equal(t, "committed", Committed.String())
	assert.Equal(t, "rolled_back", RolledBack.String())
}
