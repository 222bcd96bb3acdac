package notifier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackerdesk/internal/clock"
	"trackerdesk/internal/eventbus"
	"trackerdesk/internal/optimistic"
)

var _ optimistic.Notifier = (*Center)(nil)

func newCenter(t *testing.T) (*Center, *clock.Fake, eventbus.Bus) {
	t.Helper()
	clk := clock.NewFake(time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC))
	bus := eventbus.New()
	return New(WithClock(clk), WithBus(bus)), clk, bus
}

func TestPlainToastAutoDismisses(t *testing.T) {
	t.Parallel()
	c, clk, _ := newCenter(t)

	id := c.Success("Rule created.")
	c.Info("Loading")
	require.Len(t, c.List(), 2)

	clk.Advance(3999 * time.Millisecond)
	require.Len(t, c.List(), 2)

	clk.Advance(time.Millisecond)
	assert.Empty(t, c.List())
	assert.False(t, c.Dismiss(id), "expired toast cannot be dismissed again")
	assert.Len(t, c.History(), 2)
}

func TestUndoRunsOnceAndDismisses(t *testing.T) {
	t.Parallel()
	c, clk, bus := newCenter(t)
	events, unsub := bus.Subscribe(8, EventUndone, EventDismissed)
	defer unsub()

	calls := 0
	id := c.UndoableID("Deleted.", func() { calls++ }, 5*time.Second)
	require.True(t, c.List()[0].Undoable)

	require.True(t, c.Undo(id))
	assert.False(t, c.Undo(id))
	assert.Equal(t, 1, calls)
	assert.Empty(t, c.List())

	clk.Advance(10 * time.Second)
	assert.Equal(t, 1, calls)

	first := <-events
	assert.Equal(t, EventUndone, first.Type)
	second := <-events
	assert.Equal(t, EventDismissed, second.Type)
	assert.Equal(t, "undone", second.Data.(Event).Reason)
}

func TestUndoableUsesCallerDuration(t *testing.T) {
	t.Parallel()
	c, clk, _ := newCenter(t)
	c.Undoable("Deleted.", func() {}, 5*time.Second)

	clk.Advance(4 * time.Second)
	require.Len(t, c.List(), 1, "undoable toast outlives the plain ttl")
	clk.Advance(time.Second)
	assert.Empty(t, c.List())
}

func TestUndoIgnoresPlainToasts(t *testing.T) {
	t.Parallel()
	c, _, _ := newCenter(t)
	id := c.ErrorID("Delete failed.")
	other := c.Success("ok")

	assert.False(t, c.Undo(id))
	list := c.List()
	require.Len(t, list, 2)
	assert.Equal(t, id, list[0].ID, "order is unchanged")
	assert.Equal(t, other, list[1].ID)
	assert.Equal(t, KindError, list[0].Kind)
}

func TestUndoLatestPicksNewestUndoable(t *testing.T) {
	t.Parallel()
	c, _, _ := newCenter(t)
	var got []string
	c.Undoable("first", func() { got = append(got, "first") }, time.Minute)
	c.Undoable("second", func() { got = append(got, "second") }, time.Minute)
	c.Info("noise")

	require.True(t, c.UndoLatest())
	require.True(t, c.UndoLatest())
	assert.False(t, c.UndoLatest())
	assert.Equal(t, []string{"second", "first"}, got)
}

func TestHistoryIsBounded(t *testing.T) {
	t.Parallel()
	c := New(WithClock(clock.NewFake(time.Unix(0, 0))), WithHistory(2))
	c.Info("a")
	c.Info("b")
	c.Info("c")
	h := c.History()
	require.Len(t, h, 2)
	assert.Equal(t, "b", h[0].Message)
	assert.Equal(t, "c", h[1].Message)
}
