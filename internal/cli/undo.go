package cli

import (
	"context"
	"errors"

	"trackerdesk/internal/app"
	"trackerdesk/internal/eventbus"
	"trackerdesk/internal/notifier"
	"trackerdesk/internal/optimistic"
)

var errRolledBack = errors.New("delete failed; item restored")

// runDelete runs del and, while its undo toast is visible, turns a line on
// stdin into an undo. The listener stops when del returns; a line it was
// still waiting for goes to the next reader.
func (e *env) runDelete(ctx context.Context, a *app.App, noun, id string, del func(context.Context, string) (optimistic.Outcome, error)) error {
	shown, unsub := a.Bus().Subscribe(4, notifier.EventShown)
	defer unsub()

	lctx, stop := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		e.listenUndo(lctx, a, shown)
	}()
	defer func() {
		stop()
		<-done
	}()

	out, err := del(ctx, id)
	if err != nil {
		return notFound(noun, id, err)
	}
	switch out {
	case optimistic.Declined:
		printInfo(e.out, "Cancelled.")
	case optimistic.Undone:
		printInfo(e.out, "Restored %s %s.", noun, id)
	case optimistic.RolledBack:
		return errRolledBack
	}
	return nil
}

func (e *env) listenUndo(ctx context.Context, a *app.App, shown <-chan eventbus.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-shown:
			if !ok {
				return
			}
			data, ok := ev.Data.(notifier.Event)
			if !ok || !data.Toast.Undoable {
				continue
			}
			line, err := e.in.ReadLine(ctx)
			if err != nil && line == "" {
				return
			}
			a.Toasts.Undo(data.Toast.ID)
			return
		}
	}
}
