// Package console holds one controller per screen of the tracker desk. Each
// controller owns its visible collection and is the only writer to it;
// deletions go through an optimistic.Coordinator so they can be undone for
// a grace window before the backend sees them.
package console

import (
	"errors"
	"time"

	"trackerdesk/internal/clock"
	"trackerdesk/internal/confirm"
	"trackerdesk/internal/optimistic"
	logx "trackerdesk/pkg/logx"
)

// ErrInvalidForm wraps every form validation failure.
var ErrInvalidForm = errors.New("invalid form")

// Notifier is the part of the notification center the controllers use.
type Notifier interface {
	optimistic.Notifier
	Success(message string) int
}

// Deps are shared by every controller.
type Deps struct {
	Prompt  confirm.Prompter
	Notify  Notifier
	Clock   clock.Clock
	Grace   time.Duration
	Restore optimistic.RestorePolicy
	Log     logx.Logger
}

func (d Deps) coordinatorOptions(log logx.Logger) []optimistic.Option {
	opts := []optimistic.Option{
		optimistic.WithRestorePolicy(d.Restore),
		optimistic.WithLogger(log),
	}
	if d.Grace > 0 {
		opts = append(opts, optimistic.WithGraceWindow(d.Grace))
	}
	if d.Clock != nil {
		opts = append(opts, optimistic.WithClock(d.Clock))
	}
	return opts
}

func (d Deps) logger(comp string) logx.Logger {
	log := d.Log
	if log.IsZero() {
		log = logx.Nop()
	}
	return log.With(logx.String("comp", comp))
}
