// Package notifier is the in-process notification center.
//
// A toast is a short message with a kind (success, error, info). Plain toasts
// dismiss themselves after a TTL (4s by default). Undoable toasts carry an
// undo callback and stay up for the duration given by the caller; invoking
// Undo runs the callback at most once and dismisses the toast.
//
// # Events
//
// Every lifecycle change is published on the event bus so renderers (the CLI,
// tests) never poll:
//
//	toast.shown      a toast became visible
//	toast.dismissed  a toast was closed or expired
//	toast.undone     the undo action of a toast ran
//
// # History
//
// The center keeps a bounded history of every toast it has shown.
package notifier
