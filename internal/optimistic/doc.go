// Package optimistic implements delete-with-undo against a locally owned list.
//
// A deletion is confirmed by a Prompter, applied to the List immediately,
// announced through an undoable notification, and only sent to the Mutator
// once the grace window elapses without undo. A failed remote delete puts the
// exact removed item back and raises an error notification.
//
// Lifecycle of one Delete call:
//
//	confirming ──declined──▶ Declined
//	     │
//	  accepted (item removed)
//	     ▼
//	  pending ──undo / ctx done──▶ Undone (item restored)
//	     │
//	grace timer fires (commit point, undo ignored from here)
//	     ▼
//	 committing ──ok──▶ Committed
//	     └──────error──▶ RolledBack (item restored, error notified)
package optimistic
