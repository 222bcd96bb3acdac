package optimistic

import "errors"

var (
	// ErrNotFound is returned when the id is not in the visible list.
	ErrNotFound = errors.New("optimistic: item not in list")
	// ErrInFlight is returned when a deletion for the same id is already
	// confirming, pending or committing.
	ErrInFlight = errors.New("optimistic: deletion already in progress")
)
