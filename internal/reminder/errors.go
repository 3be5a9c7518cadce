package reminder

import "errors"

// Sentinel errors surfaced by the store and manager. Callers match them with
// errors.Is and render the wrapped detail to the user.
var (
	// ErrNotFound means no stored reminder carries the requested id.
	ErrNotFound = errors.New("reminder not found")

	// ErrCouldNotUnderstandTime means the request held no usable time
	// expression.
	ErrCouldNotUnderstandTime = errors.New("could not understand the time")

	// ErrTimeInPast means the request referred to a moment that already
	// passed.
	ErrTimeInPast = errors.New("requested time is in the past")

	// ErrInvalidOrdinal means the given list number matches no pending
	// reminder.
	ErrInvalidOrdinal = errors.New("invalid reminder number")

	// ErrPersistenceFailure means a reminder could not be written to or
	// removed from the store; the pending set is left unchanged.
	ErrPersistenceFailure = errors.New("could not persist reminder")
)
