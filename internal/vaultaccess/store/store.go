package store

import "errors"

var (
	// ErrConflict reports that an optimistic update's precondition no
	// longer held at commit time. This is expected contention, not a
	// fault; callers re-read and retry.
	ErrConflict = errors.New("conflict: stored state changed since last read")

	// ErrNotFound reports that the requested row does not exist.
	ErrNotFound = errors.New("not found")
)
