package store

import "errors"

var (
	// ErrSyncStateNotFound is returned when no sync session exists for the
	// requested user.
	ErrSyncStateNotFound = errors.New("sync state not found")

	// ErrOutboxItemNotFound is returned by point lookups of staged items.
	// Deletes are deliberately idempotent and never return it.
	ErrOutboxItemNotFound = errors.New("outbox item not found")
)
