// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The Momentum

// Package store persists the engine's durable state in an embedded SQLite
// database: the per-user sync session with its per-type progress rows, the
// outbox of staged chunks, and per-user settings such as the
// full-export-completed flag.
//
// Single-writer discipline for sessions is enforced by the orchestrator's
// single-flight lock; the outbox is touched by both the main delivery path
// and the sweep worker, so every outbox mutation here is idempotent.
package store

import (
	"context"
	"time"

	"github.com/the-momentum/open-wearables-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// SyncStateRepository persists the per-user sync session aggregate.
type SyncStateRepository interface {
	// Get loads the session for userKey, including all progress rows.
	// Returns [ErrSyncStateNotFound] when no session exists.
	Get(ctx context.Context, userKey string) (*models.SyncState, error)

	// Save upserts the session row and every progress row it holds, in
	// one transaction.
	Save(ctx context.Context, state *models.SyncState) error

	// SaveProgress upserts a single type's progress row (counts and
	// completion flag).
	SaveProgress(ctx context.Context, userKey string, progress *models.TypeProgress) error

	// AdvanceCursor durably records a type's new cursor, creating the
	// progress row if it does not exist yet. This is the only write path
	// that moves a cursor forward, and it is called strictly after the
	// chunk carrying that cursor was acknowledged by the remote endpoint.
	AdvanceCursor(ctx context.Context, userKey string, recordType models.RecordType, cursor string) error

	// Complete closes a finished session: the session row is removed and
	// the per-session counters are cleared, but cursors stay so the next
	// sync continues incrementally from the acknowledged anchors.
	Complete(ctx context.Context, userKey string) error

	// Cursors returns the persisted cursor per record type. Types that
	// were never synced are absent.
	Cursors(ctx context.Context, userKey string) (map[models.RecordType]string, error)

	// Delete removes the session, its progress rows, and the cursors.
	// Settings (the full-export flag) survive. Deleting a missing session
	// is a no-op. This is the reset path; a normally finished session
	// goes through Complete instead.
	Delete(ctx context.Context, userKey string) error

	// FullExportDone reports whether a full export has ever completed for
	// userKey.
	FullExportDone(ctx context.Context, userKey string) (bool, error)

	// SetFullExportDone records that a full export completed for userKey.
	SetFullExportDone(ctx context.Context, userKey string) error
}

// OutboxRepository persists staged chunks awaiting delivery.
type OutboxRepository interface {
	// Put stages a new item. The row must be durable before the caller
	// makes any network attempt for it.
	Put(ctx context.Context, item models.OutboxItem) error

	// Delete removes a delivered (or permanently rejected) item. Deleting
	// an item that is already gone is a no-op; the sweep worker and the
	// main path may both reconcile the same item.
	Delete(ctx context.Context, id string) error

	// ListOlderThan returns userKey's staged items created at least minAge
	// ago, oldest first. Young items are skipped because they may still be
	// owned by an in-flight main-path delivery.
	ListOlderThan(ctx context.Context, userKey string, minAge time.Duration) ([]models.OutboxItem, error)

	// IncrementAttempts bumps the delivery attempt counter of an item.
	IncrementAttempts(ctx context.Context, id string) error

	// DeleteForUser drops all staged items of a user. Used by reset.
	DeleteForUser(ctx context.Context, userKey string) error
}
