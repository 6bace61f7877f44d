// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The Momentum

// Package service contains the sync engine core: the orchestrator that
// drives a session across tracked record types, the per-type streaming
// puller, the outbox-backed chunk transmitter, and the single-flight token
// refresher.
package service

import (
	"context"

	"github.com/the-momentum/open-wearables-sync/models"
)

// SyncOrchestrator drives complete sync attempts. Exactly one session may
// be active per orchestrator instance; concurrent starts return
// [ErrSyncInProgress].
type SyncOrchestrator interface {
	// StartSync runs a sync attempt. When a resumable session exists,
	// fullExport is ignored and the recorded session continues from its
	// resume index; otherwise a fresh session is created. The first sync
	// of a user is forced to be a full export regardless of fullExport.
	//
	// The returned error is non-nil only for auth failures that survived
	// a refresh attempt; every other outcome is expressed through the
	// [models.SyncOutcome] and logs.
	StartSync(ctx context.Context, fullExport bool) (models.SyncOutcome, error)

	// Resume continues a paused session, or starts an incremental sync
	// when none exists.
	Resume(ctx context.Context) (models.SyncOutcome, error)

	// Stop cooperatively cancels the running session, aborting in-flight
	// network calls. Persisted state stays exactly at the last
	// acknowledged chunk. No-op when nothing runs.
	Stop()

	// Reset deletes the user's session state and purges their staged
	// outbox items. Refused while a sync is running.
	Reset(ctx context.Context) error

	// Status returns a point-in-time snapshot of engine progress.
	Status(ctx context.Context) (models.SyncStatus, error)

	// Running reports whether a session is currently active.
	Running() bool

	// HasResumableState reports whether a persisted session exists for
	// the current user.
	HasResumableState(ctx context.Context) bool

	// DeferredResumePending reports whether the last session paused
	// because source data was temporarily inaccessible.
	DeferredResumePending() bool

	// ClearDeferredResume resets the deferred-resume flag. Called by the
	// availability monitor right before it triggers a resume.
	ClearDeferredResume()
}

// SendResult describes how a chunk transmission concluded.
type SendResult struct {
	// Acked means the type loop may continue with the next chunk. True
	// for 2xx and for permanently rejected (dropped) chunks.
	Acked bool

	// CursorAdvanced means the chunk's cursor candidate was durably
	// persisted. False for dropped chunks: the stored cursor never moves
	// past data the endpoint did not store.
	CursorAdvanced bool
}

// ChunkTransmitter is the at-least-once delivery core: it stages a chunk
// durably, delivers it, and reconciles the outcome.
type ChunkTransmitter interface {
	// Send stages chunk in the outbox, then attempts delivery with the
	// current credentials. See [SendResult] for the ack semantics; the
	// error is non-nil for network-level failures (item stays staged for
	// the sweep) and terminal auth failures.
	Send(ctx context.Context, chunk models.Chunk, cursorCandidate string) (SendResult, error)

	// Sweep re-attempts delivery of staged items older than the minimum
	// age, applying the same cursor reconciliation as the main path.
	// This is what recovers chunks staged by a process that died before
	// the acknowledgment arrived.
	Sweep(ctx context.Context) error
}

// TokenRefresher coalesces credential refreshes: any number of concurrent
// callers share one network call and its result.
type TokenRefresher interface {
	Refresh(ctx context.Context) error
}

// ExecutionBudget is consulted before each chunk. Exhaustion pauses the
// session through the same path as a network pause, so an OS-imposed
// execution window never corrupts progress.
type ExecutionBudget interface {
	// Constrained reports whether the engine should use the smaller
	// background chunk size.
	Constrained() bool

	// Allow reports whether another chunk may be started.
	Allow() bool
}
