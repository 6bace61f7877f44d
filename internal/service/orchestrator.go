package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/the-momentum/open-wearables-sync/internal/credentials"
	"github.com/the-momentum/open-wearables-sync/internal/logger"
	"github.com/the-momentum/open-wearables-sync/internal/provider"
	"github.com/the-momentum/open-wearables-sync/internal/store"
	"github.com/the-momentum/open-wearables-sync/models"
)

type syncOrchestrator struct {
	provider    provider.Provider
	transmitter ChunkTransmitter
	states      store.SyncStateRepository
	outbox      store.OutboxRepository
	creds       credentials.Store
	budget      ExecutionBudget
	logger      *logger.Logger

	types   []models.RecordType
	fgLimit int
	bgLimit int

	// Single-flight gate. Guards running and the current-session snapshot
	// used by Status; never held across a suspension point. current is
	// always an immutable deep copy republished after every persisted
	// mutation, so Status may read it lock-free once fetched.
	mu      sync.Mutex
	running bool
	current *models.SyncState

	// Cooperative cancellation, independent of the single-flight lock.
	cancelMu   sync.Mutex
	cancelled  bool
	cancelSync context.CancelFunc

	deferredMu     sync.Mutex
	deferredResume bool
}

// NewSyncOrchestrator creates the top-level session coordinator.
func NewSyncOrchestrator(
	prov provider.Provider,
	transmitter ChunkTransmitter,
	states store.SyncStateRepository,
	outbox store.OutboxRepository,
	creds credentials.Store,
	budget ExecutionBudget,
	types []models.RecordType,
	fgLimit, bgLimit int,
	log *logger.Logger,
) SyncOrchestrator {
	if len(types) == 0 {
		types = models.DefaultTrackedTypes
	}
	return &syncOrchestrator{
		provider:    prov,
		transmitter: transmitter,
		states:      states,
		outbox:      outbox,
		creds:       creds,
		budget:      budget,
		types:       types,
		fgLimit:     fgLimit,
		bgLimit:     bgLimit,
		logger:      log,
	}
}

func (o *syncOrchestrator) StartSync(ctx context.Context, fullExport bool) (models.SyncOutcome, error) {
	if !o.begin() {
		o.logger.Debug().Str("func", "syncOrchestrator.StartSync").Msg("sync already in progress")
		return models.OutcomeIncomplete, ErrSyncInProgress
	}
	defer o.end()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	o.armCancel(cancel)

	cred, err := o.creds.Get()
	if err != nil {
		return models.OutcomeIncomplete, fmt.Errorf("no authorized user: %w: %w", ErrAuthFailed, err)
	}

	state, err := o.loadOrCreateState(ctx, cred.UserKey, fullExport)
	if err != nil {
		return models.OutcomeIncomplete, err
	}
	o.publishState(state)

	log := o.logger.With().
		Str("user_key", state.UserKey).
		Bool("full_export", state.FullExport).
		Logger()
	log.Info().Int("type_index", state.TypeIndex).Msg("sync session started")

	outcome, err := o.runSession(ctx, state)
	if err != nil {
		log.Warn().Err(err).Msg("sync session failed")
		return outcome, err
	}

	log.Info().
		Str("outcome", outcome.String()).
		Int64("total_sent", state.TotalSent).
		Msg("sync session finished")
	return outcome, nil
}

func (o *syncOrchestrator) Resume(ctx context.Context) (models.SyncOutcome, error) {
	// Resume is the orchestrator's re-arm entry point: full/incremental
	// mode is whatever the persisted session recorded, or incremental
	// when starting fresh.
	return o.StartSync(ctx, false)
}

// runSession iterates tracked types from the resume index. A type-local
// failure skips that type; a pause stops iteration with state intact.
func (o *syncOrchestrator) runSession(ctx context.Context, state *models.SyncState) (models.SyncOutcome, error) {
	for i := state.TypeIndex; i < len(o.types); i++ {
		state.TypeIndex = i
		if err := o.states.Save(ctx, state); err != nil {
			return models.OutcomeIncomplete, fmt.Errorf("persist resume index: %w", err)
		}
		o.publishState(state)

		if o.isCancelled() {
			o.logger.Info().Str("func", "syncOrchestrator.runSession").Msg("sync cancelled, state kept for resume")
			return models.OutcomeIncomplete, nil
		}

		recordType := o.types[i]
		tp := state.ProgressFor(recordType)
		if tp.Completed {
			continue
		}

		err := o.pullType(ctx, state, tp)
		switch {
		case err == nil:
			// Type exhausted.

		case errors.Is(err, provider.ErrUnavailable):
			o.setDeferredResume(true)
			o.saveQuietly(ctx, state)
			o.logger.Warn().
				Str("type", recordType.String()).
				Msg("source data unavailable, session deferred")
			return models.OutcomeIncomplete, nil

		case errors.Is(err, ErrAuthFailed):
			o.saveQuietly(ctx, state)
			return models.OutcomeIncomplete, err

		case isPause(err):
			o.saveQuietly(ctx, state)
			o.logger.Warn().Err(err).
				Str("type", recordType.String()).
				Msg("sync paused, state kept for resume")
			return models.OutcomeIncomplete, nil

		case errors.Is(err, ErrProviderFailed):
			// Type isolation: skip the remainder of this type so one bad
			// source cannot block the others. The skipped window is lost
			// for this session.
			o.logger.Error().Err(err).
				Str("type", recordType.String()).
				Msg("provider failed, skipping type")
			tp.Completed = true
			if serr := o.states.SaveProgress(ctx, state.UserKey, tp); serr != nil {
				return models.OutcomeIncomplete, fmt.Errorf("persist skipped type: %w", serr)
			}

		default:
			// Local storage failures abort the attempt; state remains at
			// the last good checkpoint.
			o.saveQuietly(ctx, state)
			o.logger.Error().Err(err).
				Str("type", recordType.String()).
				Msg("sync aborted")
			return models.OutcomeIncomplete, nil
		}

		if err := o.states.Save(ctx, state); err != nil {
			return models.OutcomeIncomplete, fmt.Errorf("persist session: %w", err)
		}
		o.publishState(state)
	}

	return o.finalize(ctx, state)
}

// finalize closes a session whose every type completed: record the
// full-export flag when applicable and drop the session state.
func (o *syncOrchestrator) finalize(ctx context.Context, state *models.SyncState) (models.SyncOutcome, error) {
	if !state.AllCompleted(o.types) {
		return models.OutcomeIncomplete, nil
	}

	if state.FullExport {
		if err := o.states.SetFullExportDone(ctx, state.UserKey); err != nil {
			return models.OutcomeIncomplete, fmt.Errorf("record full export: %w", err)
		}
	}

	// Close the session but keep the acknowledged cursors: they are what
	// makes the next sync incremental.
	if err := o.states.Complete(ctx, state.UserKey); err != nil {
		return models.OutcomeIncomplete, fmt.Errorf("finalize session: %w", err)
	}

	return models.OutcomeCompleted, nil
}

func (o *syncOrchestrator) loadOrCreateState(ctx context.Context, userKey string, fullExport bool) (*models.SyncState, error) {
	state, err := o.states.Get(ctx, userKey)
	if err == nil {
		// Resumable session wins over the requested mode.
		return state, nil
	}
	if !errors.Is(err, store.ErrSyncStateNotFound) {
		return nil, fmt.Errorf("load sync state: %w", err)
	}

	// First-ever sync must be a full export, whatever was asked for.
	done, err := o.states.FullExportDone(ctx, userKey)
	if err != nil {
		return nil, fmt.Errorf("check full export flag: %w", err)
	}
	if !done {
		fullExport = true
	}

	state = models.NewSyncState(userKey, fullExport)

	// An incremental session continues from the cursors earlier sessions
	// acknowledged; a full export deliberately starts from scratch.
	if !fullExport {
		cursors, err := o.states.Cursors(ctx, userKey)
		if err != nil {
			return nil, fmt.Errorf("load cursors: %w", err)
		}
		for t, c := range cursors {
			state.ProgressFor(t).Cursor = c
		}
	}

	if err = o.states.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("create sync state: %w", err)
	}

	return state, nil
}

func (o *syncOrchestrator) Stop() {
	o.cancelMu.Lock()
	o.cancelled = true
	cancel := o.cancelSync
	o.cancelMu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (o *syncOrchestrator) Reset(ctx context.Context) error {
	if o.Running() {
		return ErrSyncInProgress
	}

	cred, err := o.creds.Get()
	if err != nil {
		return fmt.Errorf("no authorized user: %w: %w", ErrAuthFailed, err)
	}

	if err = o.states.Delete(ctx, cred.UserKey); err != nil {
		return fmt.Errorf("reset sync state: %w", err)
	}
	if err = o.outbox.DeleteForUser(ctx, cred.UserKey); err != nil {
		return fmt.Errorf("purge outbox: %w", err)
	}

	o.logger.Info().Str("user_key", cred.UserKey).Msg("sync progress reset")
	return nil
}

func (o *syncOrchestrator) Status(ctx context.Context) (models.SyncStatus, error) {
	o.mu.Lock()
	running := o.running
	current := o.current
	o.mu.Unlock()

	status := models.SyncStatus{Running: running}

	// current is an immutable snapshot; once fetched it is safe to read
	// without the lock while the session keeps running.
	state := current
	if state == nil {
		cred, err := o.creds.Get()
		if err != nil {
			return status, nil
		}
		status.UserKey = cred.UserKey

		if done, err := o.states.FullExportDone(ctx, cred.UserKey); err == nil {
			status.FullExportDone = done
		}

		state, err = o.states.Get(ctx, cred.UserKey)
		if errors.Is(err, store.ErrSyncStateNotFound) {
			return status, nil
		}
		if err != nil {
			return status, fmt.Errorf("load sync state: %w", err)
		}
	}

	status.UserKey = state.UserKey
	status.FullExport = state.FullExport
	status.TypeIndex = state.TypeIndex
	status.TotalSent = state.TotalSent
	for _, t := range o.types {
		if tp, ok := state.Progress[t]; ok {
			status.Types = append(status.Types, *tp)
		}
	}

	return status, nil
}

func (o *syncOrchestrator) Running() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running
}

func (o *syncOrchestrator) HasResumableState(ctx context.Context) bool {
	cred, err := o.creds.Get()
	if err != nil {
		return false
	}
	_, err = o.states.Get(ctx, cred.UserKey)
	return err == nil
}

func (o *syncOrchestrator) DeferredResumePending() bool {
	o.deferredMu.Lock()
	defer o.deferredMu.Unlock()
	return o.deferredResume
}

func (o *syncOrchestrator) ClearDeferredResume() {
	o.setDeferredResume(false)
}

func (o *syncOrchestrator) setDeferredResume(v bool) {
	o.deferredMu.Lock()
	o.deferredResume = v
	o.deferredMu.Unlock()
}

// begin acquires the single-flight gate. Returns false when a session is
// already active.
func (o *syncOrchestrator) begin() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running {
		return false
	}
	o.running = true
	return true
}

func (o *syncOrchestrator) end() {
	o.mu.Lock()
	o.running = false
	o.current = nil
	o.mu.Unlock()

	o.cancelMu.Lock()
	o.cancelled = false
	o.cancelSync = nil
	o.cancelMu.Unlock()
}

func (o *syncOrchestrator) armCancel(cancel context.CancelFunc) {
	o.cancelMu.Lock()
	o.cancelled = false
	o.cancelSync = cancel
	o.cancelMu.Unlock()
}

func (o *syncOrchestrator) isCancelled() bool {
	o.cancelMu.Lock()
	defer o.cancelMu.Unlock()
	return o.cancelled
}

func (o *syncOrchestrator) publishState(state *models.SyncState) {
	snapshot := state.Snapshot()
	o.mu.Lock()
	o.current = snapshot
	o.mu.Unlock()
}

func (o *syncOrchestrator) saveQuietly(ctx context.Context, state *models.SyncState) {
	if err := o.states.Save(ctx, state); err != nil {
		o.logger.Err(err).Str("func", "syncOrchestrator.saveQuietly").Msg("failed to persist session state")
	}
	o.publishState(state)
}
