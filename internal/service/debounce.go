package service

import (
	"context"
	"sync"
	"time"

	"github.com/the-momentum/open-wearables-sync/internal/logger"
)

// SyncTrigger coalesces bursts of sync requests into a single attempt.
// Every Trigger call within the debounce window replaces the pending
// timer, so a burst of N calls produces exactly one sync, fired one
// window after the last call.
type SyncTrigger struct {
	engine SyncOrchestrator
	window time.Duration
	logger *logger.Logger

	mu      sync.Mutex
	pending *time.Timer
	stopped bool
}

func NewSyncTrigger(engine SyncOrchestrator, window time.Duration, log *logger.Logger) *SyncTrigger {
	return &SyncTrigger{
		engine: engine,
		window: window,
		logger: log,
	}
}

// Trigger schedules an incremental sync after the debounce window,
// cancelling any sync already scheduled but not yet started.
func (t *SyncTrigger) Trigger() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return
	}
	if t.pending != nil {
		t.pending.Stop()
	}
	t.pending = time.AfterFunc(t.window, t.fire)
}

// Cancel discards the pending trigger, if any. A sync that already
// started is unaffected.
func (t *SyncTrigger) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
}

// Stop cancels the pending trigger and refuses all further ones.
func (t *SyncTrigger) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopped = true
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
}

func (t *SyncTrigger) fire() {
	t.mu.Lock()
	t.pending = nil
	t.mu.Unlock()

	outcome, err := t.engine.StartSync(context.Background(), false)
	if err != nil {
		t.logger.Error().Err(err).Msg("triggered sync failed")
		return
	}
	t.logger.Debug().Str("outcome", outcome.String()).Msg("triggered sync finished")
}
