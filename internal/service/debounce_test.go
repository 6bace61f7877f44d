package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-momentum/open-wearables-sync/internal/logger"
	"github.com/the-momentum/open-wearables-sync/models"
)

// countingEngine implements SyncOrchestrator and counts StartSync calls.
type countingEngine struct {
	starts atomic.Int64
}

func (e *countingEngine) StartSync(context.Context, bool) (models.SyncOutcome, error) {
	e.starts.Add(1)
	return models.OutcomeCompleted, nil
}

func (e *countingEngine) Resume(ctx context.Context) (models.SyncOutcome, error) {
	return e.StartSync(ctx, false)
}

func (e *countingEngine) Stop()                                  {}
func (e *countingEngine) Reset(context.Context) error            { return nil }
func (e *countingEngine) Running() bool                          { return false }
func (e *countingEngine) HasResumableState(context.Context) bool { return false }
func (e *countingEngine) DeferredResumePending() bool            { return false }
func (e *countingEngine) ClearDeferredResume()                   {}

func (e *countingEngine) Status(context.Context) (models.SyncStatus, error) {
	return models.SyncStatus{}, nil
}

func TestSyncTrigger_BurstCoalescesToOneSync(t *testing.T) {
	engine := &countingEngine{}
	trigger := NewSyncTrigger(engine, 30*time.Millisecond, logger.Nop())
	defer trigger.Stop()

	for i := 0; i < 10; i++ {
		trigger.Trigger()
		time.Sleep(time.Millisecond)
	}

	require.Eventually(t, func() bool {
		return engine.starts.Load() == 1
	}, time.Second, 5*time.Millisecond)

	// No stragglers after the window.
	time.Sleep(60 * time.Millisecond)
	assert.EqualValues(t, 1, engine.starts.Load())
}

func TestSyncTrigger_CancelDiscardsPending(t *testing.T) {
	engine := &countingEngine{}
	trigger := NewSyncTrigger(engine, 20*time.Millisecond, logger.Nop())
	defer trigger.Stop()

	trigger.Trigger()
	trigger.Cancel()

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, engine.starts.Load())
}

func TestSyncTrigger_StoppedTriggerIsInert(t *testing.T) {
	engine := &countingEngine{}
	trigger := NewSyncTrigger(engine, 10*time.Millisecond, logger.Nop())

	trigger.Stop()
	trigger.Trigger()

	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, engine.starts.Load())
}

func TestSyncTrigger_SeparateBurstsEachFire(t *testing.T) {
	engine := &countingEngine{}
	trigger := NewSyncTrigger(engine, 10*time.Millisecond, logger.Nop())
	defer trigger.Stop()

	trigger.Trigger()
	require.Eventually(t, func() bool { return engine.starts.Load() == 1 }, time.Second, time.Millisecond)

	trigger.Trigger()
	require.Eventually(t, func() bool { return engine.starts.Load() == 2 }, time.Second, time.Millisecond)
}
