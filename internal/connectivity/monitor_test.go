// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The Momentum

package connectivity

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/the-momentum/open-wearables-sync/internal/logger"
)

type stubProber struct {
	mu        sync.Mutex
	connected bool
	available bool
}

func (p *stubProber) set(connected, available bool) {
	p.mu.Lock()
	p.connected = connected
	p.available = available
	p.mu.Unlock()
}

func (p *stubProber) Connected(context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

func (p *stubProber) Available(context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.available
}

type stubEngine struct {
	running   atomic.Bool
	resumable atomic.Bool
	deferred  atomic.Bool
}

func (e *stubEngine) Running() bool                          { return e.running.Load() }
func (e *stubEngine) HasResumableState(context.Context) bool { return e.resumable.Load() }
func (e *stubEngine) DeferredResumePending() bool            { return e.deferred.Load() }
func (e *stubEngine) ClearDeferredResume()                   { e.deferred.Store(false) }

type countingTrigger struct {
	fired atomic.Int64
}

func (t *countingTrigger) Trigger() { t.fired.Add(1) }

type countingSweeper struct {
	kicks atomic.Int64
}

func (s *countingSweeper) Kick() { s.kicks.Add(1) }

func newTestMonitor(prober *stubProber, engine *stubEngine, trigger *countingTrigger) *Monitor {
	return NewMonitor(prober, engine, trigger, &countingSweeper{}, 5*time.Millisecond, 0, logger.Nop())
}

func TestMonitor_ReconnectTriggersResume(t *testing.T) {
	prober := &stubProber{connected: false, available: true}
	engine := &stubEngine{}
	engine.resumable.Store(true)
	trigger := &countingTrigger{}

	m := newTestMonitor(prober, engine, trigger)
	m.Run()
	defer m.Stop()

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, trigger.fired.Load(), "staying down must not trigger")

	prober.set(true, true)
	assert.Eventually(t, func() bool {
		return trigger.fired.Load() == 1
	}, time.Second, time.Millisecond)

	// Staying connected is not a transition.
	time.Sleep(30 * time.Millisecond)
	assert.EqualValues(t, 1, trigger.fired.Load())
}

// A reconnect must kick the outbox sweep even when no session resumes,
// so staged chunks do not wait out the regular sweep interval.
func TestMonitor_ReconnectKicksSweep(t *testing.T) {
	prober := &stubProber{connected: false, available: true}
	engine := &stubEngine{}
	trigger := &countingTrigger{}
	sweeper := &countingSweeper{}

	m := NewMonitor(prober, engine, trigger, sweeper, 5*time.Millisecond, 0, logger.Nop())
	m.Run()
	defer m.Stop()

	time.Sleep(15 * time.Millisecond)
	prober.set(true, true)

	assert.Eventually(t, func() bool {
		return sweeper.kicks.Load() == 1
	}, time.Second, time.Millisecond)
	assert.Zero(t, trigger.fired.Load(), "no resumable state, so only the sweep fires")
}

func TestMonitor_FirstObservationIsBaseline(t *testing.T) {
	prober := &stubProber{connected: true, available: true}
	engine := &stubEngine{}
	engine.resumable.Store(true)
	trigger := &countingTrigger{}

	m := newTestMonitor(prober, engine, trigger)
	m.Run()
	defer m.Stop()

	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, trigger.fired.Load(), "starting while connected must not trigger")
}

func TestMonitor_NoResumableStateNoTrigger(t *testing.T) {
	prober := &stubProber{connected: false, available: true}
	engine := &stubEngine{}
	trigger := &countingTrigger{}

	m := newTestMonitor(prober, engine, trigger)
	m.Run()
	defer m.Stop()

	time.Sleep(15 * time.Millisecond)
	prober.set(true, true)
	time.Sleep(30 * time.Millisecond)

	assert.Zero(t, trigger.fired.Load())
}

func TestMonitor_AvailabilityReturnFiresDeferredResume(t *testing.T) {
	prober := &stubProber{connected: true, available: false}
	engine := &stubEngine{}
	engine.deferred.Store(true)
	trigger := &countingTrigger{}

	m := newTestMonitor(prober, engine, trigger)
	m.Run()
	defer m.Stop()

	time.Sleep(15 * time.Millisecond)
	prober.set(true, true)

	assert.Eventually(t, func() bool {
		return trigger.fired.Load() == 1
	}, time.Second, time.Millisecond)
	assert.False(t, engine.DeferredResumePending(), "flag cleared before triggering")
}

func TestMonitor_RunningEngineIsLeftAlone(t *testing.T) {
	prober := &stubProber{connected: false, available: true}
	engine := &stubEngine{}
	engine.resumable.Store(true)
	engine.running.Store(true)
	trigger := &countingTrigger{}

	m := newTestMonitor(prober, engine, trigger)
	m.Run()
	defer m.Stop()

	time.Sleep(15 * time.Millisecond)
	prober.set(true, true)
	time.Sleep(30 * time.Millisecond)

	assert.Zero(t, trigger.fired.Load())
}
