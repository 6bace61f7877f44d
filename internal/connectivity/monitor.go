// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The Momentum

// Package connectivity watches two independent conditions the sync engine
// depends on: network reachability of the collection endpoint and
// accessibility of the source data. When either condition is restored and
// unfinished work exists, it triggers a debounced resume.
package connectivity

import (
	"context"
	"net"
	"time"

	"github.com/the-momentum/open-wearables-sync/internal/logger"
)

// Prober answers the two monitored questions. Implementations should be
// cheap; they run on every poll tick.
type Prober interface {
	// Connected reports whether the collection endpoint is reachable.
	Connected(ctx context.Context) bool

	// Available reports whether the source data can be read right now.
	Available(ctx context.Context) bool
}

// Engine is the narrow view of the orchestrator the monitor needs.
type Engine interface {
	Running() bool
	HasResumableState(ctx context.Context) bool
	DeferredResumePending() bool
	ClearDeferredResume()
}

// Trigger requests a debounced sync attempt.
type Trigger interface {
	Trigger()
}

// Sweeper accepts out-of-schedule outbox sweep requests.
type Sweeper interface {
	Kick()
}

type condition int

const (
	conditionUnknown condition = iota
	conditionUp
	conditionDown
)

// Monitor polls the prober and fires resume triggers on up-transitions.
// The first observation after start establishes a baseline and never
// triggers, so a freshly started engine does not sync just because the
// network happens to be up.
type Monitor struct {
	prober  Prober
	engine  Engine
	trigger Trigger
	sweeper Sweeper
	logger  *logger.Logger

	interval time.Duration
	settle   time.Duration

	connected condition
	available condition

	stop chan struct{}
	done chan struct{}
}

func NewMonitor(prober Prober, engine Engine, trigger Trigger, sweeper Sweeper, interval, settle time.Duration, log *logger.Logger) *Monitor {
	return &Monitor{
		prober:   prober,
		engine:   engine,
		trigger:  trigger,
		sweeper:  sweeper,
		logger:   log,
		interval: interval,
		settle:   settle,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run starts the poll loop in its own goroutine and returns.
func (m *Monitor) Run() {
	go m.loop()
}

// Stop ends the poll loop, abandoning any pending settle wait.
func (m *Monitor) Stop() {
	close(m.stop)
	<-m.done
}

func (m *Monitor) loop() {
	defer close(m.done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.observe(context.Background())
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.observe(context.Background())
		}
	}
}

// observe runs one poll and handles at most one up-transition per tick:
// a simultaneous reconnect and availability return still produce a single
// trigger, and the debounce collapses any near-simultaneous pair.
func (m *Monitor) observe(ctx context.Context) {
	connected := toCondition(m.prober.Connected(ctx))
	available := toCondition(m.prober.Available(ctx))

	reconnected := m.connected == conditionDown && connected == conditionUp
	dataReturned := m.available == conditionDown && available == conditionUp

	m.connected = connected
	m.available = available

	switch {
	case reconnected:
		m.onReconnect(ctx)
	case dataReturned:
		m.onDataReturned()
	}
}

func (m *Monitor) onReconnect(ctx context.Context) {
	// Staged outbox chunks must not wait out the regular sweep interval
	// once the network is back, whether or not a session resumes.
	m.sweeper.Kick()

	if m.engine.Running() || !m.engine.HasResumableState(ctx) {
		return
	}

	m.logger.Info().Msg("connectivity restored with unfinished sync, scheduling resume")

	// Let the link settle; captive portals and flapping radios look
	// connected for a moment before failing again.
	if !m.wait(m.settle) {
		return
	}
	m.trigger.Trigger()
}

func (m *Monitor) onDataReturned() {
	if !m.engine.DeferredResumePending() || m.engine.Running() {
		return
	}

	m.logger.Info().Msg("source data accessible again, scheduling deferred resume")

	m.engine.ClearDeferredResume()
	m.trigger.Trigger()
}

// wait sleeps for d unless the monitor is stopped first.
func (m *Monitor) wait(d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-m.stop:
		return false
	case <-t.C:
		return true
	}
}

func toCondition(up bool) condition {
	if up {
		return conditionUp
	}
	return conditionDown
}

// DialProber probes network reachability with a TCP dial against the
// collection endpoint and delegates data availability to an optional
// callback supplied by the platform layer.
type DialProber struct {
	// Address is the host:port of the collection endpoint.
	Address string

	// Timeout bounds a single dial attempt.
	Timeout time.Duration

	// AvailableFn reports source-data accessibility. Nil means always
	// available, which suits servers with no lock-screen equivalent.
	AvailableFn func(ctx context.Context) bool
}

func (p DialProber) Connected(_ context.Context) bool {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	conn, err := net.DialTimeout("tcp", p.Address, timeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

func (p DialProber) Available(ctx context.Context) bool {
	if p.AvailableFn == nil {
		return true
	}
	return p.AvailableFn(ctx)
}
