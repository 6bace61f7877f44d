package service

import (
	"context"
	"time"

	"github.com/the-momentum/open-wearables-sync/internal/logger"
)

// OutboxSweeper periodically replays staged outbox items that outlived
// the minimum age: chunks whose delivery or acknowledgment was cut off
// by a crash or network loss. Safe to run concurrently with an active
// session because reconciliation is idempotent on both sides.
type OutboxSweeper struct {
	transmitter ChunkTransmitter
	interval    time.Duration
	logger      *logger.Logger

	stop chan struct{}
	done chan struct{}
	kick chan struct{}
}

func NewOutboxSweeper(transmitter ChunkTransmitter, interval time.Duration, log *logger.Logger) *OutboxSweeper {
	return &OutboxSweeper{
		transmitter: transmitter,
		interval:    interval,
		logger:      log,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
		kick:        make(chan struct{}, 1),
	}
}

// Kick requests an immediate sweep pass outside the regular schedule,
// typically right after connectivity returns. Requests arriving while a
// pass is already queued coalesce into one.
func (s *OutboxSweeper) Kick() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// Run starts the sweep loop in its own goroutine and returns.
func (s *OutboxSweeper) Run() {
	go s.loop()
}

// Stop ends the loop and waits for an in-flight pass to finish.
func (s *OutboxSweeper) Stop() {
	close(s.stop)
	<-s.done
}

func (s *OutboxSweeper) loop() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-s.kick:
		case <-ticker.C:
		}
		if err := s.transmitter.Sweep(context.Background()); err != nil {
			s.logger.Warn().Err(err).Msg("outbox sweep pass failed")
		}
	}
}
