package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/the-momentum/open-wearables-sync/internal/logger"
	"github.com/the-momentum/open-wearables-sync/models"
)

type countingSweepTransmitter struct {
	sweeps atomic.Int64
}

func (c *countingSweepTransmitter) Send(context.Context, models.Chunk, string) (SendResult, error) {
	return SendResult{}, nil
}

func (c *countingSweepTransmitter) Sweep(context.Context) error {
	c.sweeps.Add(1)
	return nil
}

func TestOutboxSweeper_TicksUntilStopped(t *testing.T) {
	tr := &countingSweepTransmitter{}
	s := NewOutboxSweeper(tr, 10*time.Millisecond, logger.Nop())

	s.Run()
	require.Eventually(t, func() bool {
		return tr.sweeps.Load() >= 2
	}, time.Second, time.Millisecond)
	s.Stop()

	after := tr.sweeps.Load()
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, after, tr.sweeps.Load(), "no sweeps after Stop")
}

func TestOutboxSweeper_KickRunsAheadOfSchedule(t *testing.T) {
	tr := &countingSweepTransmitter{}
	s := NewOutboxSweeper(tr, time.Hour, logger.Nop())

	s.Run()
	defer s.Stop()

	s.Kick()
	require.Eventually(t, func() bool {
		return tr.sweeps.Load() == 1
	}, time.Second, time.Millisecond)
}

func TestOutboxSweeper_KicksCoalesce(t *testing.T) {
	tr := &countingSweepTransmitter{}
	s := NewOutboxSweeper(tr, time.Hour, logger.Nop())

	// Kicks before the loop drains them collapse into a single pass.
	s.Kick()
	s.Kick()
	s.Kick()

	s.Run()
	require.Eventually(t, func() bool {
		return tr.sweeps.Load() >= 1
	}, time.Second, time.Millisecond)
	s.Stop()

	require.EqualValues(t, 1, tr.sweeps.Load())
}
