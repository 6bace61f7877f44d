package service

import (
	"sync"
	"time"
)

// UnlimitedBudget never constrains execution. The default for long-lived
// daemon deployments where the OS imposes no run window.
type UnlimitedBudget struct{}

func (UnlimitedBudget) Constrained() bool { return false }
func (UnlimitedBudget) Allow() bool       { return true }

// DeadlineBudget models an OS-granted execution window, such as a mobile
// background task. It reports constrained from the start, so the engine
// uses the smaller chunk size, and stops allowing chunks once less than
// the reserve remains: the engine needs time to persist progress and
// exit cleanly before the window slams shut.
type DeadlineBudget struct {
	mu       sync.Mutex
	deadline time.Time
	reserve  time.Duration
	now      func() time.Time
}

func NewDeadlineBudget(deadline time.Time, reserve time.Duration) *DeadlineBudget {
	return &DeadlineBudget{
		deadline: deadline,
		reserve:  reserve,
		now:      time.Now,
	}
}

func (b *DeadlineBudget) Constrained() bool { return true }

func (b *DeadlineBudget) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.now().Before(b.deadline.Add(-b.reserve))
}

// Extend moves the deadline, for hosts that grant extra time on the fly.
func (b *DeadlineBudget) Extend(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deadline = b.deadline.Add(d)
}
