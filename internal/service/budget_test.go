package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUnlimitedBudget(t *testing.T) {
	b := UnlimitedBudget{}
	assert.False(t, b.Constrained())
	assert.True(t, b.Allow())
}

func TestDeadlineBudget_AllowsUntilReserve(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b := NewDeadlineBudget(now.Add(30*time.Second), 10*time.Second)
	b.now = func() time.Time { return now }

	assert.True(t, b.Constrained())
	assert.True(t, b.Allow())

	// 21s in: less than the 10s reserve remains.
	b.now = func() time.Time { return now.Add(21 * time.Second) }
	assert.False(t, b.Allow())
}

func TestDeadlineBudget_Extend(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b := NewDeadlineBudget(now.Add(5*time.Second), 5*time.Second)
	b.now = func() time.Time { return now }

	assert.False(t, b.Allow())

	b.Extend(30 * time.Second)
	assert.True(t, b.Allow())
}
