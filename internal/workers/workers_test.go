// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The Momentum

package workers

import (
	"testing"
)

// mockWorker tracks how many times Run and Stop were called.
type mockWorker struct {
	runCount  int
	stopCount int
}

func (m *mockWorker) Run()  { m.runCount++ }
func (m *mockWorker) Stop() { m.stopCount++ }

func TestWorkers_Run_AllWorkersAreCalled(t *testing.T) {
	w1 := &mockWorker{}
	w2 := &mockWorker{}
	w3 := &mockWorker{}

	ws := NewWorkers(w1, w2, w3)
	ws.Run()

	for i, w := range []*mockWorker{w1, w2, w3} {
		if w.runCount != 1 {
			t.Errorf("worker[%d]: expected runCount=1, got %d", i, w.runCount)
		}
	}
}

func TestWorkers_Run_Empty(t *testing.T) {
	ws := NewWorkers()

	// Should not panic on empty workers list
	ws.Run()
	ws.Stop()
}

func TestWorkers_Run_Nil(t *testing.T) {
	ws := &Workers{}

	// Should not panic when workers field is nil
	ws.Run()
	ws.Stop()
}

func TestWorkers_Stop_ReverseOrder(t *testing.T) {
	order := []int{}

	ws := NewWorkers(
		&orderWorker{id: 1, order: &order},
		&orderWorker{id: 2, order: &order},
		&orderWorker{id: 3, order: &order},
	)
	ws.Stop()

	expected := []int{3, 2, 1}
	for i, v := range expected {
		if order[i] != v {
			t.Errorf("expected order[%d]=%d, got %d", i, v, order[i])
		}
	}
}

func TestWorkers_RunStop_Paired(t *testing.T) {
	w := &mockWorker{}
	ws := NewWorkers(w)

	ws.Run()
	ws.Stop()

	if w.runCount != 1 || w.stopCount != 1 {
		t.Errorf("expected one Run and one Stop, got %d/%d", w.runCount, w.stopCount)
	}
}

// orderWorker appends its ID to a shared slice on Stop.
type orderWorker struct {
	id    int
	order *[]int
}

func (o *orderWorker) Run() {}
func (o *orderWorker) Stop() {
	*o.order = append(*o.order, o.id)
}
