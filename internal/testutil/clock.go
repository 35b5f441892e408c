// Package testutil provides deterministic helpers for engine tests.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/mhoram/dutbench/internal/dut"
)

// StepClock is a lock-step edge source for deterministic tests.
//
// Unlike the free-running engine.Clock, edges occur only when the test
// fires them, and StepSync fires an edge only after a waiter has
// registered. Because the sequencer re-registers between edges, every
// fired edge is consumed exactly once, which makes edge counts (and
// therefore trace seq values) exact and reproducible.
type StepClock struct {
	dev dut.Device

	mu      sync.Mutex
	edges   int64
	waiters []chan struct{}
}

// NewStepClock creates a lock-step clock driving the given device's
// clock line. dev may be nil for waits that need no device.
func NewStepClock(dev dut.Device) *StepClock {
	return &StepClock{dev: dev}
}

// Start implements engine.EdgeSource. A StepClock never free-runs, so
// Start is a no-op.
func (c *StepClock) Start(ctx context.Context) {}

// Rising implements engine.EdgeSource. Each call registers a waiter for
// the next fired edge.
func (c *StepClock) Rising() <-chan struct{} {
	ch := make(chan struct{})
	c.mu.Lock()
	c.waiters = append(c.waiters, ch)
	c.mu.Unlock()
	return ch
}

// Edges implements engine.EdgeSource.
func (c *StepClock) Edges() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.edges
}

// fire produces one full clock period: low then high on the device's
// clock line, then wakes all registered waiters.
func (c *StepClock) fire() {
	c.mu.Lock()
	c.edges++
	ws := c.waiters
	c.waiters = nil
	dev := c.dev
	if dev != nil {
		// Drive the device before waking waiters so woken code observes
		// post-edge state, same as the free-running clock.
		dev.DriveLine(dut.PortClock, false)
		dev.DriveLine(dut.PortClock, true)
	}
	c.mu.Unlock()
	for _, ch := range ws {
		close(ch)
	}
}

// hasWaiter reports whether at least one waiter is registered.
func (c *StepClock) hasWaiter() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters) > 0
}

// StepSync fires n edges, waiting before each one until a waiter has
// registered. Use it when the code under test is already blocked in (or
// looping on) an edge wait on another goroutine.
func (c *StepClock) StepSync(n int) {
	for i := 0; i < n; i++ {
		for !c.hasWaiter() {
			time.Sleep(10 * time.Microsecond)
		}
		c.fire()
	}
}

// Drive fires edges in lock-step until done is closed. It parks between
// edges whenever no waiter is registered, so sequencer code that does
// synchronous work between waits never misses an edge.
func (c *StepClock) Drive(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		default:
		}
		if c.hasWaiter() {
			c.fire()
			continue
		}
		time.Sleep(10 * time.Microsecond)
	}
}
