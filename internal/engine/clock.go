package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mhoram/dutbench/internal/dut"
)

// DefaultPeriod is the default full clock period.
const DefaultPeriod = 10 * time.Microsecond

// EdgeSource is the seam between the sequencer and whatever paces the
// clock line. The production implementation is Clock; tests substitute a
// lock-step source so edge counts are exact.
type EdgeSource interface {
	// Start begins toggling the clock. Idempotent; the clock runs until
	// the context is cancelled.
	Start(ctx context.Context)

	// Rising returns a channel that is closed at the next rising edge.
	// Each call must be made before waiting; the returned channel is
	// only good for one edge.
	Rising() <-chan struct{}

	// Edges returns the number of rising edges produced so far.
	// Monotonic; used to stamp trace events.
	Edges() int64
}

// Clock is the free-running clock source. It toggles the device's clock
// line at half-period intervals on a background goroutine and broadcasts
// every rising edge to waiters.
//
// The clock cannot fail once started; it stops only when its context is
// cancelled at session end.
type Clock struct {
	dev    dut.Device
	period time.Duration

	started atomic.Bool
	edges   atomic.Int64

	mu sync.Mutex
	ch chan struct{}
}

// NewClock creates a clock for the given device. A non-positive period
// falls back to DefaultPeriod.
func NewClock(dev dut.Device, period time.Duration) *Clock {
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Clock{
		dev:    dev,
		period: period,
		ch:     make(chan struct{}),
	}
}

// Start implements EdgeSource. Only the first call has any effect.
func (c *Clock) Start(ctx context.Context) {
	if !c.started.CompareAndSwap(false, true) {
		return
	}
	go c.run(ctx)
}

func (c *Clock) run(ctx context.Context) {
	tick := time.NewTicker(c.period / 2)
	defer tick.Stop()

	level := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
		}

		level = !level
		// Drive the device first so waiters woken by this edge observe
		// post-edge state.
		c.dev.DriveLine(dut.PortClock, level)
		if level {
			c.edges.Add(1)
			c.mu.Lock()
			ch := c.ch
			c.ch = make(chan struct{})
			c.mu.Unlock()
			close(ch)
		}
	}
}

// Rising implements EdgeSource.
func (c *Clock) Rising() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ch
}

// Edges implements EdgeSource.
func (c *Clock) Edges() int64 {
	return c.edges.Load()
}
