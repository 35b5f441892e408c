package dut

import (
	"math/bits"
	"sync"
)

// DefaultLatency is the number of enabled clock edges SimCore takes from
// reset release to asserting the ready flag.
const DefaultLatency = 16

// DefaultSettle is the number of post-reset edges during which SimCore's
// status bus reads as indeterminate, mimicking an unsettled bus.
const DefaultSettle = 2

// SimCore is a behavioral model of a byte-wide pipelined core.
//
// It is a stand-in collaborator for the harness, not an implementation of
// any real cipher: the transform is an arbitrary byte mixer chosen only to
// make results input-dependent. The model honors the full port contract:
// inputs latch as driven, state advances on rising clock edges while
// enabled, reset is active low and synchronous, the status bus asserts
// bit 0 when the result is valid, and the output bus is indeterminate
// until then. Each operand write restarts the latency countdown, so the
// published result always reflects the most recent stimulus.
//
// The reserved upper status bits are deliberately driven with an internal
// edge counter so that harness code which fails to mask bit 0 misreads
// readiness.
//
// Thread-safety: the clock source and the sequencer run on different
// goroutines, so all pin access is mutex-guarded.
type SimCore struct {
	mu sync.Mutex

	latency    int
	settle     int
	transform  func(a, b uint8) uint8
	neverReady bool
	wedged     bool

	clk   bool
	rstN  bool
	ena   bool
	a, b  uint8
	out   uint8
	ready bool

	countdown int
	unsettled int
	edges     uint8
}

// SimOption configures a SimCore.
type SimOption func(*SimCore)

// WithLatency sets the edge count from reset release to ready.
func WithLatency(n int) SimOption {
	return func(c *SimCore) {
		if n < 1 {
			n = 1
		}
		c.latency = n
	}
}

// WithSettle sets the number of post-reset edges with an indeterminate
// status bus.
func WithSettle(n int) SimOption {
	return func(c *SimCore) {
		if n < 0 {
			n = 0
		}
		c.settle = n
	}
}

// WithTransform replaces the byte mixer.
func WithTransform(f func(a, b uint8) uint8) SimOption {
	return func(c *SimCore) { c.transform = f }
}

// WithNeverReady makes the core compute forever without asserting ready.
// Used to exercise the poller's timeout bound.
func WithNeverReady() SimOption {
	return func(c *SimCore) { c.neverReady = true }
}

// WithWedgedStatus makes the status bus permanently indeterminate,
// mimicking a wedged simulation.
func WithWedgedStatus() SimOption {
	return func(c *SimCore) { c.wedged = true }
}

// NewSimCore creates a behavioral core with the given options.
func NewSimCore(opts ...SimOption) *SimCore {
	c := &SimCore{
		latency:   DefaultLatency,
		settle:    DefaultSettle,
		transform: mix,
		rstN:      true,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.resetState()
	return c
}

// DriveLine implements Device.
func (c *SimCore) DriveLine(p Port, high bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch p {
	case PortClock:
		rising := high && !c.clk
		c.clk = high
		if rising {
			c.tick()
		}
	case PortReset:
		c.rstN = high
	case PortEnable:
		c.ena = high
	}
}

// DriveBus implements Device. Driving an operand invalidates any pending
// or published result and restarts the latency countdown, so ready can
// only ever assert for a result computed from the operands that preceded
// it. With a short latency the countdown could otherwise elapse before
// the operands arrive and publish a stale value.
func (c *SimCore) DriveBus(p Port, v uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch p {
	case PortInputA:
		c.a = v
	case PortInputB:
		c.b = v
	default:
		return
	}
	c.ready = false
	c.out = 0
	c.countdown = c.latency
}

// SampleBus implements Device.
func (c *SimCore) SampleBus(p Port) Sample {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch p {
	case PortOutput:
		if !c.ready {
			return Sample{}
		}
		return Sample{Value: c.out, Known: true}
	case PortStatus:
		if c.wedged || c.unsettled > 0 {
			return Sample{}
		}
		// Bit 0 is the ready flag; the reserved upper bits carry an
		// internal edge counter with no external contract.
		v := c.edges << 1
		if c.ready {
			v |= 0x01
		}
		return Sample{Value: v, Known: true}
	}
	return Sample{}
}

// tick advances one rising edge. Caller holds c.mu.
func (c *SimCore) tick() {
	if !c.rstN {
		c.resetState()
		return
	}
	if !c.ena {
		return
	}
	c.edges++
	if c.unsettled > 0 {
		c.unsettled--
	}
	if c.ready || c.neverReady {
		return
	}
	if c.countdown > 0 {
		c.countdown--
	}
	if c.countdown == 0 {
		c.out = c.transform(c.a, c.b)
		c.ready = true
	}
}

// resetState applies the synchronous reset. Caller holds c.mu.
func (c *SimCore) resetState() {
	c.ready = false
	c.out = 0
	c.countdown = c.latency
	c.unsettled = c.settle
	c.edges = 0
}

// mix is the default byte transform: a few rounds of rotate-xor-add.
// Input-dependent and bijective in neither argument; good enough to make
// harness results meaningful, meaningless as cryptography.
func mix(a, b uint8) uint8 {
	v := a ^ b
	for i := 0; i < 4; i++ {
		v = bits.RotateLeft8(v^b, 3) + a
	}
	return v
}
