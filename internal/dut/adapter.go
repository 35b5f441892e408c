package dut

import "fmt"

// Adapter is the single point through which the engine touches the device.
//
// It enforces the port contract: values must fit the bus width, input
// ports are written, output ports are read. Violations are programming
// errors, not runtime faults, and panic immediately rather than being
// retried or swallowed.
//
// Indeterminate reads pass through unchanged; deciding how to react to an
// unsettled bus is the caller's job.
type Adapter struct {
	dev Device
}

// NewAdapter wraps a device. Panics if dev is nil.
func NewAdapter(dev Device) *Adapter {
	if dev == nil {
		panic("dut: nil device")
	}
	return &Adapter{dev: dev}
}

// Write drives an 8-bit input bus.
//
// Panics if v is outside [0, 255] or if p is not a writable bus.
func (a *Adapter) Write(p Port, v int) {
	info, ok := ports[p]
	if !ok || !info.bus || !info.input {
		panic(fmt.Sprintf("dut: write to non-input bus %s", p))
	}
	if v < 0 || v > 0xFF {
		panic(fmt.Sprintf("dut: value 0x%X out of range for 8-bit bus %s", v, p))
	}
	a.dev.DriveBus(p, uint8(v))
}

// WriteLine drives a single-bit input line.
//
// Panics if p is not an input line.
func (a *Adapter) WriteLine(p Port, high bool) {
	info, ok := ports[p]
	if !ok || info.bus || !info.input {
		panic(fmt.Sprintf("dut: line write to non-line port %s", p))
	}
	a.dev.DriveLine(p, high)
}

// Read samples an output bus. The sample may be indeterminate.
//
// Panics if p is not a readable bus.
func (a *Adapter) Read(p Port) Sample {
	info, ok := ports[p]
	if !ok || !info.bus || info.input {
		panic(fmt.Sprintf("dut: read of non-output bus %s", p))
	}
	return a.dev.SampleBus(p)
}
