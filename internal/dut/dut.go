// Package dut models the pin-level surface of a byte-wide synchronous
// device under test.
//
// The device exposes a fixed port set: a clock line, an active-low reset
// line, an enable line, two 8-bit input buses, an 8-bit output bus, and an
// 8-bit status bus whose bit 0 is the ready flag. The upper seven status
// bits carry no contract and are read and ignored.
//
// Bus reads are tri-state: a Sample either carries a known 8-bit value or
// is indeterminate (unsettled right after reset, or the device is wedged).
// Indeterminate samples are a normal condition that callers retry on the
// next clock edge; they are never an error.
package dut

import "fmt"

// Port identifies one named signal of the device's port set.
type Port int

const (
	// PortClock is the clock input line. Driven by the clock source only.
	PortClock Port = iota

	// PortReset is the active-low reset input line. Asserted by driving
	// logical 0, deasserted by driving logical 1.
	PortReset

	// PortEnable is the enable input line. Must be high for the device
	// to operate.
	PortEnable

	// PortInputA is the first 8-bit input bus.
	PortInputA

	// PortInputB is the second 8-bit input bus.
	PortInputB

	// PortOutput is the 8-bit result bus. Valid only once the ready flag
	// asserts.
	PortOutput

	// PortStatus is the 8-bit status bus. Bit 0 is the ready flag; the
	// remaining bits are reserved.
	PortStatus
)

// portInfo describes the direction and width class of each port.
type portInfo struct {
	name  string
	bus   bool // 8-bit bus (false: single line)
	input bool // driven by the harness (false: sampled from the device)
}

var ports = map[Port]portInfo{
	PortClock:  {name: "clock", input: true},
	PortReset:  {name: "reset_n", input: true},
	PortEnable: {name: "enable", input: true},
	PortInputA: {name: "input_a", bus: true, input: true},
	PortInputB: {name: "input_b", bus: true, input: true},
	PortOutput: {name: "output", bus: true},
	PortStatus: {name: "status", bus: true},
}

// String returns the port's signal name.
func (p Port) String() string {
	if info, ok := ports[p]; ok {
		return info.name
	}
	return fmt.Sprintf("port(%d)", int(p))
}

// Sample is the result of reading an output bus.
type Sample struct {
	// Value is the 8-bit bus value. Meaningful only if Known is true.
	Value uint8

	// Known reports whether the bus had settled to a defined value.
	Known bool
}

// Bit reports whether bit n of the sample is set. The second return value
// is false for indeterminate samples, in which case the first is
// meaningless.
func (s Sample) Bit(n uint8) (set, known bool) {
	if !s.Known {
		return false, false
	}
	return s.Value&(1<<n) != 0, true
}

// Device is the pin-level contract of the unit under verification.
//
// The device is a black box: implementations latch input lines and buses
// as driven, advance internal state on the rising edge of the clock line,
// and expose their output and status buses through SampleBus.
//
// DriveLine and DriveBus never fail; SampleBus may return an indeterminate
// Sample for buses that have not settled.
type Device interface {
	// DriveLine sets a single-bit input line.
	DriveLine(p Port, high bool)

	// DriveBus sets an 8-bit input bus.
	DriveBus(p Port, v uint8)

	// SampleBus reads an output bus.
	SampleBus(p Port) Sample
}
