package dut

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingDevice captures pin activity for adapter tests.
type recordingDevice struct {
	lines   map[Port]bool
	buses   map[Port]uint8
	samples map[Port]Sample
}

func newRecordingDevice() *recordingDevice {
	return &recordingDevice{
		lines:   make(map[Port]bool),
		buses:   make(map[Port]uint8),
		samples: make(map[Port]Sample),
	}
}

func (d *recordingDevice) DriveLine(p Port, high bool) { d.lines[p] = high }
func (d *recordingDevice) DriveBus(p Port, v uint8)    { d.buses[p] = v }
func (d *recordingDevice) SampleBus(p Port) Sample     { return d.samples[p] }

func TestNewAdapter_NilDevice(t *testing.T) {
	assert.Panics(t, func() { NewAdapter(nil) })
}

func TestAdapter_Write(t *testing.T) {
	dev := newRecordingDevice()
	a := NewAdapter(dev)

	a.Write(PortInputA, 0xAA)
	a.Write(PortInputB, 0x00)

	assert.Equal(t, uint8(0xAA), dev.buses[PortInputA])
	assert.Equal(t, uint8(0x00), dev.buses[PortInputB])
}

func TestAdapter_Write_OutOfRange(t *testing.T) {
	a := NewAdapter(newRecordingDevice())

	// Out-of-range values are a caller contract violation, not a
	// runtime fault: fail fast, never retried.
	assert.Panics(t, func() { a.Write(PortInputA, 256) })
	assert.Panics(t, func() { a.Write(PortInputA, -1) })
}

func TestAdapter_Write_WrongDirection(t *testing.T) {
	a := NewAdapter(newRecordingDevice())

	assert.Panics(t, func() { a.Write(PortOutput, 1) }, "output bus is not writable")
	assert.Panics(t, func() { a.Write(PortStatus, 1) }, "status bus is not writable")
	assert.Panics(t, func() { a.Write(PortEnable, 1) }, "enable is a line, not a bus")
}

func TestAdapter_WriteLine(t *testing.T) {
	dev := newRecordingDevice()
	a := NewAdapter(dev)

	a.WriteLine(PortReset, false)
	a.WriteLine(PortEnable, true)

	assert.False(t, dev.lines[PortReset])
	assert.True(t, dev.lines[PortEnable])
}

func TestAdapter_WriteLine_WrongKind(t *testing.T) {
	a := NewAdapter(newRecordingDevice())

	assert.Panics(t, func() { a.WriteLine(PortInputA, true) }, "input_a is a bus, not a line")
	assert.Panics(t, func() { a.WriteLine(PortOutput, true) })
}

func TestAdapter_Read(t *testing.T) {
	dev := newRecordingDevice()
	dev.samples[PortOutput] = Sample{Value: 0x3C, Known: true}
	dev.samples[PortStatus] = Sample{} // indeterminate
	a := NewAdapter(dev)

	out := a.Read(PortOutput)
	require.True(t, out.Known)
	assert.Equal(t, uint8(0x3C), out.Value)

	// Indeterminate samples pass through unchanged; reacting to them
	// is the caller's job.
	status := a.Read(PortStatus)
	assert.False(t, status.Known)
}

func TestAdapter_Read_WrongDirection(t *testing.T) {
	a := NewAdapter(newRecordingDevice())

	assert.Panics(t, func() { a.Read(PortInputA) }, "input buses are not readable")
	assert.Panics(t, func() { a.Read(PortClock) })
}
