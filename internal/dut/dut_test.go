package dut

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPort_String(t *testing.T) {
	assert.Equal(t, "clock", PortClock.String())
	assert.Equal(t, "reset_n", PortReset.String())
	assert.Equal(t, "enable", PortEnable.String())
	assert.Equal(t, "input_a", PortInputA.String())
	assert.Equal(t, "input_b", PortInputB.String())
	assert.Equal(t, "output", PortOutput.String())
	assert.Equal(t, "status", PortStatus.String())
	assert.Equal(t, "port(99)", Port(99).String())
}

func TestSample_Bit(t *testing.T) {
	s := Sample{Value: 0b1010_0001, Known: true}

	set, known := s.Bit(0)
	assert.True(t, known)
	assert.True(t, set)

	set, known = s.Bit(1)
	assert.True(t, known)
	assert.False(t, set)

	set, known = s.Bit(7)
	assert.True(t, known)
	assert.True(t, set)
}

func TestSample_Bit_Indeterminate(t *testing.T) {
	s := Sample{Value: 0xFF} // Known false: value is meaningless

	set, known := s.Bit(0)
	assert.False(t, known, "indeterminate sample must not report a bit")
	assert.False(t, set)
}
