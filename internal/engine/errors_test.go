package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceError_Error(t *testing.T) {
	err := newMisSequencedError(PhaseIdle, "vector run before power-on reset completed")
	assert.Equal(t,
		"MIS_SEQUENCED: vector run before power-on reset completed (phase=idle)",
		err.Error())

	withLabel := newInterruptedError(PhaseRunningVector, "alternating", context.Canceled)
	assert.Equal(t,
		"INTERRUPTED: run cancelled while waiting for clock edge (phase=running_vector, vector=alternating)",
		withLabel.Error())
}

func TestSequenceError_Unwrap(t *testing.T) {
	err := newInterruptedError(PhasePowerOnReset, "", context.DeadlineExceeded)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSequenceError_Predicates(t *testing.T) {
	mis := newMisSequencedError(PhaseRunningVector, "out of order")
	intr := newInterruptedError(PhaseRunningVector, "v", context.Canceled)

	assert.True(t, IsMisSequenced(mis))
	assert.False(t, IsMisSequenced(intr))
	assert.True(t, IsInterrupted(intr))
	assert.False(t, IsInterrupted(mis))

	assert.False(t, IsMisSequenced(errors.New("plain")))
	assert.False(t, IsInterrupted(nil))

	wrapped := fmt.Errorf("suite run aborted: %w", mis)
	assert.True(t, IsMisSequenced(wrapped))
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "idle", PhaseIdle.String())
	assert.Equal(t, "passed", PhasePassed.String())
	assert.Equal(t, "failed", PhaseFailed.String())
}

func TestPhase_Terminal(t *testing.T) {
	assert.True(t, PhasePassed.Terminal())
	assert.True(t, PhaseFailed.Terminal())
	assert.False(t, PhaseIdle.Terminal())
	assert.False(t, PhaseRunningVector.Terminal())
}

func TestFixedGenerator(t *testing.T) {
	g := NewFixedGenerator("a", "b")
	assert.Equal(t, "a", g.Generate())
	assert.Equal(t, "b", g.Generate())
	assert.Panics(t, func() { g.Generate() })
}

func TestUUIDv7Generator(t *testing.T) {
	g := UUIDv7Generator{}
	first := g.Generate()
	second := g.Generate()
	require.Len(t, first, 36)
	assert.NotEqual(t, first, second)
}
