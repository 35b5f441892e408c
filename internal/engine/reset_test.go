package engine

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhoram/dutbench/internal/dut"
	"github.com/mhoram/dutbench/internal/testutil"
)

// lineRecorder wraps a SimCore and records reset/enable line transitions,
// ignoring clock toggles.
type lineRecorder struct {
	*dut.SimCore

	mu    sync.Mutex
	lines []string
}

func (r *lineRecorder) DriveLine(p dut.Port, high bool) {
	if p != dut.PortClock {
		r.mu.Lock()
		r.lines = append(r.lines, fmt.Sprintf("%s=%v", p, high))
		r.mu.Unlock()
	}
	r.SimCore.DriveLine(p, high)
}

func (r *lineRecorder) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

// runReset executes Reset on its own goroutine and paces it with the
// lock-step clock: the hold edges plus the settle edge.
func runReset(t *testing.T, eng *Engine, clk *testutil.StepClock, cycles, settle int) {
	t.Helper()
	errc := make(chan error, 1)
	go func() {
		errc <- eng.Reset(context.Background(), cycles)
	}()
	clk.StepSync(cycles + settle)
	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("reset did not complete")
	}
}

func TestReset_LineProtocol(t *testing.T) {
	rec := &lineRecorder{SimCore: dut.NewSimCore(dut.WithSettle(0))}
	clk := testutil.NewStepClock(rec)
	eng := New(rec, clk, WithSettleCycles(1))

	runReset(t, eng, clk, 2, 1)

	assert.Equal(t, []string{
		"enable=false",
		"reset_n=false",
		"reset_n=true",
		"enable=true",
	}, rec.recorded())
}

func TestReset_ClearsDeviceState(t *testing.T) {
	core := dut.NewSimCore(dut.WithLatency(2), dut.WithSettle(0))
	core.DriveLine(dut.PortReset, true)
	core.DriveLine(dut.PortEnable, true)
	core.DriveBus(dut.PortInputA, 0xAB)
	core.DriveBus(dut.PortInputB, 0xCD)

	// Run the device to a ready result by hand.
	for i := 0; i < 2; i++ {
		core.DriveLine(dut.PortClock, false)
		core.DriveLine(dut.PortClock, true)
	}
	set, known := core.SampleBus(dut.PortStatus).Bit(0)
	require.True(t, known)
	require.True(t, set)

	clk := testutil.NewStepClock(core)
	eng := New(core, clk, WithSettleCycles(1))
	runReset(t, eng, clk, 2, 1)

	// One settle edge has elapsed since release, so the previous result
	// must be gone and the latency countdown restarted.
	set, known = core.SampleBus(dut.PortStatus).Bit(0)
	require.True(t, known)
	assert.False(t, set, "ready must be cleared by reset")
	assert.False(t, core.SampleBus(dut.PortOutput).Known)
}

func TestReset_Idempotent(t *testing.T) {
	core := dut.NewSimCore(dut.WithSettle(0))
	clk := testutil.NewStepClock(core)
	eng := New(core, clk, WithSettleCycles(1))

	runReset(t, eng, clk, 2, 1)
	first := core.SampleBus(dut.PortStatus)

	runReset(t, eng, clk, 2, 1)
	second := core.SampleBus(dut.PortStatus)

	assert.Equal(t, first, second, "resetting an already-reset device changes nothing")
}

func TestReset_Cancelled(t *testing.T) {
	core := dut.NewSimCore()
	eng := New(core, testutil.NewStepClock(core))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := eng.Reset(ctx, 2)
	require.Error(t, err)
	assert.True(t, IsInterrupted(err))
}
