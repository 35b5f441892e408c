package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mhoram/dutbench/internal/dut"
)

func TestClock_ProducesRisingEdges(t *testing.T) {
	core := dut.NewSimCore()
	clk := NewClock(core, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clk.Start(ctx)

	for i := 0; i < 3; i++ {
		select {
		case <-clk.Rising():
		case <-time.After(time.Second):
			t.Fatalf("no rising edge %d within 1s", i+1)
		}
	}
	assert.GreaterOrEqual(t, clk.Edges(), int64(3))
}

func TestClock_EdgesAdvanceDeviceState(t *testing.T) {
	core := dut.NewSimCore(dut.WithLatency(2), dut.WithSettle(0))
	core.DriveLine(dut.PortEnable, true)

	clk := NewClock(core, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clk.Start(ctx)

	// The device is clocked by the background goroutine; after enough
	// edges it must reach ready on its own.
	deadline := time.After(time.Second)
	for {
		set, known := core.SampleBus(dut.PortStatus).Bit(0)
		if known && set {
			return
		}
		select {
		case <-clk.Rising():
		case <-deadline:
			t.Fatal("device never reached ready under the free-running clock")
		}
	}
}

func TestClock_StartIsIdempotent(t *testing.T) {
	core := dut.NewSimCore()
	clk := NewClock(core, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clk.Start(ctx)
	clk.Start(ctx)

	select {
	case <-clk.Rising():
	case <-time.After(time.Second):
		t.Fatal("clock did not run after double Start")
	}
}

func TestClock_StopsOnCancel(t *testing.T) {
	core := dut.NewSimCore()
	clk := NewClock(core, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	clk.Start(ctx)
	<-clk.Rising()
	cancel()

	// Give the goroutine a moment to observe cancellation, then confirm
	// the edge counter has stopped moving.
	time.Sleep(20 * time.Millisecond)
	before := clk.Edges()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, before, clk.Edges())
}

func TestNewClock_DefaultPeriod(t *testing.T) {
	clk := NewClock(dut.NewSimCore(), 0)
	assert.Equal(t, DefaultPeriod, clk.period)
}
