package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhoram/dutbench/internal/dut"
	"github.com/mhoram/dutbench/internal/testutil"
)

// awaitResult carries AwaitReady's returns across the goroutine boundary.
type awaitResult struct {
	ready bool
	err   error
}

// startAwait runs AwaitReady on its own goroutine so the test can pace the
// clock edge by edge.
func startAwait(ctx context.Context, eng *Engine, timeout int) <-chan awaitResult {
	res := make(chan awaitResult, 1)
	go func() {
		ready, err := eng.AwaitReady(ctx, timeout)
		res <- awaitResult{ready: ready, err: err}
	}()
	return res
}

func TestAwaitReady_SucceedsAtLatency(t *testing.T) {
	core := dut.NewSimCore(dut.WithLatency(3), dut.WithSettle(0))
	core.DriveLine(dut.PortEnable, true)
	clk := testutil.NewStepClock(core)
	eng := New(core, clk)

	res := startAwait(context.Background(), eng, 10)
	clk.StepSync(3)

	select {
	case r := <-res:
		require.NoError(t, r.err)
		assert.True(t, r.ready)
	case <-time.After(time.Second):
		t.Fatal("poll did not return after the ready edge")
	}
	assert.Equal(t, int64(3), clk.Edges())
}

func TestAwaitReady_TimesOutExactlyAtBound(t *testing.T) {
	core := dut.NewSimCore(dut.WithNeverReady(), dut.WithSettle(0))
	core.DriveLine(dut.PortEnable, true)
	clk := testutil.NewStepClock(core)
	eng := New(core, clk)

	res := startAwait(context.Background(), eng, 8)

	// One edge short of the bound the poll must still be pending.
	clk.StepSync(7)
	select {
	case r := <-res:
		t.Fatalf("poll returned after 7 of 8 edges: ready=%v err=%v", r.ready, r.err)
	case <-time.After(20 * time.Millisecond):
	}

	clk.StepSync(1)
	select {
	case r := <-res:
		require.NoError(t, r.err, "a timeout is a recorded condition, not an error")
		assert.False(t, r.ready)
	case <-time.After(time.Second):
		t.Fatal("poll did not return at the timeout bound")
	}
}

func TestAwaitReady_IndeterminateEdgesCountTowardBound(t *testing.T) {
	// A wedged status bus never settles; the poll must still terminate
	// exactly at the bound instead of spinning past it.
	core := dut.NewSimCore(dut.WithWedgedStatus())
	core.DriveLine(dut.PortEnable, true)
	clk := testutil.NewStepClock(core)
	eng := New(core, clk)

	res := startAwait(context.Background(), eng, 5)
	clk.StepSync(5)

	select {
	case r := <-res:
		require.NoError(t, r.err)
		assert.False(t, r.ready)
	case <-time.After(time.Second):
		t.Fatal("poll did not terminate on a wedged status bus")
	}
	assert.Equal(t, int64(5), clk.Edges())
}

func TestAwaitReady_Cancelled(t *testing.T) {
	core := dut.NewSimCore(dut.WithNeverReady())
	core.DriveLine(dut.PortEnable, true)
	clk := testutil.NewStepClock(core)
	eng := New(core, clk)

	ctx, cancel := context.WithCancel(context.Background())
	res := startAwait(ctx, eng, 1000)
	clk.StepSync(2)
	cancel()

	select {
	case r := <-res:
		require.Error(t, r.err)
		assert.True(t, IsInterrupted(r.err))
		assert.False(t, r.ready)
	case <-time.After(time.Second):
		t.Fatal("poll did not observe cancellation")
	}
}
