package engine

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/mhoram/dutbench/internal/dut"
	"github.com/mhoram/dutbench/internal/suite"
	"github.com/mhoram/dutbench/internal/testutil"
)

// TestGoldenTrace_SingleVector locks down the full protocol trace of a
// one-vector run: edge stamps, event order, and port values. Under the
// lock-step clock the trace is bit-for-bit reproducible, so any change to
// the sequencing shows up as a golden diff.
//
// To regenerate after an intentional protocol change:
//
//	go test ./internal/engine -run TestGoldenTrace -update
func TestGoldenTrace_SingleVector(t *testing.T) {
	core := dut.NewSimCore(dut.WithLatency(4), dut.WithSettle(1))
	clk := testutil.NewStepClock(core)
	eng := New(core, clk,
		WithPowerOnResetCycles(3),
		WithResetCycles(2),
		WithSettleCycles(1),
		WithReadyTimeout(50),
		WithDrainCycles(2),
		WithTokens(NewFixedGenerator("session-0001")),
	)
	s := &suite.Suite{
		Name:    "golden",
		Vectors: []suite.Vector{{Label: "alternating", InputA: 0xAA, InputB: 0x55}},
	}

	stop := drive(clk)
	sess, err := eng.RunSuite(context.Background(), s)
	stop()
	require.NoError(t, err)
	require.True(t, sess.Passed)

	data, err := sess.TraceJSON()
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "single_vector", data)
}
