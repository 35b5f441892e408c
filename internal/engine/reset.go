package engine

import (
	"context"

	"github.com/mhoram/dutbench/internal/dut"
	"github.com/mhoram/dutbench/internal/report"
)

// Reset drives the device through its reset sequence: enable is
// deasserted, the active-low reset line is driven to 0, held for the
// given number of rising edges, then released; enable is re-asserted and
// a settle wait (at least one edge) follows before returning.
//
// On return the device is in its defined post-reset state and ready to
// accept new stimulus. Resetting an already-reset device is idempotent.
func (e *Engine) Reset(ctx context.Context, cycles int) error {
	e.bus.WriteLine(dut.PortEnable, false)
	e.bus.WriteLine(dut.PortReset, false)
	e.trace(report.TraceEvent{Kind: report.TraceResetAssert, Port: dut.PortReset.String()})
	e.log.Debug("reset asserted", "cycles", cycles)

	if err := e.waitEdges(ctx, cycles); err != nil {
		return err
	}

	e.bus.WriteLine(dut.PortReset, true)
	e.bus.WriteLine(dut.PortEnable, true)
	e.trace(report.TraceEvent{Kind: report.TraceResetRelease, Port: dut.PortReset.String()})
	e.log.Debug("reset released", "settle", e.cycles.settle)

	// Dependent signals are not trustworthy until the settle period has
	// elapsed; the constructor clamps it to at least one edge.
	return e.waitEdges(ctx, e.cycles.settle)
}
