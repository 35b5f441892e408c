package engine

import (
	"context"

	"github.com/mhoram/dutbench/internal/dut"
	"github.com/mhoram/dutbench/internal/report"
)

// AwaitReady polls the status bus for the ready flag.
//
// On each rising edge the status bus is sampled and bit 0 extracted; the
// reserved upper bits are read and ignored. An indeterminate sample is
// not a failure: polling simply continues on the next edge. If the flag
// is set the poll succeeds immediately; if timeoutCycles edges elapse
// without it, the poll reports failure, exactly at the bound.
//
// The false return is a recorded condition, not an error; the error
// return is non-nil only when the context is cancelled mid-wait.
func (e *Engine) AwaitReady(ctx context.Context, timeoutCycles int) (bool, error) {
	for i := 0; i < timeoutCycles; i++ {
		if err := e.waitEdges(ctx, 1); err != nil {
			return false, err
		}
		s := e.bus.Read(dut.PortStatus)
		ready, known := s.Bit(0)
		if !known {
			// Unsettled bus. The edge still counts against the bound so
			// a wedged status line cannot stall the run.
			e.log.Debug("status indeterminate", "edge", e.clk.Edges())
			continue
		}
		if ready {
			e.trace(report.TraceEvent{
				Kind:  report.TraceReady,
				Port:  dut.PortStatus.String(),
				Value: report.Int(int(s.Value)),
			})
			return true, nil
		}
	}
	e.trace(report.TraceEvent{Kind: report.TraceTimeout, Port: dut.PortStatus.String()})
	return false, nil
}
