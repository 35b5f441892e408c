package engine

import (
	"context"

	"github.com/mhoram/dutbench/internal/dut"
	"github.com/mhoram/dutbench/internal/report"
	"github.com/mhoram/dutbench/internal/suite"
)

// RunVector runs a single vector against an already powered-on device.
//
// Calling it before a suite's power-on reset has completed is a
// mis-sequenced call and fails fast: every vector must observe a clean
// post-reset state reached through the full session protocol.
func (e *Engine) RunVector(ctx context.Context, v suite.Vector) (report.Outcome, error) {
	if !e.poweredOn {
		return report.Outcome{}, newMisSequencedError(e.phase,
			"vector run before power-on reset completed")
	}
	return e.runVector(ctx, v)
}

// runVector performs the per-vector protocol: reset, stimulus, bounded
// ready wait, result capture. Reset-before-stimulus ordering is
// mandatory and vectors are never pipelined.
func (e *Engine) runVector(ctx context.Context, v suite.Vector) (report.Outcome, error) {
	e.setPhase(PhaseRunningVector)
	e.curLabel = v.Label
	defer func() { e.curLabel = "" }()

	start := e.clk.Edges()
	e.log.Info("vector start", "label", v.Label, "input_a", v.InputA, "input_b", v.InputB)

	if err := e.Reset(ctx, e.cycles.reset); err != nil {
		return report.Outcome{}, err
	}

	e.bus.Write(dut.PortInputA, int(v.InputA))
	e.trace(report.TraceEvent{
		Kind:  report.TraceWrite,
		Port:  dut.PortInputA.String(),
		Value: report.Int(int(v.InputA)),
	})
	e.bus.Write(dut.PortInputB, int(v.InputB))
	e.trace(report.TraceEvent{
		Kind:  report.TraceWrite,
		Port:  dut.PortInputB.String(),
		Value: report.Int(int(v.InputB)),
	})

	ready, err := e.AwaitReady(ctx, e.cycles.readyTimeout)
	if err != nil {
		return report.Outcome{}, err
	}

	outcome := report.Outcome{
		Label:  v.Label,
		InputA: v.InputA,
		InputB: v.InputB,
	}

	switch {
	case !ready:
		outcome.Status = report.StatusTimedOut
		e.log.Error("ready timeout", "label", v.Label, "timeout_cycles", e.cycles.readyTimeout)
	default:
		s := e.bus.Read(dut.PortOutput)
		if !s.Known {
			// Ready asserted but the output bus never settled. The
			// result contract is broken, so the vector did not complete.
			outcome.Status = report.StatusTimedOut
			e.log.Error("output indeterminate after ready", "label", v.Label)
			break
		}
		outcome.Status = report.StatusCompleted
		outcome.Result = s.Value
		e.trace(report.TraceEvent{
			Kind:  report.TraceRead,
			Port:  dut.PortOutput.String(),
			Value: report.Int(int(s.Value)),
		})
		e.log.Info("vector completed", "label", v.Label, "result", s.Value)
	}

	outcome.Edges = e.clk.Edges() - start
	return outcome, nil
}
