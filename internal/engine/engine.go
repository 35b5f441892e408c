package engine

import (
	"context"
	"io"
	"log/slog"

	"github.com/mhoram/dutbench/internal/dut"
	"github.com/mhoram/dutbench/internal/report"
	"github.com/mhoram/dutbench/internal/suite"
)

// Default cycle counts, matching the reference bring-up run.
const (
	DefaultPowerOnResetCycles = 10
	DefaultResetCycles        = 2
	DefaultSettleCycles       = 2
	DefaultReadyTimeout       = 1000
	DefaultDrainCycles        = 20
)

// cycleCounts groups the sequencer's cycle configuration. Suite timing
// overrides are applied for the duration of one run and the configured
// values restored afterwards, so a reused engine always starts from its
// own defaults.
type cycleCounts struct {
	powerOnReset int
	reset        int
	settle       int
	readyTimeout int
	drain        int
}

// Engine is the test sequencer.
//
// All methods that wait on clock edges must be called from a single
// goroutine; the engine is not a concurrent API. The clock source is the
// only concurrently running collaborator.
type Engine struct {
	bus    *dut.Adapter
	clk    EdgeSource
	log    *slog.Logger
	tokens TokenGenerator

	cycles cycleCounts

	phase     Phase
	poweredOn bool
	session   *report.Session
	curLabel  string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger. The default discards everything;
// callers that want protocol logs pass their own.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithTokens sets the session token generator.
func WithTokens(g TokenGenerator) Option {
	return func(e *Engine) { e.tokens = g }
}

// WithPowerOnResetCycles sets the duration of the initial reset.
func WithPowerOnResetCycles(n int) Option {
	return func(e *Engine) { e.cycles.powerOnReset = n }
}

// WithResetCycles sets the per-vector reset duration.
func WithResetCycles(n int) Option {
	return func(e *Engine) { e.cycles.reset = n }
}

// WithSettleCycles sets the post-reset settle wait. Clamped to at least
// one edge; dependent signals are not trustworthy before then.
func WithSettleCycles(n int) Option {
	return func(e *Engine) { e.cycles.settle = n }
}

// WithReadyTimeout bounds the ready poll, in rising edges. The bound is
// mandatory and always finite; a non-positive value falls back to the
// default.
func WithReadyTimeout(n int) Option {
	return func(e *Engine) { e.cycles.readyTimeout = n }
}

// WithDrainCycles sets the trailing wait after the last vector.
func WithDrainCycles(n int) Option {
	return func(e *Engine) { e.cycles.drain = n }
}

// New creates an engine around a device and an edge source.
func New(dev dut.Device, clk EdgeSource, opts ...Option) *Engine {
	e := &Engine{
		bus:    dut.NewAdapter(dev),
		clk:    clk,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		tokens: UUIDv7Generator{},
		cycles: cycleCounts{
			powerOnReset: DefaultPowerOnResetCycles,
			reset:        DefaultResetCycles,
			settle:       DefaultSettleCycles,
			readyTimeout: DefaultReadyTimeout,
			drain:        DefaultDrainCycles,
		},
		phase: PhaseIdle,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cycles.settle < 1 {
		e.cycles.settle = 1
	}
	if e.cycles.readyTimeout < 1 {
		e.cycles.readyTimeout = DefaultReadyTimeout
	}
	return e
}

// Phase returns the current session phase.
func (e *Engine) Phase() Phase {
	return e.phase
}

// RunSuite runs every vector of the suite in order and returns the
// finalized session.
//
// The clock is started once, the input buses are zeroed, the enable line
// is asserted, and a long power-on reset is performed before the first
// vector. Outcomes are appended in execution order; the session fails if
// any vector timed out. A trailing drain wait lets late device activity
// settle before the verdict.
//
// Per-vector timeouts do not abort the run. The returned error is non-nil
// only for fatal conditions (cancellation, mis-sequencing); the partially
// filled session is returned alongside it.
func (e *Engine) RunSuite(ctx context.Context, s *suite.Suite) (*report.Session, error) {
	if e.phase != PhaseIdle && !e.phase.Terminal() {
		return nil, newMisSequencedError(e.phase, "suite already running on this engine")
	}

	// Suite overrides hold for this run only. Restore the configured
	// counts on every exit path so the next suite is not bound by them.
	configured := e.cycles
	defer func() { e.cycles = configured }()
	e.applyTiming(s.Timing)

	sess := report.NewSession(e.tokens.Generate(), s.Name)
	e.session = sess
	e.poweredOn = false
	e.curLabel = ""

	e.clk.Start(ctx)
	e.setPhase(PhaseClockStarted)
	e.trace(report.TraceEvent{Kind: report.TraceClockStarted})

	// Power-on conditioning: known-zero stimulus, device enabled.
	e.bus.Write(dut.PortInputA, 0)
	e.bus.Write(dut.PortInputB, 0)
	e.bus.WriteLine(dut.PortEnable, true)

	e.setPhase(PhasePowerOnReset)
	e.trace(report.TraceEvent{Kind: report.TracePowerOnReset})
	if err := e.Reset(ctx, e.cycles.powerOnReset); err != nil {
		e.setPhase(PhaseFailed)
		return sess, err
	}
	e.poweredOn = true

	for _, v := range s.Vectors {
		outcome, err := e.runVector(ctx, v)
		if err != nil {
			e.setPhase(PhaseFailed)
			return sess, err
		}
		sess.Record(outcome)
	}

	e.setPhase(PhaseFinalizing)
	e.trace(report.TraceEvent{Kind: report.TraceDrain})
	if err := e.waitEdges(ctx, e.cycles.drain); err != nil {
		e.setPhase(PhaseFailed)
		return sess, err
	}

	sess.Finalize()
	if sess.Passed {
		e.setPhase(PhasePassed)
	} else {
		e.setPhase(PhaseFailed)
	}
	e.log.Info("suite finished",
		"suite", s.Name,
		"session", sess.Token,
		"vectors", len(sess.Outcomes),
		"failures", sess.Failures(),
		"passed", sess.Passed,
	)
	return sess, nil
}

// applyTiming overlays non-zero suite overrides on the engine defaults.
// RunSuite restores the configured counts when the run ends.
func (e *Engine) applyTiming(t *suite.Timing) {
	if t == nil {
		return
	}
	if t.PowerOnResetCycles > 0 {
		e.cycles.powerOnReset = t.PowerOnResetCycles
	}
	if t.ResetCycles > 0 {
		e.cycles.reset = t.ResetCycles
	}
	if t.SettleCycles > 0 {
		e.cycles.settle = t.SettleCycles
	}
	if t.ReadyTimeoutCycles > 0 {
		e.cycles.readyTimeout = t.ReadyTimeoutCycles
	}
	if t.DrainCycles > 0 {
		e.cycles.drain = t.DrainCycles
	}
}

func (e *Engine) setPhase(p Phase) {
	e.phase = p
	e.log.Debug("phase transition", "phase", p.String())
}

// waitEdges blocks until n rising edges have occurred or the context is
// cancelled. This and the poller loop are the engine's only suspension
// points.
func (e *Engine) waitEdges(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		ch := e.clk.Rising()
		select {
		case <-ch:
		case <-ctx.Done():
			return newInterruptedError(e.phase, e.curLabel, ctx.Err())
		}
	}
	return nil
}

// trace stamps the event with the current edge count and appends it to
// the active session. Safe to call with no session (granular use of the
// public sequencing methods).
func (e *Engine) trace(ev report.TraceEvent) {
	if e.session == nil {
		return
	}
	ev.Seq = e.clk.Edges()
	if ev.Label == "" {
		ev.Label = e.curLabel
	}
	e.session.AddTrace(ev)
}
