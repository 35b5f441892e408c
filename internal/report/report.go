// Package report holds the session state of a verification run: the
// ordered vector outcomes, the edge-stamped trace, and the overall
// pass/fail verdict.
//
// A Session is owned by the suite driver for the duration of one run and
// is immutable once finalized. Report order equals execution order.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Status classifies the outcome of one vector.
type Status string

const (
	// StatusCompleted means the ready flag asserted within the timeout
	// and a result was captured.
	StatusCompleted Status = "completed"

	// StatusTimedOut means the ready flag never asserted within the
	// timeout bound.
	StatusTimedOut Status = "timed_out"
)

// Outcome is the result of running one test vector.
type Outcome struct {
	Label  string `json:"label"`
	InputA uint8  `json:"input_a"`
	InputB uint8  `json:"input_b"`
	Status Status `json:"status"`

	// Result is the captured output bus value. Meaningful only when
	// Status is StatusCompleted.
	Result uint8 `json:"result"`

	// Edges is the number of rising clock edges the vector consumed,
	// reset included.
	Edges int64 `json:"edges"`
}

// Trace event kinds.
const (
	TraceClockStarted = "clock_started"
	TracePowerOnReset = "power_on_reset"
	TraceResetAssert  = "reset_assert"
	TraceResetRelease = "reset_release"
	TraceWrite        = "write"
	TraceReady        = "ready"
	TraceTimeout      = "timeout"
	TraceRead         = "read"
	TraceDrain        = "drain"
)

// TraceEvent is one instrumented step of the sequencer, stamped with the
// clock-edge count at which it occurred. The trace is deterministic under
// a lock-step clock, which is what makes golden comparison possible.
type TraceEvent struct {
	Seq   int64  `json:"seq"`
	Kind  string `json:"kind"`
	Port  string `json:"port,omitempty"`
	Label string `json:"label,omitempty"`
	Value *int   `json:"value,omitempty"`
}

// Int returns a pointer to v, for TraceEvent values. A pointer keeps a
// legitimate value of zero distinct from "no value".
func Int(v int) *int {
	return &v
}

// Session aggregates the outcomes of one suite run.
type Session struct {
	// Token is the session correlation token (UUIDv7 in production,
	// fixed in tests).
	Token string `json:"token"`

	// Suite is the name of the suite definition that was run.
	Suite string `json:"suite"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Outcomes are in execution order, which is also report order.
	Outcomes []Outcome `json:"outcomes"`

	// Trace is the edge-stamped instrumentation of the whole run.
	Trace []TraceEvent `json:"trace,omitempty"`

	// Passed is valid after Finalize: true iff no outcome timed out.
	Passed bool `json:"passed"`
}

// NewSession creates an empty session for the named suite.
func NewSession(token, suite string) *Session {
	return &Session{
		Token:     token,
		Suite:     suite,
		StartedAt: time.Now(),
		Outcomes:  []Outcome{},
		Trace:     []TraceEvent{},
	}
}

// Record appends a vector outcome in execution order.
func (s *Session) Record(o Outcome) {
	s.Outcomes = append(s.Outcomes, o)
}

// AddTrace appends a trace event.
func (s *Session) AddTrace(ev TraceEvent) {
	s.Trace = append(s.Trace, ev)
}

// Failures counts outcomes that did not complete.
func (s *Session) Failures() int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Status != StatusCompleted {
			n++
		}
	}
	return n
}

// Finalize stamps the finish time and computes the overall verdict.
// A session passes only if every outcome completed.
func (s *Session) Finalize() {
	s.FinishedAt = time.Now()
	s.Passed = s.Failures() == 0
}

// WriteText renders the human-readable report: one line per vector in
// execution order, then a summary with the overall verdict.
func (s *Session) WriteText(w io.Writer) error {
	for _, o := range s.Outcomes {
		switch o.Status {
		case StatusCompleted:
			if _, err := fmt.Fprintf(w, "✓ %s (0x%02X, 0x%02X) -> 0x%02X [%d edges]\n",
				o.Label, o.InputA, o.InputB, o.Result, o.Edges); err != nil {
				return err
			}
		default:
			if _, err := fmt.Fprintf(w, "✗ %s (0x%02X, 0x%02X) timed out [%d edges]\n",
				o.Label, o.InputA, o.InputB, o.Edges); err != nil {
				return err
			}
		}
	}
	verdict := "PASS"
	if !s.Passed {
		verdict = "FAIL"
	}
	_, err := fmt.Fprintf(w, "%d vectors, %d passed, %d failed: %s\n",
		len(s.Outcomes), len(s.Outcomes)-s.Failures(), s.Failures(), verdict)
	return err
}

// traceSnapshot is the serialized form used for golden comparison.
// Wall-clock fields are excluded so the bytes are reproducible.
type traceSnapshot struct {
	Suite string       `json:"suite"`
	Token string       `json:"token"`
	Trace []TraceEvent `json:"trace"`
}

// TraceJSON serializes the suite name, token, and trace as indented JSON.
// The encoding is deterministic (fixed struct field order, no wall-clock
// data), so the bytes can be compared against golden files.
func (s *Session) TraceJSON() ([]byte, error) {
	snap := traceSnapshot{Suite: s.Suite, Token: s.Token, Trace: s.Trace}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal trace: %w", err)
	}
	return append(data, '\n'), nil
}
