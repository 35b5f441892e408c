// Package engine implements the test-orchestration sequencer.
//
// The engine drives a device under test through a fixed handshake: reset
// sequencing, stimulus loading, bounded ready polling, result capture,
// and per-vector outcome aggregation.
//
// ARCHITECTURE:
//
// Single sequencer, one background clock:
// All protocol steps execute on one control goroutine. The only other
// concurrent activity is the clock source toggling the device's clock
// line. The sequencer suspends exclusively at "wait for next rising
// edge" points, inside the reset cycle wait and the ready-polling loop;
// every other operation is a synchronous port access. The port set is
// therefore single-writer by construction.
//
// Ordering guarantees:
// For every vector, reset completes before stimulus is written, stimulus
// is written before readiness is checked, and the result is captured
// before the next vector's reset begins. Vectors are never pipelined.
//
// Bounded waits:
// Every wait on the ready flag is bounded by an explicit cycle count. A
// status bus stuck indeterminate is indistinguishable from a silent
// device and reports a timeout at the bound rather than hanging.
//
// Per-vector timeouts are recorded in the session, not raised: a failing
// vector never masks the rest of the suite. Only contract violations
// (out-of-range bus values, mis-sequenced calls) abort the run.
package engine
