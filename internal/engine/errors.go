package engine

import (
	"errors"
	"fmt"
)

// SequenceError represents a fatal error in the sequencer.
//
// Per-vector timeouts are not errors; they are recorded as outcomes and
// the suite continues. SequenceError covers the conditions that abort
// the run:
//   - Mis-sequenced calls: a vector run before the power-on reset, or a
//     second suite started on a live engine.
//   - Interruption: the context was cancelled mid-wait.
type SequenceError struct {
	// Code identifies the error category.
	Code SequenceErrorCode

	// Message is a human-readable description.
	Message string

	// Phase is the session phase at the time of the error.
	Phase Phase

	// Label identifies the affected vector, if any.
	Label string

	// Err is the underlying cause, if any.
	Err error
}

// SequenceErrorCode categorizes sequencer errors.
type SequenceErrorCode string

const (
	// ErrCodeMisSequenced indicates a call made out of protocol order.
	ErrCodeMisSequenced SequenceErrorCode = "MIS_SEQUENCED"

	// ErrCodeInterrupted indicates the run was cancelled mid-wait.
	ErrCodeInterrupted SequenceErrorCode = "INTERRUPTED"
)

// Error implements the error interface.
func (e *SequenceError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("%s: %s (phase=%s, vector=%s)", e.Code, e.Message, e.Phase, e.Label)
	}
	return fmt.Sprintf("%s: %s (phase=%s)", e.Code, e.Message, e.Phase)
}

// Unwrap returns the underlying cause.
func (e *SequenceError) Unwrap() error {
	return e.Err
}

// IsMisSequenced reports whether err is a protocol-order violation.
// Uses errors.As to handle wrapped errors.
func IsMisSequenced(err error) bool {
	var se *SequenceError
	return errors.As(err, &se) && se.Code == ErrCodeMisSequenced
}

// IsInterrupted reports whether err is a cancellation.
// Uses errors.As to handle wrapped errors.
func IsInterrupted(err error) bool {
	var se *SequenceError
	return errors.As(err, &se) && se.Code == ErrCodeInterrupted
}

func newMisSequencedError(phase Phase, message string) *SequenceError {
	return &SequenceError{
		Code:    ErrCodeMisSequenced,
		Message: message,
		Phase:   phase,
	}
}

func newInterruptedError(phase Phase, label string, cause error) *SequenceError {
	return &SequenceError{
		Code:    ErrCodeInterrupted,
		Message: "run cancelled while waiting for clock edge",
		Phase:   phase,
		Label:   label,
		Err:     cause,
	}
}
