package refine

import (
	"errors"
	"fmt"
)

// Sentinel errors for run configuration.
var (
	// ErrInvalidConfiguration indicates max iterations below 1.
	// No steps run when this is returned.
	ErrInvalidConfiguration = errors.New("max iterations must be at least 1")

	// ErrNilContext indicates Run() was called with a nil context.
	ErrNilContext = errors.New("context cannot be nil")
)

// ProducerError wraps a failed producer step.
// The failed step commits nothing: neither notes nor the iteration count.
type ProducerError struct {
	// Step is the 1-based producer step that failed.
	Step int
	// Err is the underlying error from the producer.
	Err error
}

// Error implements the error interface.
func (e *ProducerError) Error() string {
	return fmt.Sprintf("producer step %d: %v", e.Step, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ProducerError) Unwrap() error {
	return e.Err
}

// FinalizerError wraps a failed finalize phase.
// It is absorbed by the controller, which substitutes the fallback output;
// it appears in logs, never in Run's return value.
type FinalizerError struct {
	// Err is the underlying error from the finalizer.
	Err error
}

// Error implements the error interface.
func (e *FinalizerError) Error() string {
	return fmt.Sprintf("finalize: %v", e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *FinalizerError) Unwrap() error {
	return e.Err
}

// SinkError wraps a failed notes sink append. It only ever appears in
// logs; sink failures never abort a run.
type SinkError struct {
	// Err is the underlying error from the sink.
	Err error
}

// Error implements the error interface.
func (e *SinkError) Error() string {
	return fmt.Sprintf("notes sink: %v", e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *SinkError) Unwrap() error {
	return e.Err
}

// PanicError captures panic information from a producer or finalizer step.
// It includes the stack trace for debugging.
type PanicError struct {
	// Phase is "producer" or "finalizer".
	Phase string
	// Step is the 1-based producer step, or 0 for the finalizer.
	Step int
	// Value is the value passed to panic().
	Value any
	// Stack is the full stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	if e.Phase == "producer" {
		return fmt.Sprintf("producer step %d panicked: %v", e.Step, e.Value)
	}
	return fmt.Sprintf("%s panicked: %v", e.Phase, e.Value)
}
