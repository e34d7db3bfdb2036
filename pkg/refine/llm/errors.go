package llm

import "fmt"

// Error wraps a failed client operation.
type Error struct {
	// Op is the operation that failed (e.g., "complete").
	Op string
	// Err is the underlying error.
	Err error
	// Retryable indicates the failure looks transient (rate limit,
	// overload, timeout). The caller decides whether to act on it;
	// nothing in this module retries automatically.
	Retryable bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("llm %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an Error with the given operation and cause.
func NewError(op string, err error, retryable bool) *Error {
	return &Error{Op: op, Err: err, Retryable: retryable}
}
