package refine

import (
	"context"
	"fmt"
)

// testCtx returns a fresh execution context for tests.
func testCtx() Context {
	return NewContext(context.Background())
}

// scriptedProducer returns a producer whose NeedsMore answers follow the
// given script, one entry per step. Steps beyond the script keep asking
// for more. Each step contributes one note naming the step.
func scriptedProducer(calls *int, needsMore ...bool) ProducerFunc {
	return func(ctx Context, rec Record) (StepResult, error) {
		step := *calls
		*calls++

		more := true
		if step < len(needsMore) {
			more = needsMore[step]
		}
		return StepResult{
			Notes:     []string{fmt.Sprintf("note %d", step+1)},
			NeedsMore: more,
		}, nil
	}
}

// countingFinalizer returns a finalizer that counts invocations and
// reports how many notes it saw.
func countingFinalizer(calls *int) FinalizerFunc {
	return func(ctx Context, rec Record) (string, error) {
		*calls++
		return fmt.Sprintf("summary of %d notes", len(rec.Notes)), nil
	}
}

// failingSink always fails. Sink failures must never fail a run.
type failingSink struct{}

func (failingSink) Append(string) error {
	return fmt.Errorf("sink unavailable")
}

// recordingSink captures every appended block.
type recordingSink struct {
	appended []string
}

func (s *recordingSink) Append(text string) error {
	s.appended = append(s.appended, text)
	return nil
}
