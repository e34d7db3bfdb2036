package refine

// StepResult is the typed output of one producer step.
//
// Producers must return a structured result or fail; the controller never
// guesses intent from prose.
type StepResult struct {
	// Notes is the delta appended to the record's notes.
	Notes []string `json:"notes"`

	// NeedsMore proposes another producer pass. The iteration cap can
	// override it.
	NeedsMore bool `json:"needs_more"`
}

// ProducerFunc generates new notes from the current record.
//
// The record is passed by value; producers return their delta in the
// StepResult rather than mutating state. A returned error aborts the run
// with nothing committed for the failed step.
//
// Example:
//
//	func produce(ctx refine.Context, rec refine.Record) (refine.StepResult, error) {
//	    return refine.StepResult{Notes: []string{"finding"}, NeedsMore: false}, nil
//	}
type ProducerFunc func(ctx Context, rec Record) (StepResult, error)

// EvaluatorFunc decides whether another producer step is warranted.
//
// It is consulted from the second step onward; the first producer step is
// always unconditional. When no evaluator is configured, the controller
// uses the record's NeedsMore flag.
type EvaluatorFunc func(ctx Context, rec Record) bool

// FinalizerFunc converts the accumulated notes into the final output.
//
// It runs exactly once per run, after the loop exits, and must tolerate an
// empty notes sequence. A returned error does not abort the run; the
// controller substitutes the configured fallback output instead.
type FinalizerFunc func(ctx Context, rec Record) (string, error)
