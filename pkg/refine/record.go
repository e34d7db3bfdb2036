package refine

import (
	"github.com/rmurphy/refine/pkg/refine/memory"
)

// Record is the session state threaded through one run of the controller.
//
// The controller mutates a copy: Notes grow by the producer's delta each
// step, Iteration counts producer invocations, and FinalOutput is set
// exactly once by the finalize phase. Query never changes after creation.
type Record struct {
	// Query is the user's request. Immutable for the life of a run.
	Query string `json:"query"`

	// Notes accumulates producer output. Append-only within a run.
	Notes []string `json:"notes"`

	// Iteration is the number of producer steps executed so far.
	Iteration int `json:"iteration"`

	// MaxIterations is the absolute cap on producer steps. Fixed at
	// session start; must be at least 1.
	MaxIterations int `json:"max_iterations"`

	// NeedsMore is the producer's latest request for another pass.
	NeedsMore bool `json:"needs_more"`

	// FinalOutput is set by the finalize phase, exactly once per run.
	FinalOutput string `json:"final_output,omitempty"`

	// Memory is the persisted snapshot as written during finalize,
	// present only when a memory store was attached to the run.
	Memory memory.Snapshot `json:"memory,omitempty"`
}

// NewRecord creates a record for one refinement session.
// The controller rejects records with maxIterations < 1.
func NewRecord(query string, maxIterations int) Record {
	return Record{
		Query:         query,
		MaxIterations: maxIterations,
	}
}

// LatestNotes returns the note block from the most recent producer step,
// or the empty string before the first step. Evaluators use this to
// inspect the newest block without walking the whole sequence.
func (r Record) LatestNotes() string {
	if len(r.Notes) == 0 {
		return ""
	}
	return r.Notes[len(r.Notes)-1]
}
