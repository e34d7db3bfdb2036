package agent

import (
	"github.com/rmurphy/refine/pkg/refine"
)

// Supervisor is the evaluator: the two-way branch deciding whether the
// researcher runs again or the executor finalizes.
//
// The routing reduces to the record's NeedsMore flag as set by the last
// research pass, optionally cut off once enough note blocks exist.
type Supervisor struct {
	// MaxNoteBlocks stops further research once the record holds this
	// many note blocks, regardless of NeedsMore. Zero disables the cut.
	MaxNoteBlocks int
}

// Evaluate implements refine.EvaluatorFunc.
func (s Supervisor) Evaluate(ctx refine.Context, rec refine.Record) bool {
	if s.MaxNoteBlocks > 0 && len(rec.Notes) >= s.MaxNoteBlocks {
		return false
	}
	return rec.NeedsMore
}
