// Package notes provides the optional best-effort sink that receives the
// final output of a run.
package notes

// Sink receives finalized text. Appends are best-effort: a failed append
// is logged by the caller and never rolls back the rest of the run.
type Sink interface {
	// Append writes one block of text to the sink.
	Append(text string) error
}
