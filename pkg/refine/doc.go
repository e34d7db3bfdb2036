/*
Package refine implements a bounded iterative refinement loop for
LLM-backed research sessions.

# Overview

A refinement session repeatedly invokes a producer step that generates new
notes, consults an evaluator on whether another pass is warranted, and
finishes with a finalizer that turns the accumulated notes into a single
output. An absolute iteration cap bounds the loop regardless of what the
producer or evaluator ask for.

The shape comes from the supervisor/researcher/executor pattern common in
agent frameworks, reduced to its reusable core: a counter-bounded loop
with a completion predicate and a finalize phase that always runs.

# Basic Usage

	produce := func(ctx refine.Context, rec refine.Record) (refine.StepResult, error) {
	    return refine.StepResult{
	        Notes:     []string{"finding for " + rec.Query},
	        NeedsMore: rec.Iteration == 0, // one more pass after the first
	    }, nil
	}
	finalize := func(ctx refine.Context, rec refine.Record) (string, error) {
	    return strings.Join(rec.Notes, "\n"), nil
	}

	ctrl := refine.New(produce, finalize)
	ctx := refine.NewContext(context.Background())
	result, err := ctrl.Run(ctx, refine.NewRecord("go memory model", 3))
	if err != nil {
	    log.Fatal(err)
	}
	fmt.Println(result.FinalOutput)

# Loop Semantics

The first producer step is always unconditional (there are no notes yet to
evaluate). From the second step on, the evaluator decides; without one,
the record's NeedsMore flag as set by the producer decides. The loop
terminates after at most MaxIterations producer invocations. By default
reaching the cap forces NeedsMore to false in the final record; use
WithCapPolicy(CapPreserve) to keep the producer's flag instead.

# Failure Semantics

A producer failure aborts the run with nothing committed for the failed
step. A finalizer failure is absorbed: the run completes with a
deterministic fallback output and the notes intact. Failures of the
attached memory store or notes sink are logged and never abort a run.
Nothing retries automatically.

# Persistence

Attach a memory store with WithMemoryStore to persist a whole-document
snapshot of the run (query, notes, iteration count, final output) during
the finalize phase. Stores live in the memory subpackage; concurrent runs
against one store are unsafe by design and must be serialized by the
caller.
*/
package refine
