package refine

import (
	"context"
	"encoding/json"
	"runtime/debug"
	"time"

	"github.com/rmurphy/refine/pkg/refine/memory"
	"github.com/rmurphy/refine/pkg/refine/observability"
	"go.opentelemetry.io/otel/trace"
)

// Controller drives the bounded refinement loop: a producer step invoked
// up to MaxIterations times, an optional evaluator deciding whether
// another pass is warranted, and a finalizer that runs exactly once.
//
// Controller is immutable after construction and safe for concurrent
// Run() calls, as long as each run uses its own memory store (stores are
// whole-document and unsynchronized across runs by design).
type Controller struct {
	producer  ProducerFunc
	evaluator EvaluatorFunc
	finalizer FinalizerFunc
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithEvaluator sets the evaluator consulted between producer steps.
// Without one, the loop folds the decision into the record's NeedsMore
// flag as set by the producer.
func WithEvaluator(fn EvaluatorFunc) ControllerOption {
	return func(c *Controller) {
		c.evaluator = fn
	}
}

// New creates a Controller from a producer and a finalizer.
//
// Panics if producer or finalizer is nil: a controller without both is a
// programming error, not a runtime condition.
func New(producer ProducerFunc, finalizer FinalizerFunc, opts ...ControllerOption) *Controller {
	if producer == nil {
		panic("refine: producer cannot be nil")
	}
	if finalizer == nil {
		panic("refine: finalizer cannot be nil")
	}

	c := &Controller{
		producer:  producer,
		finalizer: finalizer,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes one refinement session over the given record.
//
// Execution flow:
//  1. Reject records with MaxIterations < 1 (ErrInvalidConfiguration).
//  2. Invoke the producer while Iteration < MaxIterations and, from the
//     second step on, the evaluator (or NeedsMore) asks for another pass.
//     The first step is always unconditional.
//  3. Apply the cap policy to NeedsMore if the cap cut the loop short.
//  4. Invoke the finalizer exactly once; on failure substitute the
//     fallback output. Update the attached memory store and notes sink.
//
// A producer failure aborts the run: Run returns the record as it stood
// before the failed step, wrapped in a *ProducerError, and the finalizer
// does not run. Finalizer and sink failures never abort a run.
func (c *Controller) Run(ctx Context, rec Record, opts ...RunOption) (result Record, runErr error) {
	if ctx == nil {
		return rec, ErrNilContext
	}

	cfg := defaultRunConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if rec.MaxIterations < 1 {
		return rec, ErrInvalidConfiguration
	}

	// Run ID for observability (from config or context)
	runID := cfg.runID
	if runID == "" {
		runID = ctx.RunID()
	}

	startTime := time.Now()
	observability.LogRunStart(cfg.logger, runID, rec.Query)

	// Start run span if tracing enabled
	var execCtx context.Context = ctx
	var runSpan trace.Span
	if cfg.tracingEnabled {
		execCtx, runSpan = cfg.spans.StartRunSpan(ctx, runID)
		defer func() {
			cfg.spans.EndSpanWithError(runSpan, runErr)
		}()
	}

	rec, runErr = c.refineLoop(execCtx, ctx, rec, &cfg)
	if runErr == nil {
		rec = c.finalize(execCtx, ctx, rec, &cfg)
	}

	duration := time.Since(startTime)
	durationMs := float64(duration.Milliseconds())
	cfg.metrics.RecordRun(ctx, runErr == nil, duration)

	if runErr != nil {
		observability.LogRunError(cfg.logger, runID, runErr, durationMs)
	} else {
		observability.LogRunComplete(cfg.logger, runID, durationMs, rec.Iteration)
	}

	return rec, runErr
}

// refineLoop executes producer steps until the evaluator declines or the
// iteration cap is reached. The failed step of an aborted run commits
// nothing: the returned record is the state before that step.
func (c *Controller) refineLoop(tracingCtx context.Context, rctx Context, rec Record, cfg *runConfig) (Record, error) {
	for rec.Iteration < rec.MaxIterations && (rec.Iteration == 0 || c.wantsMore(rctx, rec)) {
		step := rec.Iteration + 1

		// Check for cancellation before invoking the producer
		select {
		case <-rctx.Done():
			return rec, &ProducerError{Step: step, Err: rctx.Err()}
		default:
		}

		observability.LogStepStart(cfg.logger, step)

		// Start step span if tracing enabled
		stepTracingCtx := tracingCtx
		var stepSpan trace.Span
		if cfg.tracingEnabled {
			stepTracingCtx, stepSpan = cfg.spans.StartStepSpan(tracingCtx, step)
		}

		stepStart := time.Now()
		res, stepErr := c.invokeProducer(rctx, rec, step, cfg.stepTimeout)
		stepDuration := time.Since(stepStart)

		cfg.metrics.RecordStep(stepTracingCtx, step, stepDuration, stepErr)
		if cfg.tracingEnabled {
			cfg.spans.EndSpanWithError(stepSpan, stepErr)
		}

		if stepErr != nil {
			observability.LogStepError(cfg.logger, step, stepErr)
			return rec, stepErr
		}

		rec.Notes = append(rec.Notes, res.Notes...)
		rec.NeedsMore = res.NeedsMore
		rec.Iteration++

		observability.LogStepComplete(cfg.logger, step, float64(stepDuration.Milliseconds()), rec.NeedsMore)
	}

	// The cap is absolute. By default it also silences needs_more so the
	// final record doesn't claim work remains that will never happen;
	// CapPreserve keeps the flag for callers that want to see the cut.
	if rec.Iteration >= rec.MaxIterations && rec.NeedsMore {
		forced := cfg.capPolicy == CapForceFalse
		if forced {
			rec.NeedsMore = false
		}
		observability.LogCapReached(cfg.logger, rec.MaxIterations, forced)
	}

	return rec, nil
}

// wantsMore consults the evaluator, falling back to the record's own
// NeedsMore flag when none is configured.
func (c *Controller) wantsMore(ctx Context, rec Record) bool {
	if c.evaluator != nil {
		return c.evaluator(ctx, rec)
	}
	return rec.NeedsMore
}

// invokeProducer runs one producer step with panic recovery and the
// optional per-step timeout.
func (c *Controller) invokeProducer(ctx Context, rec Record, step int, timeout time.Duration) (result StepResult, err error) {
	stepCtx := ctx
	if rc, ok := ctx.(*runContext); ok {
		stepCtx = rc.withStep(step)
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		stepCtx, cancel = withTimeout(stepCtx, timeout)
		defer cancel()
	}

	// Panic recovery
	defer func() {
		if r := recover(); r != nil {
			result = StepResult{}
			err = &PanicError{
				Phase: "producer",
				Step:  step,
				Value: r,
				Stack: string(debug.Stack()),
			}
		}
	}()

	result, err = c.producer(stepCtx, rec)
	if err != nil {
		return StepResult{}, &ProducerError{Step: step, Err: err}
	}

	return result, nil
}

// finalize runs the finalizer exactly once and applies its effects:
// the final output (or the fallback), the memory snapshot update, and
// the best-effort sink append.
func (c *Controller) finalize(tracingCtx context.Context, rctx Context, rec Record, cfg *runConfig) Record {
	var finSpan trace.Span
	finTracingCtx := tracingCtx
	if cfg.tracingEnabled {
		finTracingCtx, finSpan = cfg.spans.StartFinalizeSpan(tracingCtx)
	}

	finStart := time.Now()
	output, finErr := c.invokeFinalizer(rctx, rec)
	finDuration := time.Since(finStart)

	if cfg.tracingEnabled {
		cfg.spans.EndSpanWithError(finSpan, finErr)
	}

	if finErr != nil {
		// The run has done useful work; absorb the failure and keep
		// the notes. The fallback is deterministic.
		observability.LogFinalizeFallback(cfg.logger, &FinalizerError{Err: finErr})
		output = cfg.fallbackOutput
	} else {
		observability.LogFinalize(cfg.logger, float64(finDuration.Milliseconds()), len(output))
	}
	rec.FinalOutput = output

	if cfg.memoryStore != nil {
		rec = c.persistMemory(finTracingCtx, rec, cfg)
	}

	if cfg.sink != nil {
		if err := cfg.sink.Append(rec.FinalOutput); err != nil {
			observability.LogSinkError(cfg.logger, &SinkError{Err: err})
		}
	}

	return rec
}

// invokeFinalizer runs the finalizer with panic recovery.
func (c *Controller) invokeFinalizer(ctx Context, rec Record) (output string, err error) {
	defer func() {
		if r := recover(); r != nil {
			output = ""
			err = &PanicError{
				Phase: "finalizer",
				Value: r,
				Stack: string(debug.Stack()),
			}
		}
	}()

	return c.finalizer(ctx, rec)
}

// persistMemory performs the whole-document snapshot update: load, merge
// the run's results, save. Failures are logged and never fatal.
func (c *Controller) persistMemory(ctx context.Context, rec Record, cfg *runConfig) Record {
	snap, err := cfg.memoryStore.Load()
	if err != nil {
		observability.LogMemoryError(cfg.logger, "load", err)
		return rec
	}
	if snap == nil {
		snap = memory.Snapshot{}
	}

	snap["last_query"] = rec.Query
	snap["last_notes"] = append([]string(nil), rec.Notes...)
	snap["iterations"] = rec.Iteration
	snap["final_note"] = rec.FinalOutput

	if err := cfg.memoryStore.Save(snap); err != nil {
		observability.LogMemoryError(cfg.logger, "save", err)
		return rec
	}
	rec.Memory = snap

	if data, err := json.Marshal(snap); err == nil {
		observability.LogMemorySaved(cfg.logger, len(data))
		cfg.metrics.RecordMemorySnapshot(ctx, int64(len(data)))
	}

	return rec
}
