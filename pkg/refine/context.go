package refine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rmurphy/refine/pkg/refine/llm"
)

// Context provides execution context to producer, evaluator, and finalizer
// steps. It extends context.Context with run-scoped services and metadata.
//
// Context is immutable after creation. The controller creates derived
// contexts per step with the step number and an enriched logger.
type Context interface {
	context.Context

	// Services

	// Logger returns the configured logger, enriched with run and step
	// context. Never returns nil - defaults to slog.Default() if not
	// configured.
	Logger() *slog.Logger

	// LLM returns the LLM client, or nil if not configured.
	// Steps should check for nil before using.
	LLM() llm.Client

	// Metadata

	// RunID returns the unique identifier for this run.
	// Auto-generated if not configured.
	RunID() string

	// Step returns the 1-based producer step being executed, or 0
	// outside the loop (evaluator calls, finalize phase).
	Step() int
}

// runContext is the internal implementation of Context.
type runContext struct {
	context.Context

	logger    *slog.Logger
	llmClient llm.Client
	runID     string
	step      int
}

// Logger returns the configured logger.
func (c *runContext) Logger() *slog.Logger {
	return c.logger
}

// LLM returns the LLM client.
func (c *runContext) LLM() llm.Client {
	return c.llmClient
}

// RunID returns the run identifier.
func (c *runContext) RunID() string {
	return c.runID
}

// Step returns the current producer step.
func (c *runContext) Step() int {
	return c.step
}

// ContextOption configures a Context.
type ContextOption func(*runContext)

// WithLogger sets the logger for the context.
// The logger is enriched with run_id and step during execution.
func WithLogger(logger *slog.Logger) ContextOption {
	return func(c *runContext) {
		c.logger = logger
	}
}

// WithLLM sets the LLM client for the context.
func WithLLM(client llm.Client) ContextOption {
	return func(c *runContext) {
		c.llmClient = client
	}
}

// WithContextRunID sets the run identifier for the context.
// If not set, a UUID is auto-generated.
func WithContextRunID(id string) ContextOption {
	return func(c *runContext) {
		c.runID = id
	}
}

// NewContext creates an execution context from a standard context.
// The returned Context wraps the provided context.Context and adds
// run-scoped services and metadata.
//
// Example:
//
//	ctx := refine.NewContext(context.Background(),
//	    refine.WithLogger(myLogger),
//	    refine.WithLLM(client))
func NewContext(ctx context.Context, opts ...ContextOption) Context {
	rc := &runContext{
		Context: ctx,
		logger:  slog.Default(),
		runID:   uuid.New().String(),
	}

	for _, opt := range opts {
		opt(rc)
	}

	return rc
}

// withStep returns a new context with the given step number set.
// Used internally by the controller to enrich the context per step.
func (c *runContext) withStep(step int) *runContext {
	return &runContext{
		Context:   c.Context,
		logger:    c.logger.With("run_id", c.runID, "step", step),
		llmClient: c.llmClient,
		runID:     c.runID,
		step:      step,
	}
}

// withTimeout derives a context whose embedded deadline bounds one step.
// Falls back to a plain wrapper for foreign Context implementations.
func withTimeout(ctx Context, d time.Duration) (Context, context.CancelFunc) {
	base, cancel := context.WithTimeout(ctx, d)
	if rc, ok := ctx.(*runContext); ok {
		derived := *rc
		derived.Context = base
		return &derived, cancel
	}
	return &deadlineContext{Context: base, parent: ctx}, cancel
}

// deadlineContext bounds a foreign Context implementation with a deadline
// while preserving its services.
type deadlineContext struct {
	context.Context
	parent Context
}

func (d *deadlineContext) Logger() *slog.Logger { return d.parent.Logger() }
func (d *deadlineContext) LLM() llm.Client      { return d.parent.LLM() }
func (d *deadlineContext) RunID() string        { return d.parent.RunID() }
func (d *deadlineContext) Step() int            { return d.parent.Step() }
