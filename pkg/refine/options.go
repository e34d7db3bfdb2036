package refine

import (
	"log/slog"
	"time"

	"github.com/rmurphy/refine/pkg/refine/memory"
	"github.com/rmurphy/refine/pkg/refine/notes"
	"github.com/rmurphy/refine/pkg/refine/observability"
)

// CapPolicy decides what happens to the needs_more flag when the loop
// stops because the iteration cap was reached.
type CapPolicy int

const (
	// CapForceFalse forces needs_more to false at the cap even if the
	// producer asked for more. The cap is absolute, not advisory.
	// This is the default.
	CapForceFalse CapPolicy = iota

	// CapPreserve stops the loop at the cap but leaves needs_more as the
	// producer last set it, so callers can see the loop was cut short.
	CapPreserve
)

// DefaultFallbackOutput is stored in the record when finalization fails.
// The accumulated notes are never discarded.
const DefaultFallbackOutput = "Summary unavailable: finalization failed. The collected research notes were retained."

// runConfig holds configuration for one Run call.
type runConfig struct {
	runID          string
	capPolicy      CapPolicy
	stepTimeout    time.Duration
	fallbackOutput string
	memoryStore    memory.Store
	sink           notes.Sink

	logger         *slog.Logger
	metrics        observability.MetricsRecorder
	spans          observability.SpanManager
	tracingEnabled bool
}

// defaultRunConfig returns the default run configuration.
func defaultRunConfig() runConfig {
	return runConfig{
		capPolicy:      CapForceFalse,
		fallbackOutput: DefaultFallbackOutput,
		metrics:        observability.NoopMetrics{},
		spans:          observability.NoopSpanManager{},
	}
}

// RunOption configures run behavior.
type RunOption func(*runConfig)

// WithRunID sets the run identifier used for logging, metrics, and the
// run span. Defaults to the context's auto-generated ID.
func WithRunID(id string) RunOption {
	return func(c *runConfig) {
		c.runID = id
	}
}

// WithCapPolicy sets what happens to needs_more at the iteration cap.
// Default: CapForceFalse
func WithCapPolicy(p CapPolicy) RunOption {
	return func(c *runConfig) {
		c.capPolicy = p
	}
}

// WithStepTimeout bounds each producer invocation. A producer that blocks
// past the bound fails the run with a ProducerError wrapping
// context.DeadlineExceeded. Zero (the default) disables the bound.
func WithStepTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		if d > 0 {
			c.stepTimeout = d
		}
	}
}

// WithFallbackOutput replaces the output substituted when finalization
// fails. Default: DefaultFallbackOutput
func WithFallbackOutput(s string) RunOption {
	return func(c *runConfig) {
		if s != "" {
			c.fallbackOutput = s
		}
	}
}

// WithMemoryStore attaches a persisted memory store. The finalize phase
// loads the snapshot, merges the run's results, and saves it wholesale.
// Store failures are logged, never fatal.
func WithMemoryStore(store memory.Store) RunOption {
	return func(c *runConfig) {
		c.memoryStore = store
	}
}

// WithNotesSink attaches a best-effort sink that receives the final
// output. Sink failures are logged, never fatal.
func WithNotesSink(sink notes.Sink) RunOption {
	return func(c *runConfig) {
		c.sink = sink
	}
}

// WithRunLogger sets the structured logger for run and step events.
// Without it, the run is silent.
func WithRunLogger(logger *slog.Logger) RunOption {
	return func(c *runConfig) {
		c.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics for the run.
// Configure the global meter provider before use.
func WithMetrics(enabled bool) RunOption {
	return func(c *runConfig) {
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// WithTracing enables OpenTelemetry tracing for the run.
// Configure the global tracer provider before use.
func WithTracing(enabled bool) RunOption {
	return func(c *runConfig) {
		c.tracingEnabled = enabled
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}
