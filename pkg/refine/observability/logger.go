// Package observability provides structured logging, metrics, and tracing
// for refinement runs.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
)

// EnrichLogger adds run context to a logger.
// Returns a new logger with run_id and step fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "run-123", 2)
//	enriched.Info("doing work") // includes run_id, step
func EnrichLogger(logger *slog.Logger, runID string, step int) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("run_id", runID),
		slog.Int("step", step),
	)
}

// LogRunStart logs the start of a refinement run.
func LogRunStart(logger *slog.Logger, runID, query string) {
	if logger == nil {
		return
	}
	logger.Info("refinement run starting",
		slog.String("run_id", runID),
		slog.String("query", query),
	)
}

// LogRunComplete logs successful run completion.
func LogRunComplete(logger *slog.Logger, runID string, durationMs float64, steps int) {
	if logger == nil {
		return
	}
	logger.Info("refinement run completed",
		slog.String("run_id", runID),
		slog.Float64("duration_ms", durationMs),
		slog.Int("producer_steps", steps),
	)
}

// LogRunError logs run failure.
func LogRunError(logger *slog.Logger, runID string, err error, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Error("refinement run failed",
		slog.String("run_id", runID),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogStepStart logs producer step start.
func LogStepStart(logger *slog.Logger, step int) {
	if logger == nil {
		return
	}
	logger.Debug("producer step starting",
		slog.Int("step", step),
	)
}

// LogStepComplete logs successful producer step completion.
func LogStepComplete(logger *slog.Logger, step int, durationMs float64, needsMore bool) {
	if logger == nil {
		return
	}
	logger.Debug("producer step completed",
		slog.Int("step", step),
		slog.Float64("duration_ms", durationMs),
		slog.Bool("needs_more", needsMore),
	)
}

// LogStepError logs producer step failure.
func LogStepError(logger *slog.Logger, step int, err error) {
	if logger == nil {
		return
	}
	logger.Error("producer step failed",
		slog.Int("step", step),
		slog.String("error", err.Error()),
	)
}

// LogCapReached logs that the iteration cap cut the loop short.
func LogCapReached(logger *slog.Logger, max int, forced bool) {
	if logger == nil {
		return
	}
	logger.Info("iteration cap reached",
		slog.Int("max_iterations", max),
		slog.Bool("needs_more_forced_false", forced),
	)
}

// LogFinalize logs finalizer completion.
func LogFinalize(logger *slog.Logger, durationMs float64, outputLen int) {
	if logger == nil {
		return
	}
	logger.Debug("finalizer completed",
		slog.Float64("duration_ms", durationMs),
		slog.Int("output_len", outputLen),
	)
}

// LogFinalizeFallback logs that finalization failed and the fallback
// output was substituted. The run still completes.
func LogFinalizeFallback(logger *slog.Logger, err error) {
	if logger == nil {
		return
	}
	logger.Warn("finalizer failed, using fallback output",
		slog.String("error", err.Error()),
	)
}

// LogMemorySaved logs a successful snapshot save.
func LogMemorySaved(logger *slog.Logger, sizeBytes int) {
	if logger == nil {
		return
	}
	logger.Debug("memory snapshot saved",
		slog.Int("size_bytes", sizeBytes),
	)
}

// LogMemoryError logs a snapshot load/save failure (non-fatal).
func LogMemoryError(logger *slog.Logger, op string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("memory snapshot failed",
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}

// LogSinkError logs a best-effort sink append failure (non-fatal).
func LogSinkError(logger *slog.Logger, err error) {
	if logger == nil {
		return
	}
	logger.Warn("notes sink append failed",
		slog.String("error", err.Error()),
	)
}
