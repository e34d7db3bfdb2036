package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNoopMetrics(t *testing.T) {
	var m MetricsRecorder = NoopMetrics{}
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordStep(ctx, 1, time.Millisecond, nil)
		m.RecordStep(ctx, 1, time.Millisecond, errors.New("boom"))
		m.RecordRun(ctx, true, time.Millisecond)
		m.RecordMemorySnapshot(ctx, 1024)
	})
}

func TestNoopSpanManager(t *testing.T) {
	var sm SpanManager = NoopSpanManager{}
	ctx := context.Background()

	runCtx, runSpan := sm.StartRunSpan(ctx, "run-1")
	assert.Equal(t, ctx, runCtx) // context passes through unchanged
	assert.NotNil(t, runSpan)
	assert.False(t, runSpan.SpanContext().IsValid())

	stepCtx, stepSpan := sm.StartStepSpan(ctx, 1)
	assert.Equal(t, ctx, stepCtx)
	assert.NotNil(t, stepSpan)

	finCtx, finSpan := sm.StartFinalizeSpan(ctx)
	assert.Equal(t, ctx, finCtx)
	assert.NotNil(t, finSpan)

	assert.NotPanics(t, func() {
		sm.EndSpanWithError(runSpan, nil)
		sm.EndSpanWithError(stepSpan, errors.New("boom"))
		sm.EndSpanWithError(nil, nil)
	})
}
