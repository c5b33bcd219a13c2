package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, "corectld", cfg.ServiceName)
	assert.Equal(t, "dev", cfg.ServiceVersion)
	assert.Equal(t, "localhost:4317", cfg.Endpoint)
	assert.True(t, cfg.Insecure)
	assert.Equal(t, 1.0, cfg.SampleRate)
}

func TestInitDisabled(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.Enabled = false

	shutdown, err := Init(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	// Should be able to call shutdown without error
	err = shutdown(ctx)
	assert.NoError(t, err)

	// Should not be enabled
	assert.False(t, IsEnabled())
}

func TestTracerReturnsNoOp(t *testing.T) {
	// Reset state
	tracer = nil
	enabled = false

	// Without initialization, should return no-op tracer
	tr := Tracer()
	require.NotNil(t, tr)
}

func TestStartSpan(t *testing.T) {
	ctx := context.Background()

	// Even without initialization, StartSpan should work (no-op)
	newCtx, span := StartSpan(ctx, "test.operation")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)

	// Should be able to end the span
	span.End()
}

func TestSpanFromContext(t *testing.T) {
	ctx := context.Background()

	// Should return a span even without active span
	span := SpanFromContext(ctx)
	require.NotNil(t, span)
}

func TestAddEvent(t *testing.T) {
	ctx := context.Background()

	// Should not panic with no active span
	require.NotPanics(t, func() {
		AddEvent(ctx, "test.event")
	})
}

func TestRecordError(t *testing.T) {
	ctx := context.Background()

	// Should not panic with nil error
	require.NotPanics(t, func() {
		RecordError(ctx, nil)
	})

	// Should not panic with error
	require.NotPanics(t, func() {
		RecordError(ctx, errors.New("test error"))
	})
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()

	// Should not panic
	require.NotPanics(t, func() {
		SetStatus(ctx, codes.Ok, "success")
	})

	require.NotPanics(t, func() {
		SetStatus(ctx, codes.Error, "failed")
	})
}

func TestSetAttributes(t *testing.T) {
	ctx := context.Background()

	// Should not panic
	require.NotPanics(t, func() {
		SetAttributes(ctx, Handle(42))
	})
}

func TestTraceID(t *testing.T) {
	ctx := context.Background()

	// Without active span, should return empty string
	traceID := TraceID(ctx)
	assert.Equal(t, "", traceID)
}

func TestSpanID(t *testing.T) {
	ctx := context.Background()

	// Without active span, should return empty string
	spanID := SpanID(ctx)
	assert.Equal(t, "", spanID)
}

func TestAttributeHelpers(t *testing.T) {
	t.Run("Handle", func(t *testing.T) {
		attr := Handle(42)
		assert.Equal(t, AttrHandle, string(attr.Key))
		assert.Equal(t, int64(42), attr.Value.AsInt64())
	})

	t.Run("Operation", func(t *testing.T) {
		attr := Operation("pin_for_delete")
		assert.Equal(t, AttrOperation, string(attr.Key))
		assert.Equal(t, "pin_for_delete", attr.Value.AsString())
	})

	t.Run("PinCount", func(t *testing.T) {
		attr := PinCount(3)
		assert.Equal(t, AttrPinCount, string(attr.Key))
		assert.Equal(t, int64(3), attr.Value.AsInt64())
	})

	t.Run("RefCount", func(t *testing.T) {
		attr := RefCount(2)
		assert.Equal(t, AttrRefCount, string(attr.Key))
		assert.Equal(t, int64(2), attr.Value.AsInt64())
	})

	t.Run("Flags", func(t *testing.T) {
		attr := Flags("closing|implicit")
		assert.Equal(t, AttrFlags, string(attr.Key))
		assert.Equal(t, "closing|implicit", attr.Value.AsString())
	})

	t.Run("Reader", func(t *testing.T) {
		attr := Reader("reader-1")
		assert.Equal(t, AttrReader, string(attr.Key))
		assert.Equal(t, "reader-1", attr.Value.AsString())
	})

	t.Run("MaxSamples", func(t *testing.T) {
		attr := MaxSamples(32)
		assert.Equal(t, AttrMaxSamples, string(attr.Key))
		assert.Equal(t, int64(32), attr.Value.AsInt64())
	})

	t.Run("LoanOrigin", func(t *testing.T) {
		attr := LoanOrigin("heap")
		assert.Equal(t, AttrLoanOrigin, string(attr.Key))
		assert.Equal(t, "heap", attr.Value.AsString())
	})

	t.Run("SampleState", func(t *testing.T) {
		attr := SampleState("raw_data")
		assert.Equal(t, AttrSampleState, string(attr.Key))
		assert.Equal(t, "raw_data", attr.Value.AsString())
	})

	t.Run("LoanCount", func(t *testing.T) {
		attr := LoanCount(5)
		assert.Equal(t, AttrLoanCount, string(attr.Key))
		assert.Equal(t, int64(5), attr.Value.AsInt64())
	})

	t.Run("FSMID", func(t *testing.T) {
		attr := FSMID("fsm-1")
		assert.Equal(t, AttrFSMID, string(attr.Key))
		assert.Equal(t, "fsm-1", attr.Value.AsString())
	})

	t.Run("FSMState", func(t *testing.T) {
		attr := FSMState("active")
		assert.Equal(t, AttrFSMState, string(attr.Key))
		assert.Equal(t, "active", attr.Value.AsString())
	})

	t.Run("EventID", func(t *testing.T) {
		attr := EventID(-2)
		assert.Equal(t, AttrEventID, string(attr.Key))
		assert.Equal(t, int64(-2), attr.Value.AsInt64())
	})

	t.Run("TimeoutKind", func(t *testing.T) {
		attr := TimeoutKind("overall")
		assert.Equal(t, AttrTimeoutKind, string(attr.Key))
		assert.Equal(t, "overall", attr.Value.AsString())
	})
}

func TestStartHandleSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartHandleSpan(ctx, SpanHandlePin, 7)
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()

	newCtx2, span2 := StartHandleSpan(ctx, SpanHandlePinForDelete, 7, Operation("pin_for_delete"))
	require.NotNil(t, newCtx2)
	require.NotNil(t, span2)
	span2.End()
}

func TestStartLoanSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartLoanSpan(ctx, SpanLoanRead, "reader-1")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()

	newCtx2, span2 := StartLoanSpan(ctx, SpanLoanTake, "reader-1", MaxSamples(10))
	require.NotNil(t, newCtx2)
	require.NotNil(t, span2)
	span2.End()
}

func TestStartFSMSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartFSMSpan(ctx, SpanFSMDispatch, "fsm-1")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()

	newCtx2, span2 := StartFSMSpan(ctx, SpanFSMTransition, "fsm-1", FSMState("active"))
	require.NotNil(t, newCtx2)
	require.NotNil(t, span2)
	span2.End()
}
