package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for handle-server, loan-pipeline, and FSM-control spans.
// These follow OpenTelemetry semantic conventions where applicable.
const (
	// ========================================================================
	// Entity handles
	// ========================================================================
	AttrHandle    = "handle.id"
	AttrOperation = "handle.operation" // create, pin, unpin, pin_for_delete, close, delete
	AttrPinCount  = "handle.pin_count"
	AttrRefCount  = "handle.ref_count"
	AttrFlags     = "handle.flags"

	// ========================================================================
	// Loans / read-take-peek pipeline
	// ========================================================================
	AttrReader      = "loan.reader"
	AttrMaxSamples  = "loan.max_samples"
	AttrLoanOrigin  = "loan.origin" // heap or external
	AttrSampleState = "loan.sample_state"
	AttrLoanCount   = "loan.count"

	// ========================================================================
	// FSM control
	// ========================================================================
	AttrFSMID       = "fsm.id"
	AttrFSMState    = "fsm.state"
	AttrEventID     = "fsm.event_id"
	AttrTimeoutKind = "fsm.timeout_kind"
)

// Span names for operations. Format: <component>.<operation>.
const (
	SpanHandleCreate       = "handle.create"
	SpanHandlePin          = "handle.pin"
	SpanHandleUnpin        = "handle.unpin"
	SpanHandlePinForDelete = "handle.pin_for_delete"
	SpanHandleClose        = "handle.close"
	SpanHandleDelete       = "handle.delete"

	SpanLoanRead   = "loan.read"
	SpanLoanTake   = "loan.take"
	SpanLoanPeek   = "loan.peek"
	SpanLoanReturn = "loan.return"

	SpanFSMDispatch   = "fsm.dispatch"
	SpanFSMTransition = "fsm.transition"
	SpanFSMTimeout    = "fsm.timeout"
)

// Handle returns an attribute for an entity handle value.
func Handle(h int32) attribute.KeyValue {
	return attribute.Int(AttrHandle, int(h))
}

// Operation returns an attribute for the handle-server operation name.
func Operation(op string) attribute.KeyValue {
	return attribute.String(AttrOperation, op)
}

// PinCount returns an attribute for a handle's pin count.
func PinCount(n uint32) attribute.KeyValue {
	return attribute.Int64(AttrPinCount, int64(n))
}

// RefCount returns an attribute for a handle's ref count.
func RefCount(n uint32) attribute.KeyValue {
	return attribute.Int64(AttrRefCount, int64(n))
}

// Flags returns an attribute for a handle's symbolic flag summary.
func Flags(s string) attribute.KeyValue {
	return attribute.String(AttrFlags, s)
}

// Reader returns an attribute for the reader a loan pool belongs to.
func Reader(id string) attribute.KeyValue {
	return attribute.String(AttrReader, id)
}

// MaxSamples returns an attribute for a read/take/peek call's max_samples.
func MaxSamples(n int) attribute.KeyValue {
	return attribute.Int(AttrMaxSamples, n)
}

// LoanOrigin returns an attribute for a loan's origin kind.
func LoanOrigin(origin string) attribute.KeyValue {
	return attribute.String(AttrLoanOrigin, origin)
}

// SampleState returns an attribute for a sample's state (raw_data/raw_key).
func SampleState(s string) attribute.KeyValue {
	return attribute.String(AttrSampleState, s)
}

// LoanCount returns an attribute for the number of outstanding loans.
func LoanCount(n int) attribute.KeyValue {
	return attribute.Int(AttrLoanCount, n)
}

// FSMID returns an attribute for an FSM instance correlation id.
func FSMID(id string) attribute.KeyValue {
	return attribute.String(AttrFSMID, id)
}

// FSMState returns an attribute for an FSM state name.
func FSMState(name string) attribute.KeyValue {
	return attribute.String(AttrFSMState, name)
}

// EventID returns an attribute for a dispatched event id.
func EventID(id int32) attribute.KeyValue {
	return attribute.Int(AttrEventID, int(id))
}

// TimeoutKind returns an attribute distinguishing state vs. overall timeouts.
func TimeoutKind(kind string) attribute.KeyValue {
	return attribute.String(AttrTimeoutKind, kind)
}

// StartHandleSpan starts a span for a handle-server operation.
func StartHandleSpan(ctx context.Context, span string, h int32, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := append([]attribute.KeyValue{Handle(h)}, attrs...)
	return StartSpan(ctx, span, trace.WithAttributes(allAttrs...))
}

// StartLoanSpan starts a span for a read/take/peek or return-loan operation.
func StartLoanSpan(ctx context.Context, span string, readerID string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := append([]attribute.KeyValue{Reader(readerID)}, attrs...)
	return StartSpan(ctx, span, trace.WithAttributes(allAttrs...))
}

// StartFSMSpan starts a span for a dispatch, transition, or timeout event on
// an FSM instance.
func StartFSMSpan(ctx context.Context, span string, fsmID string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := append([]attribute.KeyValue{FSMID(fsmID)}, attrs...)
	return StartSpan(ctx, span, trace.WithAttributes(allAttrs...))
}
