package corelog

import (
	"log/slog"
)

// Standard field keys for structured logging across the handle server, the
// loan pipeline, and the FSM control. Use these keys consistently across all
// log statements so dashboards and log queries can rely on them.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Entity handles
	// ========================================================================
	KeyHandle    = "handle"     // dds_handle_t value under operation
	KeyPinCount  = "pin_count"  // current pin count extracted from the packed word
	KeyRefCount  = "ref_count"  // current ref count extracted from the packed word
	KeyFlags     = "flags"     // symbolic flag bits set on the handle
	KeyOperation = "operation" // handle server operation name: pin, unpin, pin_for_delete, ...

	// ========================================================================
	// Loans / read pipeline
	// ========================================================================
	KeyReader      = "reader"       // reader identifier the loan pool belongs to
	KeyLoanOrigin  = "loan_origin"  // heap or external
	KeyLoanCount   = "loan_count"   // number of loans outstanding
	KeyHeapCache   = "heap_cache"   // size of the heap-loan cache after an operation
	KeyMaxSamples  = "max_samples"  // max_samples requested on a read/take/peek call
	KeySampleState = "sample_state" // RAW_DATA or RAW_KEY

	// ========================================================================
	// FSM control
	// ========================================================================
	KeyFSMID       = "fsm_id"       // correlation id for an FSM instance
	KeyFSMState    = "fsm_state"    // current/previous state name
	KeyEventID     = "event_id"     // dispatched event id (AUTO/TIMEOUT/DELETE or domain-specific)
	KeyTimeoutKind = "timeout_kind" // state or overall
	KeyQueueDepth  = "queue_depth"  // event queue depth at dispatch time
	KeyHeapSize    = "heap_size"    // timer heap size at schedule/fire time

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyErrorCode  = "error_code"  // Numeric error code
)

// ============================================================================
// Field constructors for type safety
// ============================================================================

// TraceID returns a slog.Attr for OpenTelemetry trace ID.
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID.
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// Handle returns a slog.Attr for an entity handle value.
func Handle(h int32) slog.Attr {
	return slog.Int(KeyHandle, int(h))
}

// PinCount returns a slog.Attr for a handle's pin count.
func PinCount(n uint32) slog.Attr {
	return slog.Any(KeyPinCount, n)
}

// RefCount returns a slog.Attr for a handle's ref count.
func RefCount(n uint32) slog.Attr {
	return slog.Any(KeyRefCount, n)
}

// Flags returns a slog.Attr for a handle's symbolic flag summary.
func Flags(s string) slog.Attr {
	return slog.String(KeyFlags, s)
}

// Operation returns a slog.Attr for the handle/loan/FSM operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Reader returns a slog.Attr for the reader a loan pool belongs to.
func Reader(id string) slog.Attr {
	return slog.String(KeyReader, id)
}

// LoanOrigin returns a slog.Attr for a loan's origin kind.
func LoanOrigin(origin string) slog.Attr {
	return slog.String(KeyLoanOrigin, origin)
}

// LoanCount returns a slog.Attr for the number of outstanding loans.
func LoanCount(n int) slog.Attr {
	return slog.Int(KeyLoanCount, n)
}

// HeapCache returns a slog.Attr for the heap-loan cache size.
func HeapCache(n int) slog.Attr {
	return slog.Int(KeyHeapCache, n)
}

// MaxSamples returns a slog.Attr for a read/take/peek call's max_samples.
func MaxSamples(n int) slog.Attr {
	return slog.Int(KeyMaxSamples, n)
}

// SampleState returns a slog.Attr for a sample's state (RAW_DATA/RAW_KEY).
func SampleState(s string) slog.Attr {
	return slog.String(KeySampleState, s)
}

// FSMID returns a slog.Attr for an FSM instance correlation id.
func FSMID(id string) slog.Attr {
	return slog.String(KeyFSMID, id)
}

// FSMState returns a slog.Attr for an FSM state name.
func FSMState(name string) slog.Attr {
	return slog.String(KeyFSMState, name)
}

// EventID returns a slog.Attr for a dispatched event id.
func EventID(id int32) slog.Attr {
	return slog.Int(KeyEventID, int(id))
}

// TimeoutKind returns a slog.Attr distinguishing state vs. overall timeouts.
func TimeoutKind(kind string) slog.Attr {
	return slog.String(KeyTimeoutKind, kind)
}

// QueueDepth returns a slog.Attr for the FSM event queue depth.
func QueueDepth(n int) slog.Attr {
	return slog.Int(KeyQueueDepth, n)
}

// HeapSize returns a slog.Attr for the FSM timer heap size.
func HeapSize(n int) slog.Attr {
	return slog.Int(KeyHeapSize, n)
}

// DurationMs returns a slog.Attr for duration in milliseconds.
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for a numeric error code.
func ErrorCode(code int) slog.Attr {
	return slog.Int(KeyErrorCode, code)
}
