package corelog

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context
var logContextKey = contextKey{}

// LogContext holds operation-scoped logging context: which handle or FSM
// instance is under operation, and the trace/span correlating it to an
// OpenTelemetry span.
type LogContext struct {
	TraceID   string // OpenTelemetry trace ID
	SpanID    string // OpenTelemetry span ID
	Handle    int32  // entity handle under operation (0 if none)
	FSMID     string // FSM instance correlation id (empty if none)
	StartTime time.Time
}

// WithContext returns a new context with the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a new LogContext for an operation on the given handle.
func NewLogContext(handle int32) *LogContext {
	return &LogContext{
		Handle:    handle,
		StartTime: time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	return &LogContext{
		TraceID:   lc.TraceID,
		SpanID:    lc.SpanID,
		Handle:    lc.Handle,
		FSMID:     lc.FSMID,
		StartTime: lc.StartTime,
	}
}

// WithHandle returns a copy with the handle set
func (lc *LogContext) WithHandle(h int32) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Handle = h
	}
	return clone
}

// WithFSMID returns a copy with the FSM instance id set
func (lc *LogContext) WithFSMID(id string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.FSMID = id
	}
	return clone
}

// WithTrace returns a copy with trace info set
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TraceID = traceID
		clone.SpanID = spanID
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
