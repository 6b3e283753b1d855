package context

import (
	"context"
)

const contextKeyTraceID = contextKey("traceID")

// TraceIDFromContext extracts the request trace ID from the context.
// Returns the trace ID and true if present, or empty string and false if not present.
// Trace IDs are assigned by the HTTP tracing middleware and echoed in the
// X-Request-ID response header.
func TraceIDFromContext(ctx context.Context) (string, bool) {
	traceID, ok := ctx.Value(contextKeyTraceID).(string)

	return traceID, ok
}

// WithTraceID creates a new context carrying the given trace ID.
// Every log line written with this context includes the ID, tying the
// entries of one upload or login request together.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, contextKeyTraceID, traceID)
}
