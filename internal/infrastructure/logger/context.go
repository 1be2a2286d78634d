package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	// LoggerKey is the context key for the request-scoped logger
	LoggerKey contextKey = "logger"
	// RequestIDKey is the context key for the request ID
	RequestIDKey contextKey = "request_id"
	// AccountIDKey is the context key for the authenticated account ID
	AccountIDKey contextKey = "account_id"
)

// WithContext returns a new context carrying the logger
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from context. Returns a no-op logger
// when none was attached, so callers never need a nil check.
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID stores the request ID in the context and returns a logger
// that stamps it on every entry.
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, RequestIDKey, requestID)
	enriched := logger.With(zap.String("request_id", requestID))
	return WithContext(ctx, enriched), enriched
}

// WithAccountID stores the authenticated account ID in the context and
// returns a logger that stamps it on every entry.
func WithAccountID(ctx context.Context, logger *zap.Logger, accountID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, AccountIDKey, accountID)
	enriched := logger.With(zap.String("account_id", accountID))
	return WithContext(ctx, enriched), enriched
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// GetAccountID retrieves the authenticated account ID from context
func GetAccountID(ctx context.Context) string {
	if accountID, ok := ctx.Value(AccountIDKey).(string); ok {
		return accountID
	}
	return ""
}

// spanContext returns the active span's context when it carries valid IDs.
func spanContext(ctx context.Context) (trace.SpanContext, bool) {
	sc := trace.SpanFromContext(ctx).SpanContext()
	return sc, sc.IsValid()
}

// GetTraceID extracts the trace ID from the context's active span.
// Returns an empty string when there is no valid span.
func GetTraceID(ctx context.Context) string {
	if sc, ok := spanContext(ctx); ok {
		return sc.TraceID().String()
	}
	return ""
}

// GetSpanID extracts the span ID from the context's active span.
// Returns an empty string when there is no valid span.
func GetSpanID(ctx context.Context) string {
	if sc, ok := spanContext(ctx); ok {
		return sc.SpanID().String()
	}
	return ""
}

// WithTraceContext returns a logger stamped with trace_id and span_id from
// the context's active span, or the logger unchanged when there is none.
// Entries carrying these fields can be joined with the trace backend.
func WithTraceContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	sc, ok := spanContext(ctx)
	if !ok {
		return logger
	}
	return logger.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}
