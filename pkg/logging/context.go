package logging

import "context"

type ctxKey struct{}

// NewContext returns a copy of ctx carrying logger
func NewContext(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the request-scoped logger stored in ctx, or fallback
// when none is present. A nil fallback yields a NopLogger.
func FromContext(ctx context.Context, fallback Logger) Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(Logger); ok && l != nil {
			return l
		}
	}
	if fallback == nil {
		return NopLogger{}
	}
	return fallback
}
