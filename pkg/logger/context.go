package logger

import "context"

type ctxKey struct{}

// NewContext returns a context carrying the given logger.
func NewContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext extracts the logger from the context, falling back to a
// default info-level logger when none is attached.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(ctxKey{}).(Logger); ok {
		return l
	}
	return NewLogger("info", "")
}
