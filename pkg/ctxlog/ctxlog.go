// Package ctxlog carries a zap Logger in a Context so request-scoped
// fields follow a request without threading a logger argument through
// every call.
package ctxlog

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

var nop = zap.NewNop()

// WithLogger returns a Context carrying the given Logger.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// WithFields returns a Context whose Logger has the given fields added.
func WithFields(ctx context.Context, fields ...zap.Field) context.Context {
	return WithLogger(ctx, L(ctx).With(fields...))
}

// WithName returns a Context whose Logger has the given name appended.
func WithName(ctx context.Context, name string) context.Context {
	return WithLogger(ctx, L(ctx).Named(name))
}

// L returns the Logger carried by ctx, or a nop Logger if there
// isn't one. It never returns nil.
func L(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
		return l
	}
	return nop
}

// S returns the SugaredLogger form of L(ctx).
func S(ctx context.Context) *zap.SugaredLogger {
	return L(ctx).Sugar()
}
