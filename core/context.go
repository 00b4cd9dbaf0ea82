package core

import "context"

// Context keys for analysis options
type contextKey string

const progressKey contextKey = "progress"

// withProgress attaches a per-file progress callback to the context.
func withProgress(ctx context.Context, fn func(string)) context.Context {
	if fn == nil {
		return ctx
	}
	return context.WithValue(ctx, progressKey, fn)
}

// progressFromContext returns the progress callback from context, or nil.
func progressFromContext(ctx context.Context) func(string) {
	fn, _ := ctx.Value(progressKey).(func(string))
	return fn
}
