// Package log provides a context-aware logging utility using slog.
package log

import (
	"context"
	"log/slog"
	"os"
)

type attrsKeyType struct{}

var attrsKey attrsKeyType

// ContextHandler copies attributes stored in the context onto every
// record before delegating to the wrapped handler.
type ContextHandler struct {
	slog.Handler
}

func (h ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(attrsKey).([]slog.Attr); ok {
		r.AddAttrs(attrs...)
	}
	return h.Handler.Handle(ctx, r)
}

// AppendCtx adds an slog attribute to the provided context so that it will
// be included in any Record created with such context.
func AppendCtx(parent context.Context, attr slog.Attr) context.Context {
	if parent == nil {
		parent = context.Background()
	}

	if v, ok := parent.Value(attrsKey).([]slog.Attr); ok {
		return context.WithValue(parent, attrsKey, append(v, attr))
	}
	return context.WithValue(parent, attrsKey, []slog.Attr{attr})
}

func New(options *slog.HandlerOptions) *slog.Logger {
	if options == nil {
		options = &slog.HandlerOptions{Level: slog.LevelDebug}
	}

	return slog.New(&ContextHandler{
		Handler: slog.NewJSONHandler(os.Stderr, options),
	})
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// NullLogger returns a logger that drops every record. Used in tests.
func NullLogger() *slog.Logger {
	return slog.New(&ContextHandler{
		Handler: slog.NewJSONHandler(discardWriter{}, &slog.HandlerOptions{}),
	})
}
