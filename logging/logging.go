package logging

import (
	"context"
	"io"
	"log/slog"
)

// Attribute keys shared by every record that concerns a spawned thread.
const (
	KeyThread = "thread"
	KeyName   = "name"
)

// Logger is the logging surface the toolkit writes to. Every method takes the
// context of the work unit that produced the record, so handlers can pick up
// request-scoped values.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
	With(args ...any) Logger
}

// New adapts l. A nil l follows slog.Default() at each call, so a later
// slog.SetDefault is honoured.
func New(l *slog.Logger) Logger {
	return &adapter{l: l}
}

// Discard returns a Logger that writes nothing.
func Discard() Logger {
	return New(slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 64})))
}

// ForThread annotates l with a thread id and, when set, a thread name.
func ForThread(l Logger, id int64, name string) Logger {
	if name == "" {
		return l.With(KeyThread, id)
	}
	return l.With(KeyThread, id, KeyName, name)
}

type adapter struct {
	l *slog.Logger // nil means slog.Default()
}

func (a *adapter) target() *slog.Logger {
	if a.l == nil {
		return slog.Default()
	}
	return a.l
}

func (a *adapter) Debug(ctx context.Context, msg string, args ...any) {
	a.target().DebugContext(ctx, msg, args...)
}

func (a *adapter) Info(ctx context.Context, msg string, args ...any) {
	a.target().InfoContext(ctx, msg, args...)
}

func (a *adapter) Warn(ctx context.Context, msg string, args ...any) {
	a.target().WarnContext(ctx, msg, args...)
}

func (a *adapter) Error(ctx context.Context, msg string, args ...any) {
	a.target().ErrorContext(ctx, msg, args...)
}

func (a *adapter) With(args ...any) Logger {
	return &adapter{l: a.target().With(args...)}
}
