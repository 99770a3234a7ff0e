package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewWritesThroughSlog(t *testing.T) {
	var buf bytes.Buffer
	l := New(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	l.With("thread", 12).Error(context.Background(), "thread failed", "err", "boom")

	out := buf.String()
	for _, want := range []string{"thread failed", "thread=12", "err=boom", "level=ERROR"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestLevelsFiltered(t *testing.T) {
	var buf bytes.Buffer
	l := New(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))
	ctx := context.Background()

	l.Debug(ctx, "debug")
	l.Info(ctx, "info")
	l.Warn(ctx, "warn")

	out := buf.String()
	if strings.Contains(out, "msg=debug") || strings.Contains(out, "msg=info") {
		t.Errorf("records below warn were written: %q", out)
	}
	if !strings.Contains(out, "msg=warn") {
		t.Errorf("warn record missing: %q", out)
	}
}

func TestNilUsesDefault(t *testing.T) {
	if New(nil) == nil {
		t.Fatal("New(nil) returned nil")
	}
	// Must not panic.
	Discard().Info(context.Background(), "dropped")
}

func TestForThread(t *testing.T) {
	var buf bytes.Buffer
	base := New(slog.New(slog.NewTextHandler(&buf, nil)))
	ctx := context.Background()

	ForThread(base, 31, "").Info(ctx, "unnamed")
	ForThread(base, 32, "worker").Info(ctx, "named")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "thread=31") || strings.Contains(lines[0], "name=") {
		t.Errorf("unnamed record = %q", lines[0])
	}
	if !strings.Contains(lines[1], "thread=32") || !strings.Contains(lines[1], "name=worker") {
		t.Errorf("named record = %q", lines[1])
	}
}

func TestNilFollowsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	l := New(nil)
	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	l.Info(context.Background(), "late default")

	if !strings.Contains(buf.String(), "late default") {
		t.Errorf("record not written to the default set after New: %q", buf.String())
	}
}
