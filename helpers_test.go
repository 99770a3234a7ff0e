package threads

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/obinnaokechukwu/threads/internal/native"
	"github.com/obinnaokechukwu/threads/internal/registry"
	"github.com/obinnaokechukwu/threads/logging"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// captureLogs routes package logging into a buffer for the rest of the test.
func captureLogs(t *testing.T) *syncBuffer {
	t.Helper()
	buf := &syncBuffer{}
	prev := Logger()
	SetLogger(logging.New(slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	t.Cleanup(func() { SetLogger(prev) })
	return buf
}

// requireNoLeaks checks that a test released every primitive and thread it
// created.
func requireNoLeaks(t *testing.T) {
	t.Helper()
	before := native.Live()
	threadsBefore := LiveThreads()
	t.Cleanup(func() {
		require.Empty(t, registry.Default.Stats(), "registry entries leaked")
		require.Equal(t, before, native.Live(), "native objects leaked")
		require.Equal(t, threadsBefore, LiveThreads(), "threads leaked")
	})
}

func mustMutex(t *testing.T, id int64) *Mutex {
	t.Helper()
	m, err := NewMutexWithID(id)
	require.NoError(t, err)
	return m
}

func mustCondition(t *testing.T, id int64) *Condition {
	t.Helper()
	c, err := NewConditionWithID(id)
	require.NoError(t, err)
	return c
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 5*time.Second, time.Millisecond)
}
