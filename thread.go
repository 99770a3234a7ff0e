package threads

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"sync/atomic"

	"github.com/obinnaokechukwu/threads/internal/native"
	"github.com/obinnaokechukwu/threads/logging"
)

// Thread is a handle to a spawned thread.
//
// The spawner owns the handle and must call Free exactly once.
type Thread struct {
	id    int64
	name  string
	done  chan struct{}
	freed atomic.Bool
}

var liveThreads atomic.Int64

// LiveThreads returns the number of spawned threads that have not been freed.
func LiveThreads() int {
	return int(liveThreads.Load())
}

// SpawnOption configures Spawn.
type SpawnOption func(*spawnOptions)

type spawnOptions struct {
	ctx  context.Context
	name string
}

// WithName attaches a name to the thread's log records.
func WithName(name string) SpawnOption {
	return func(o *spawnOptions) {
		o.name = name
	}
}

// WithContext sets the parent of the context passed to the work unit. Only
// its values are used; cancelling it does not stop the thread.
func WithContext(ctx context.Context) SpawnOption {
	return func(o *spawnOptions) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// Spawn starts a new thread running unit and returns once the thread is
// running and its id is known.
//
// A unit that returns an error or panics is logged with the thread id and
// terminates only its own thread; Free reports nothing about it.
func Spawn(unit WorkUnit, opts ...SpawnOption) (*Thread, error) {
	if isNil(unit) {
		return nil, newError("Spawn", ErrInvalidArguments, 0, errNilUnit)
	}
	o := spawnOptions{ctx: context.Background()}
	for _, opt := range opts {
		opt(&o)
	}

	owned, err := capture(unit)
	if err != nil {
		return nil, newError("Spawn", ErrAllocationFailed, 0, err)
	}

	cfg := CurrentConfig()
	if !reserveThread(cfg.MaxThreads) {
		return nil, newError("Spawn", ErrThreadCreateFailed, 0,
			fmt.Errorf("limit of %d live threads reached", cfg.MaxThreads))
	}
	if cfg.LockOSThread {
		_ = native.Load()
	}

	t := &Thread{name: o.name, done: make(chan struct{})}
	started := make(chan struct{})
	go t.run(o.ctx, owned, cfg.LockOSThread, started)
	<-started
	return t, nil
}

func reserveThread(limit int) bool {
	for {
		n := liveThreads.Load()
		if limit > 0 && n >= int64(limit) {
			return false
		}
		if liveThreads.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

func (t *Thread) run(parent context.Context, unit WorkUnit, lockOS bool, started chan<- struct{}) {
	defer close(t.done)

	if lockOS {
		// Never unlocked: the OS thread exits together with this goroutine.
		runtime.LockOSThread()
		if id, ok := native.ThreadID(); ok {
			t.id = id
		}
	}
	if t.id == 0 {
		t.id = native.SyntheticThreadID()
	}

	log := logging.ForThread(Logger(), t.id, t.name)
	ctx := context.WithValue(parent, threadIDKey{}, t.id)
	ctx = context.WithValue(ctx, loggerKey{}, log)
	close(started)

	log.Debug(ctx, "thread started")
	err := runUnit(ctx, unit)
	var pe *PanicError
	switch {
	case errors.As(err, &pe):
		log.Error(ctx, "thread panic", "panic", fmt.Sprint(pe.Value), "stack", string(pe.Stack))
	case err != nil:
		log.Error(ctx, "thread failed", "err", err)
	default:
		log.Debug(ctx, "thread finished")
	}
}

func runUnit(ctx context.Context, unit WorkUnit) (err error) {
	defer recoverUnit(&err)
	return unit.Run(ctx)
}

// ID returns the OS id of the thread. On platforms without OS thread ids, or
// when Config.LockOSThread is false, it is a process-unique substitute.
func (t *Thread) ID() int64 {
	if t == nil {
		return 0
	}
	return t.id
}

// Name returns the name given with WithName.
func (t *Thread) Name() string {
	if t == nil {
		return ""
	}
	return t.name
}

// Done returns a channel closed when the work unit has returned.
func (t *Thread) Done() <-chan struct{} {
	return t.done
}

// Free blocks until the thread has finished and releases it. Freeing a
// thread twice returns an error matching ErrFreed.
func (t *Thread) Free() error {
	if t == nil {
		return newError("Thread.Free", ErrInvalidArguments, 0, errors.New("nil thread"))
	}
	if !t.freed.CompareAndSwap(false, true) {
		return newError("Thread.Free", ErrFreed, t.id, nil)
	}
	<-t.done
	liveThreads.Add(-1)
	return nil
}

// String returns "threads.Thread <id>" with the id in hex.
func (t *Thread) String() string {
	if t == nil {
		return "threads.Thread <nil>"
	}
	return fmt.Sprintf("threads.Thread <%x>", t.id)
}

func isNil(unit WorkUnit) bool {
	if unit == nil {
		return true
	}
	v := reflect.ValueOf(unit)
	switch v.Kind() {
	case reflect.Func, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}
