package threads

import (
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/obinnaokechukwu/threads/internal/registry"
)

// Mutex is a handle to a non-reentrant lock.
//
// Handles created by NewMutexWithID with the same id share one lock. Handles
// created by NewMutex each own a private lock. Locking the same lock twice
// from one goroutine deadlocks. Any goroutine may unlock a held lock.
type Mutex struct {
	entry *registry.Entry
	freed atomic.Bool
}

// NewMutex creates a private mutex with a fresh, never reused id.
func NewMutex() (*Mutex, error) {
	e, err := registry.Default.AcquirePrivate(registry.KindMutex)
	if err != nil {
		return nil, newError("NewMutex", ErrAllocationFailed, 0, err)
	}
	return newMutex(e), nil
}

// NewMutexWithID returns a handle to the shared mutex id, creating the
// mutex if no other live handle refers to it.
func NewMutexWithID(id int64) (*Mutex, error) {
	e, err := registry.Default.Acquire(id, registry.KindMutex)
	if err != nil {
		return nil, newError("NewMutex", ErrAllocationFailed, id, err)
	}
	return newMutex(e), nil
}

func newMutex(e *registry.Entry) *Mutex {
	m := &Mutex{entry: e}
	runtime.SetFinalizer(m, func(m *Mutex) { _ = m.Free() })
	return m
}

// ID returns the mutex id: the caller's id for shared mutexes, an assigned
// one for private mutexes.
func (m *Mutex) ID() int64 {
	if m == nil {
		return 0
	}
	return m.entry.ID
}

// Shared reports whether the mutex was created with an id.
func (m *Mutex) Shared() bool {
	return m != nil && !m.entry.Private
}

func (m *Mutex) live(op string, kind error) (*registry.Entry, error) {
	if m == nil {
		return nil, newError(op, ErrInvalidArguments, 0, errors.New("nil mutex"))
	}
	if m.freed.Load() {
		return nil, newError(op, kind, m.entry.ID, ErrFreed)
	}
	return m.entry, nil
}

// Lock blocks until the mutex is acquired through any handle sharing its id.
func (m *Mutex) Lock() error {
	e, err := m.live("Mutex.Lock", ErrLockFailed)
	if err != nil {
		return err
	}
	err = e.Lock.Lock()
	runtime.KeepAlive(m)
	if err != nil {
		return newError("Mutex.Lock", ErrLockFailed, e.ID, err)
	}
	return nil
}

// TryLock acquires the mutex if it is free and reports whether it did.
func (m *Mutex) TryLock() (bool, error) {
	e, err := m.live("Mutex.TryLock", ErrLockFailed)
	if err != nil {
		return false, err
	}
	ok, err := e.Lock.TryLock()
	if err != nil {
		return false, newError("Mutex.TryLock", ErrLockFailed, e.ID, err)
	}
	return ok, nil
}

// Unlock releases the mutex. It fails with ErrUnlockFailed if the mutex is
// not locked.
func (m *Mutex) Unlock() error {
	e, err := m.live("Mutex.Unlock", ErrUnlockFailed)
	if err != nil {
		return err
	}
	if err := e.Lock.Unlock(); err != nil {
		return newError("Mutex.Unlock", ErrUnlockFailed, e.ID, err)
	}
	return nil
}

// Free releases this handle. The lock itself is destroyed when the last
// handle for its id is freed. Free is idempotent; other methods fail with
// ErrFreed afterwards.
func (m *Mutex) Free() error {
	if m == nil || !m.freed.CompareAndSwap(false, true) {
		return nil
	}
	runtime.SetFinalizer(m, nil)
	if err := registry.Default.Release(m.entry); err != nil {
		return newError("Mutex.Free", ErrFreed, m.entry.ID, err)
	}
	return nil
}

// String returns "threads.Mutex <id>" with the id in hex. Like ID and Shared
// it is safe on a nil handle.
func (m *Mutex) String() string {
	if m == nil {
		return "threads.Mutex <nil>"
	}
	return fmt.Sprintf("threads.Mutex <%x>", m.entry.ID)
}
