package threads

import (
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/obinnaokechukwu/threads/internal/registry"
)

// Condition is a handle to a condition variable, used with a Mutex.
//
// Ids live in their own namespace: Condition 7 and Mutex 7 are unrelated.
type Condition struct {
	entry *registry.Entry
	freed atomic.Bool
}

// NewCondition creates a private condition with a fresh, never reused id.
func NewCondition() (*Condition, error) {
	e, err := registry.Default.AcquirePrivate(registry.KindCondition)
	if err != nil {
		return nil, newError("NewCondition", ErrAllocationFailed, 0, err)
	}
	return newCondition(e), nil
}

// NewConditionWithID returns a handle to the shared condition id, creating
// it if no other live handle refers to it.
func NewConditionWithID(id int64) (*Condition, error) {
	e, err := registry.Default.Acquire(id, registry.KindCondition)
	if err != nil {
		return nil, newError("NewCondition", ErrAllocationFailed, id, err)
	}
	return newCondition(e), nil
}

func newCondition(e *registry.Entry) *Condition {
	c := &Condition{entry: e}
	runtime.SetFinalizer(c, func(c *Condition) { _ = c.Free() })
	return c
}

// ID returns the condition id.
func (c *Condition) ID() int64 {
	if c == nil {
		return 0
	}
	return c.entry.ID
}

// Shared reports whether the condition was created with an id.
func (c *Condition) Shared() bool {
	return c != nil && !c.entry.Private
}

func (c *Condition) live(op string, kind error) (*registry.Entry, error) {
	if c == nil {
		return nil, newError(op, ErrInvalidArguments, 0, errors.New("nil condition"))
	}
	if c.freed.Load() {
		return nil, newError(op, kind, c.entry.ID, ErrFreed)
	}
	return c.entry, nil
}

// Wait atomically unlocks m, blocks until signalled, and locks m again before
// returning. The caller must hold m. Wakeups may be spurious, so callers
// re-check their predicate in a loop:
//
//	m.Lock()
//	for !ready {
//	    c.Wait(m)
//	}
//	m.Unlock()
func (c *Condition) Wait(m *Mutex) error {
	e, err := c.live("Condition.Wait", ErrWaitFailed)
	if err != nil {
		return err
	}
	if m == nil {
		return newError("Condition.Wait", ErrInvalidArguments, e.ID, errors.New("nil mutex"))
	}
	me, err := m.live("Condition.Wait", ErrWaitFailed)
	if err != nil {
		return err
	}
	err = e.Cond.Wait(me.Lock)
	// Both handles must outlive the wait, or a finalizer could free them.
	runtime.KeepAlive(c)
	runtime.KeepAlive(m)
	if err != nil {
		return newError("Condition.Wait", ErrWaitFailed, e.ID, err)
	}
	return nil
}

// Signal wakes one waiter. It does nothing if there are no waiters.
func (c *Condition) Signal() error {
	e, err := c.live("Condition.Signal", ErrSignalFailed)
	if err != nil {
		return err
	}
	if err := e.Cond.Signal(); err != nil {
		return newError("Condition.Signal", ErrSignalFailed, e.ID, err)
	}
	return nil
}

// Broadcast wakes every waiter.
func (c *Condition) Broadcast() error {
	e, err := c.live("Condition.Broadcast", ErrSignalFailed)
	if err != nil {
		return err
	}
	if err := e.Cond.Broadcast(); err != nil {
		return newError("Condition.Broadcast", ErrSignalFailed, e.ID, err)
	}
	return nil
}

// Waiters returns the number of goroutines blocked in Wait on this
// condition through any handle. It is 0 for a nil or freed handle.
func (c *Condition) Waiters() int {
	if c == nil || c.freed.Load() {
		return 0
	}
	return c.entry.Cond.Waiters()
}

// Free releases this handle; the condition is destroyed with its last
// handle, waking any remaining waiters with ErrWaitFailed. Free is
// idempotent.
func (c *Condition) Free() error {
	if c == nil || !c.freed.CompareAndSwap(false, true) {
		return nil
	}
	runtime.SetFinalizer(c, nil)
	if err := registry.Default.Release(c.entry); err != nil {
		return newError("Condition.Free", ErrFreed, c.entry.ID, err)
	}
	return nil
}

// String returns "threads.Condition <id>" with the id in hex.
func (c *Condition) String() string {
	if c == nil {
		return "threads.Condition <nil>"
	}
	return fmt.Sprintf("threads.Condition <%x>", c.entry.ID)
}
