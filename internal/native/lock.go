// Package native implements the synchronization objects that back shared and
// private primitives, plus OS thread identity.
//
// A Lock is a single-token semaphore rather than a sync.Mutex: unlocking an
// unlocked sync.Mutex is a fatal runtime error, while a Lock reports it as
// ErrNotLocked so callers get a recoverable error value. A Cond keeps an
// explicit FIFO of waiters so that a waiter is registered before the lock it
// waits with is released.
//
// Every object is counted from creation until Destroy; Live reports the
// counts so tests can check that nothing leaks.
package native

import (
	"errors"
	"sync"
	"sync/atomic"
)

var (
	// ErrNotLocked is returned when unlocking or waiting with a lock that is not held.
	ErrNotLocked = errors.New("native: lock is not held")

	// ErrDestroyed is returned for operations on a destroyed object.
	ErrDestroyed = errors.New("native: object destroyed")

	// ErrNilLock is returned when a condition is waited on with a nil lock.
	ErrNilLock = errors.New("native: nil lock")
)

var (
	liveLocks atomic.Int64
	liveConds atomic.Int64
)

// Stats reports native objects that were created and not yet destroyed.
type Stats struct {
	Locks int64
	Conds int64
}

// Live returns the current native object counts.
func Live() Stats {
	return Stats{Locks: liveLocks.Load(), Conds: liveConds.Load()}
}

// Lock is a non-reentrant mutual exclusion lock.
//
// The zero value is not usable; create locks with NewLock.
type Lock struct {
	sem  chan struct{} // holds one token while locked
	dead chan struct{}
	once sync.Once
}

// NewLock returns an unlocked Lock.
func NewLock() *Lock {
	liveLocks.Add(1)
	return &Lock{
		sem:  make(chan struct{}, 1),
		dead: make(chan struct{}),
	}
}

// Lock blocks until the lock is acquired. It fails only if the lock is
// destroyed before or while waiting.
func (l *Lock) Lock() error {
	select {
	case <-l.dead:
		return ErrDestroyed
	default:
	}
	select {
	case l.sem <- struct{}{}:
		return nil
	case <-l.dead:
		return ErrDestroyed
	}
}

// TryLock acquires the lock if it is free and reports whether it did.
func (l *Lock) TryLock() (bool, error) {
	select {
	case <-l.dead:
		return false, ErrDestroyed
	default:
	}
	select {
	case l.sem <- struct{}{}:
		return true, nil
	default:
		return false, nil
	}
}

// Unlock releases the lock. Any goroutine may unlock a held lock.
func (l *Lock) Unlock() error {
	select {
	case <-l.dead:
		return ErrDestroyed
	default:
	}
	select {
	case <-l.sem:
		return nil
	default:
		return ErrNotLocked
	}
}

// Locked reports whether the lock is currently held.
func (l *Lock) Locked() bool {
	return len(l.sem) == 1
}

// Destroy releases the lock. Goroutines blocked in Lock return ErrDestroyed.
// A second Destroy returns ErrDestroyed.
func (l *Lock) Destroy() error {
	err := ErrDestroyed
	l.once.Do(func() {
		close(l.dead)
		liveLocks.Add(-1)
		err = nil
	})
	return err
}
