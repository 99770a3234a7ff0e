package native

import "sync"

type waiter struct {
	ch        chan struct{}
	destroyed bool // set under Cond.mu before ch is closed
}

// Cond is a condition variable used together with a Lock.
type Cond struct {
	mu      sync.Mutex
	waiters []*waiter
	dead    bool
}

// NewCond returns a condition with no waiters.
func NewCond() *Cond {
	liveConds.Add(1)
	return &Cond{}
}

// Wait releases l, blocks until the condition is signalled and re-acquires l
// before returning. The caller must hold l.
//
// The waiter is queued before l is released, so a Signal issued by a goroutine
// that acquires l after this call releases it is never lost. If the condition
// is destroyed while waiting, Wait still re-acquires l and returns
// ErrDestroyed.
func (c *Cond) Wait(l *Lock) error {
	if l == nil {
		return ErrNilLock
	}
	if !l.Locked() {
		return ErrNotLocked
	}

	c.mu.Lock()
	if c.dead {
		c.mu.Unlock()
		return ErrDestroyed
	}
	w := &waiter{ch: make(chan struct{})}
	c.waiters = append(c.waiters, w)
	c.mu.Unlock()

	if err := l.Unlock(); err != nil {
		c.remove(w)
		return err
	}

	<-w.ch

	if err := l.Lock(); err != nil {
		return err
	}
	c.mu.Lock()
	destroyed := w.destroyed
	c.mu.Unlock()
	if destroyed {
		return ErrDestroyed
	}
	return nil
}

// Signal wakes the oldest waiter, if any.
func (c *Cond) Signal() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dead {
		return ErrDestroyed
	}
	if len(c.waiters) == 0 {
		return nil
	}
	w := c.waiters[0]
	c.waiters[0] = nil
	c.waiters = c.waiters[1:]
	close(w.ch)
	return nil
}

// Broadcast wakes every waiter.
func (c *Cond) Broadcast() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dead {
		return ErrDestroyed
	}
	for _, w := range c.waiters {
		close(w.ch)
	}
	c.waiters = nil
	return nil
}

// Waiters returns the number of goroutines blocked in Wait.
func (c *Cond) Waiters() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters)
}

// Destroy wakes all waiters with ErrDestroyed and releases the condition.
// A second Destroy returns ErrDestroyed.
func (c *Cond) Destroy() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dead {
		return ErrDestroyed
	}
	c.dead = true
	for _, w := range c.waiters {
		w.destroyed = true
		close(w.ch)
	}
	c.waiters = nil
	liveConds.Add(-1)
	return nil
}

func (c *Cond) remove(w *waiter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, cur := range c.waiters {
		if cur == w {
			c.waiters = append(c.waiters[:i], c.waiters[i+1:]...)
			return
		}
	}
}
