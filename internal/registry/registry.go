// Package registry maps (kind, id) pairs to reference-counted native
// synchronization objects.
//
// Two handles acquired with the same shared id and kind receive the same
// Entry, and therefore the same native lock or condition. Private entries are
// allocated under ids drawn from a process-wide counter and live in their own
// scope, so a shared lookup can never reach them.
//
// The registry lock covers creation and destruction of native objects, so at
// most one object per (kind, scope, id) is ever live. It is never held while a
// caller blocks on the primitive itself, nor while OnCreate or OnDestroy run.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/obinnaokechukwu/threads/internal/native"
)

var (
	// ErrUnknownKind is returned for a Kind other than KindMutex or KindCondition.
	ErrUnknownKind = errors.New("registry: unknown primitive kind")

	// ErrNotRegistered is returned when releasing an entry that is no longer live.
	ErrNotRegistered = errors.New("registry: entry not registered")
)

// Kind selects which native object an entry holds.
type Kind uint8

const (
	KindMutex Kind = iota + 1
	KindCondition
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindMutex:
		return "mutex"
	case KindCondition:
		return "condition"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

func (k Kind) valid() bool {
	return k == KindMutex || k == KindCondition
}

type key struct {
	kind    Kind
	private bool
	id      int64
}

// Entry is one live native object and its reference count.
// Exactly one of Lock and Cond is set, according to Kind.
type Entry struct {
	ID      int64
	Kind    Kind
	Private bool

	Lock *native.Lock
	Cond *native.Cond

	refs int // guarded by Registry.mu
}

// Stat describes a live entry.
type Stat struct {
	ID      int64
	Kind    Kind
	Private bool
	Refs    int
}

// Registry is a table of live entries. The zero value is not usable; use New.
type Registry struct {
	mu          sync.Mutex
	entries     map[key]*Entry
	nextPrivate int64

	// OnCreate and OnDestroy, when set, are called outside the lock after an
	// entry's native object is created or destroyed.
	OnCreate  func(Stat)
	OnDestroy func(Stat)
}

// Default is the process-wide registry used by the public API.
var Default = New()

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		entries:     make(map[key]*Entry),
		nextPrivate: 1,
	}
}

func newObject(e *Entry) {
	switch e.Kind {
	case KindMutex:
		e.Lock = native.NewLock()
	case KindCondition:
		e.Cond = native.NewCond()
	}
}

func destroyObject(e *Entry) error {
	switch e.Kind {
	case KindMutex:
		return e.Lock.Destroy()
	case KindCondition:
		return e.Cond.Destroy()
	}
	return ErrUnknownKind
}

// Acquire returns the shared entry for (id, kind), creating it with one
// reference if absent and adding a reference otherwise.
func (r *Registry) Acquire(id int64, kind Kind) (*Entry, error) {
	if !kind.valid() {
		return nil, ErrUnknownKind
	}
	k := key{kind: kind, id: id}

	r.mu.Lock()
	if e, ok := r.entries[k]; ok {
		e.refs++
		r.mu.Unlock()
		return e, nil
	}
	e := &Entry{ID: id, Kind: kind, refs: 1}
	newObject(e)
	r.entries[k] = e
	st := e.stat()
	r.mu.Unlock()

	if r.OnCreate != nil {
		r.OnCreate(st)
	}
	return e, nil
}

// AcquirePrivate creates a new entry under a fresh private id.
// Private ids are never reused.
func (r *Registry) AcquirePrivate(kind Kind) (*Entry, error) {
	if !kind.valid() {
		return nil, ErrUnknownKind
	}

	r.mu.Lock()
	id := r.nextPrivate
	r.nextPrivate++
	e := &Entry{ID: id, Kind: kind, Private: true, refs: 1}
	newObject(e)
	r.entries[key{kind: kind, private: true, id: id}] = e
	st := e.stat()
	r.mu.Unlock()

	if r.OnCreate != nil {
		r.OnCreate(st)
	}
	return e, nil
}

// Release drops one reference. When the count reaches zero the entry is
// removed and its native object destroyed.
func (r *Registry) Release(e *Entry) error {
	if e == nil {
		return ErrNotRegistered
	}
	k := key{kind: e.Kind, private: e.Private, id: e.ID}

	r.mu.Lock()
	cur, ok := r.entries[k]
	if !ok || cur != e {
		r.mu.Unlock()
		return ErrNotRegistered
	}
	e.refs--
	if e.refs > 0 {
		r.mu.Unlock()
		return nil
	}
	delete(r.entries, k)
	// Destroy only closes channels; woken waiters re-enter the registry
	// after the lock is released.
	err := destroyObject(e)
	st := e.stat()
	r.mu.Unlock()

	if r.OnDestroy != nil {
		r.OnDestroy(st)
	}
	return err
}

// Refs returns the reference count of the shared entry (id, kind), or 0.
func (r *Registry) Refs(id int64, kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[key{kind: kind, id: id}]; ok {
		return e.refs
	}
	return 0
}

// Lookup returns the shared entry for (id, kind) without taking a reference.
func (r *Registry) Lookup(id int64, kind Kind) *Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[key{kind: kind, id: id}]
}

// Len returns the number of live entries of all kinds.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Count returns the number of live entries of one kind.
func (r *Registry) Count(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for k := range r.entries {
		if k.kind == kind {
			n++
		}
	}
	return n
}

// Stats returns every live entry ordered by kind, scope and id.
func (r *Registry) Stats() []Stat {
	r.mu.Lock()
	out := make([]Stat, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.stat())
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Private != b.Private {
			return !a.Private
		}
		return a.ID < b.ID
	})
	return out
}

func (e *Entry) stat() Stat {
	return Stat{ID: e.ID, Kind: e.Kind, Private: e.Private, Refs: e.refs}
}
