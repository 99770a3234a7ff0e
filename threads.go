// Package threads provides OS threads that run one unit of work each, and
// mutexes and condition variables that are either private or shared by a
// numeric id.
//
// Two handles created with the same id refer to the same lock or condition,
// so unrelated parts of a program can rendezvous without passing the object
// around:
//
//	// goroutine A
//	m, _ := threads.NewMutexWithID(42)
//	defer m.Free()
//	m.Lock()
//
//	// goroutine B, elsewhere
//	m, _ := threads.NewMutexWithID(42)
//	defer m.Free()
//	m.Lock() // blocks until A unlocks
//
// The underlying primitive is reference counted and destroyed when the last
// handle for an id is freed. Handles created without an id get a private
// primitive that no id lookup can reach.
//
// Spawned threads swallow failures: a work unit that returns an error or
// panics is logged and terminates only its own thread.
package threads

import (
	"context"

	"github.com/obinnaokechukwu/threads/internal/native"
	"github.com/obinnaokechukwu/threads/internal/registry"
)

func init() {
	registry.Default.OnCreate = func(s registry.Stat) {
		Logger().Debug(context.Background(), "primitive created", "kind", s.Kind.String(), "id", s.ID, "private", s.Private)
	}
	registry.Default.OnDestroy = func(s registry.Stat) {
		Logger().Debug(context.Background(), "primitive destroyed", "kind", s.Kind.String(), "id", s.ID, "private", s.Private)
	}
}

// Init loads the optional libc bindings used for native thread handles.
// It is called lazily by Spawn and is safe to call multiple times. A missing
// libc is not an error; see NativeStatus.
func Init() error {
	return native.Load()
}

// NativeStatus returns a human-readable status of the libc bindings.
func NativeStatus() string {
	return native.Status()
}

// PrimitiveStat describes a live mutex or condition primitive.
type PrimitiveStat struct {
	Kind    string
	ID      int64
	Private bool
	Refs    int
}

// LivePrimitives returns every primitive that still has handles.
// Useful for leak checks.
func LivePrimitives() []PrimitiveStat {
	stats := registry.Default.Stats()
	out := make([]PrimitiveStat, len(stats))
	for i, s := range stats {
		out[i] = PrimitiveStat{Kind: s.Kind.String(), ID: s.ID, Private: s.Private, Refs: s.Refs}
	}
	return out
}
