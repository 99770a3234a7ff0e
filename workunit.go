package threads

import (
	"context"
	"errors"

	"github.com/obinnaokechukwu/threads/logging"
)

// WorkUnit is the code a spawned thread runs. Run is called exactly once, on
// the new thread. The context carries the thread id and a logger; it is never
// cancelled by this package.
type WorkUnit interface {
	Run(ctx context.Context) error
}

// UnitFunc adapts a function to WorkUnit.
type UnitFunc func(ctx context.Context) error

// Run calls f(ctx).
func (f UnitFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Cloner is implemented by work units that carry mutable state. Spawn runs
// the clone, so the caller may reuse or modify its own value right away.
type Cloner interface {
	Clone() (WorkUnit, error)
}

var errNilUnit = errors.New("nil work unit")

func capture(unit WorkUnit) (WorkUnit, error) {
	c, ok := unit.(Cloner)
	if !ok {
		return unit, nil
	}
	owned, err := c.Clone()
	if err != nil {
		return nil, err
	}
	if owned == nil {
		return nil, errNilUnit
	}
	return owned, nil
}

type (
	threadIDKey struct{}
	loggerKey   struct{}
)

// ThreadIDFromContext returns the id of the thread running a work unit.
func ThreadIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(threadIDKey{}).(int64)
	return id, ok
}

// LoggerFromContext returns the logger of the thread running a work unit,
// already annotated with the thread id, or the package logger.
func LoggerFromContext(ctx context.Context) logging.Logger {
	if l, ok := ctx.Value(loggerKey{}).(logging.Logger); ok {
		return l
	}
	return Logger()
}
