package threads

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// The *Args constructors are the entry points for embedding layers such as
// script interpreters, which hand over untyped argument lists. Every argument
// count or type mismatch is reported as ErrInvalidArguments.

// NewMutexArgs creates a private mutex for zero arguments and a shared one for
// a single integer id.
func NewMutexArgs(args ...any) (*Mutex, error) {
	switch len(args) {
	case 0:
		return NewMutex()
	case 1:
		id, err := integerArg(args[0])
		if err != nil {
			return nil, newError("NewMutex", ErrInvalidArguments, 0, err)
		}
		return NewMutexWithID(id)
	default:
		return nil, newError("NewMutex", ErrInvalidArguments, 0,
			fmt.Errorf("expected 0 or 1 arguments, got %d", len(args)))
	}
}

// NewConditionArgs creates a private condition for zero arguments and a
// shared one for a single integer id.
func NewConditionArgs(args ...any) (*Condition, error) {
	switch len(args) {
	case 0:
		return NewCondition()
	case 1:
		id, err := integerArg(args[0])
		if err != nil {
			return nil, newError("NewCondition", ErrInvalidArguments, 0, err)
		}
		return NewConditionWithID(id)
	default:
		return nil, newError("NewCondition", ErrInvalidArguments, 0,
			fmt.Errorf("expected 0 or 1 arguments, got %d", len(args)))
	}
}

// SpawnArgs spawns a thread from a single callable argument: a WorkUnit,
// func(context.Context) error, func() error or func().
func SpawnArgs(args ...any) (*Thread, error) {
	if len(args) != 1 {
		return nil, newError("Spawn", ErrInvalidArguments, 0,
			fmt.Errorf("expected 1 argument, got %d", len(args)))
	}
	var unit WorkUnit
	switch fn := args[0].(type) {
	case WorkUnit:
		unit = fn
	case func(context.Context) error:
		unit = UnitFunc(fn)
	case func() error:
		if fn != nil {
			unit = UnitFunc(func(context.Context) error { return fn() })
		}
	case func():
		if fn != nil {
			unit = UnitFunc(func(context.Context) error { fn(); return nil })
		}
	default:
		return nil, newError("Spawn", ErrInvalidArguments, 0,
			fmt.Errorf("argument of type %T is not callable", args[0]))
	}
	return Spawn(unit)
}

// WaitArgs waits on c with a single *Mutex argument.
func WaitArgs(c *Condition, args ...any) error {
	if len(args) != 1 {
		return newError("Condition.Wait", ErrInvalidArguments, 0,
			fmt.Errorf("expected 1 argument, got %d", len(args)))
	}
	m, ok := args[0].(*Mutex)
	if !ok {
		return newError("Condition.Wait", ErrInvalidArguments, 0,
			fmt.Errorf("expected *threads.Mutex, got %T", args[0]))
	}
	return c.Wait(m)
}

// integerArg accepts the numeric forms a script layer may pass: any Go
// integer, a float with an integral value, or a decimal string.
func integerArg(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		return uintArg(uint64(n))
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		return uintArg(n)
	case float32:
		return floatArg(float64(n))
	case float64:
		return floatArg(n)
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(n), 0, 64)
		if err != nil {
			return 0, fmt.Errorf("id %q is not an integer", n)
		}
		return id, nil
	default:
		return 0, fmt.Errorf("id of type %T is not an integer", v)
	}
}

func uintArg(n uint64) (int64, error) {
	if n > math.MaxInt64 {
		return 0, fmt.Errorf("id %d overflows int64", n)
	}
	return int64(n), nil
}

func floatArg(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("id %v is not an integer", f)
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("id %v overflows int64", f)
	}
	return int64(f), nil
}
