package threads

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// Error kinds. Every operation failure matches exactly one of these with
// errors.Is.
var (
	// ErrAllocationFailed indicates backing state could not be allocated or
	// a work unit could not be copied.
	ErrAllocationFailed = errors.New("threads: allocation failed")

	// ErrThreadCreateFailed indicates a thread could not be started.
	ErrThreadCreateFailed = errors.New("threads: thread creation failed")

	// ErrLockFailed indicates a mutex could not be locked.
	ErrLockFailed = errors.New("threads: mutex lock failed")

	// ErrUnlockFailed indicates a mutex was not held or could not be unlocked.
	ErrUnlockFailed = errors.New("threads: mutex unlock failed")

	// ErrWaitFailed indicates a condition wait failed.
	ErrWaitFailed = errors.New("threads: condition wait failed")

	// ErrSignalFailed indicates a condition could not be signalled.
	ErrSignalFailed = errors.New("threads: condition signal failed")

	// ErrInvalidArguments indicates a wrong argument count or type.
	ErrInvalidArguments = errors.New("threads: invalid arguments")

	// ErrFreed indicates the handle has already been freed.
	ErrFreed = errors.New("threads: handle already freed")
)

// Error is a failed operation on a thread, mutex or condition.
type Error struct {
	Op   string // Operation that failed, e.g. "Mutex.Lock"
	Kind error  // One of the Err* kinds above
	ID   int64  // Handle id, 0 if none
	Err  error  // Underlying cause, may be nil
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%v [%s <%x>]", e.Kind, e.Op, e.ID)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(op string, kind error, id int64, cause error) error {
	return &Error{Op: op, Kind: kind, ID: id, Err: cause}
}

// PanicError is reported when a work unit panics.
type PanicError struct {
	Value any
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

func recoverUnit(err *error) {
	if r := recover(); r != nil {
		*err = &PanicError{Value: r, Stack: debug.Stack()}
	}
}
