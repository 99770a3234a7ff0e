//go:build !darwin || !(amd64 || arm64) || ios

package native

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrLibcNotFound is returned when no libc candidate could be opened.
var ErrLibcNotFound = errors.New("native: libc not found")

// Only darwin needs libc for thread ids; linux reads them with gettid(2)
// directly, and calling libc through purego from a locked thread that later
// exits is not safe there.
var errUnsupported = fmt.Errorf("native: libc bindings not used on %s/%s", runtime.GOOS, runtime.GOARCH)

// Load is a no-op on this platform.
func Load() error { return nil }

// IsLoaded always returns false on this platform.
func IsLoaded() bool { return false }

// LoadError reports that libc bindings are not used.
func LoadError() error { return errUnsupported }

// Status returns a human-readable status of the libc bindings.
func Status() string { return "not used on " + runtime.GOOS }

func darwinThreadID() (int64, bool) { return 0, false }
