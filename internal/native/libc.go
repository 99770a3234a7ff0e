//go:build darwin && (amd64 || arm64) && !ios

package native

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/threads/internal/platform"
)

// ErrLibcNotFound is returned when no libc candidate could be opened.
var ErrLibcNotFound = errors.New("native: libc not found")

var (
	libc     uintptr
	loaded   bool
	loadErr  error
	loadMu   sync.Mutex
	libcPath string

	pthreadThreadIDNP func(thread uintptr, id *uint64) int32
)

// Load attempts to open libSystem and bind pthread_threadid_np.
// Returns nil if already loaded or if libc is not available: the native calls
// are optional and callers fall back to portable behaviour. Use LoadError for
// the reason a load did not happen.
func Load() error {
	loadMu.Lock()
	defer loadMu.Unlock()

	if loaded || loadErr != nil {
		return nil
	}

	var tried []string
	for _, path := range platform.LibcCandidates() {
		lib, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			tried = append(tried, fmt.Sprintf("%s: %v", path, err))
			continue
		}
		libc = lib
		libcPath = path
		break
	}
	if libc == 0 {
		loadErr = fmt.Errorf("%w (tried %s)", ErrLibcNotFound, strings.Join(tried, "; "))
		return nil
	}

	if err := registerBindings(); err != nil {
		loadErr = err
		return nil
	}
	loaded = true
	return nil
}

func registerBindings() error {
	// A zero thread argument selects the calling thread, so no
	// pthread_self round trip is needed.
	sym, err := purego.Dlsym(libc, "pthread_threadid_np")
	if err != nil {
		return fmt.Errorf("native: pthread_threadid_np: %w", err)
	}
	purego.RegisterFunc(&pthreadThreadIDNP, sym)
	return nil
}

// IsLoaded returns true if libc was successfully loaded.
func IsLoaded() bool {
	loadMu.Lock()
	defer loadMu.Unlock()
	return loaded
}

// LoadError returns the reason libc failed to load.
// Returns nil if libc loaded successfully or Load() hasn't been called.
func LoadError() error {
	loadMu.Lock()
	defer loadMu.Unlock()
	return loadErr
}

// Status returns a human-readable status of the libc bindings.
func Status() string {
	loadMu.Lock()
	defer loadMu.Unlock()

	if loaded {
		return fmt.Sprintf("loaded from %s", libcPath)
	}
	if loadErr != nil {
		return fmt.Sprintf("not loaded: %s", loadErr)
	}
	return "not loaded (Load() not called)"
}

func darwinThreadID() (int64, bool) {
	if !IsLoaded() || pthreadThreadIDNP == nil {
		return 0, false
	}
	var id uint64
	if rc := pthreadThreadIDNP(0, &id); rc != 0 {
		return 0, false
	}
	return int64(id), true
}
