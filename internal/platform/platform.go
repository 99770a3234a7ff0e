// Package platform provides platform detection for the native layer.
// It determines which libc to load and whether native thread calls are
// available based on the operating system and architecture. Linux reads
// thread ids through golang.org/x/sys and never loads libc.
package platform

import (
	"fmt"
	"runtime"
)

// SupportsNativeCalls indicates whether libc is loaded through purego.
// Only Darwin on amd64/arm64 is wired.
const SupportsNativeCalls = runtime.GOOS == "darwin" &&
	(runtime.GOARCH == "amd64" || runtime.GOARCH == "arm64")

// LibraryExtension is the file extension for shared libraries on this platform.
var LibraryExtension string

// LibraryPrefix is the prefix for shared library names on this platform.
var LibraryPrefix string

func init() {
	switch runtime.GOOS {
	case "darwin":
		LibraryExtension = ".dylib"
		LibraryPrefix = "lib"
	default: // linux, freebsd, etc.
		LibraryExtension = ".so"
		LibraryPrefix = "lib"
	}
}

// FormatLibraryName returns the platform-specific library filename.
// If version is 0, returns the unversioned library name.
//
// Examples:
//   - Linux:   FormatLibraryName("c", 6) -> "libc.so.6"
//   - macOS:   FormatLibraryName("System.B", 0) -> "libSystem.B.dylib"
func FormatLibraryName(name string, version int) string {
	switch runtime.GOOS {
	case "darwin":
		if version > 0 {
			return fmt.Sprintf("%s%s.%d%s", LibraryPrefix, name, version, LibraryExtension)
		}
		return fmt.Sprintf("%s%s%s", LibraryPrefix, name, LibraryExtension)
	default: // linux, freebsd
		if version > 0 {
			return fmt.Sprintf("%s%s%s.%d", LibraryPrefix, name, LibraryExtension, version)
		}
		return fmt.Sprintf("%s%s%s", LibraryPrefix, name, LibraryExtension)
	}
}

// LibcCandidates returns the libc paths to try, most specific first.
// The list is empty on platforms without native call support.
func LibcCandidates() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"/usr/lib/" + FormatLibraryName("System.B", 0)}
	default:
		return nil
	}
}
