//go:build linux

package native

import "golang.org/x/sys/unix"

func osThreadID() (int64, bool) {
	return int64(unix.Gettid()), true
}
