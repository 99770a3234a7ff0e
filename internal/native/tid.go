package native

import "sync/atomic"

var syntheticTID atomic.Int64

// ThreadID returns the OS id of the thread running the caller and whether the
// platform provides one. The goroutine must be locked to its thread with
// runtime.LockOSThread for the value to stay meaningful.
func ThreadID() (int64, bool) {
	return osThreadID()
}

// SyntheticThreadID returns a process-unique id for platforms without OS
// thread ids. Values are never reused.
func SyntheticThreadID() int64 {
	return syntheticTID.Add(1)
}
