package native

import (
	"runtime"
	"sync"
	"testing"
)

func TestThreadIDStableWhileLocked(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	id1, ok1 := ThreadID()
	id2, ok2 := ThreadID()
	if ok1 != ok2 {
		t.Fatalf("ThreadID availability changed: %v then %v", ok1, ok2)
	}
	if !ok1 {
		t.Skipf("no OS thread ids on %s/%s", runtime.GOOS, runtime.GOARCH)
	}
	if id1 <= 0 {
		t.Errorf("ThreadID = %d, want > 0", id1)
	}
	if id1 != id2 {
		t.Errorf("ThreadID changed on a locked thread: %d then %d", id1, id2)
	}
}

func TestThreadIDDiffersAcrossThreads(t *testing.T) {
	if _, ok := ThreadID(); !ok {
		t.Skip("no OS thread ids on this platform")
	}
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	mine, _ := ThreadID()

	other := make(chan int64)
	go func() {
		runtime.LockOSThread()
		// Exiting while locked terminates the thread.
		id, _ := ThreadID()
		other <- id
	}()
	if theirs := <-other; theirs == mine {
		t.Errorf("two locked goroutines reported the same thread id %d", mine)
	}
}

func TestSyntheticThreadIDUnique(t *testing.T) {
	seen := make(map[int64]bool)
	for i := 0; i < 1000; i++ {
		id := SyntheticThreadID()
		if seen[id] {
			t.Fatalf("synthetic id %d returned twice", id)
		}
		seen[id] = true
	}
}

func TestThreadIDOnExitingLockedThreads(t *testing.T) {
	if err := Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	const n = 20
	ids := make(chan int64, n)
	release := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runtime.LockOSThread()
			// Never unlocked: the thread exits with the goroutine.
			id, _ := ThreadID()
			ids <- id
			<-release
		}()
	}

	seen := make(map[int64]bool)
	for i := 0; i < n; i++ {
		seen[<-ids] = true
	}
	close(release)
	wg.Wait()

	if _, ok := ThreadID(); ok && len(seen) != n {
		t.Errorf("%d live locked threads reported %d distinct ids", n, len(seen))
	}
}
