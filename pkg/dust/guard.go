package dust

import (
	"runtime"
	"sync/atomic"
)

// spinGuard is the single exclusive lock protecting both bad-block lists and
// their counters. The mapping hot path acquires it on every consulted I/O, so
// critical sections must stay short and must not allocate, sleep, or block on
// anything other than the guard itself.
//
// It is a plain CAS spin lock rather than a sync.Mutex: critical sections are
// a single tree search, insert, or erase, or the O(1) detach phase of a bulk
// clear, so spinning briefly beats parking a goroutine.
type spinGuard struct {
	state atomic.Int32
}

// lock acquires the guard, spinning until it is free. Gosched between
// attempts so waiters do not starve the holder on a busy scheduler.
func (g *spinGuard) lock() {
	for !g.state.CompareAndSwap(0, 1) {
		runtime.Gosched()
	}
}

// unlock releases the guard. Store, not CAS: only the holder releases.
func (g *spinGuard) unlock() {
	g.state.Store(0)
}
