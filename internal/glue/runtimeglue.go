//go:build procrt_runtimeglue

package glue

import (
	"sync"
	"sync/atomic"
	"unsafe"
)

// RuntimeGlue is the optional, high-performance Glue implementation
// adapted from the teacher's lib_runtime_linkage.go + thread_parker.go:
// instead of a channel handoff (ChanGlue), it parks and readies the host
// goroutines behind the scheduler loop and a proc's body directly via
// runtime.gopark/runtime.goready, the same trade the teacher makes for
// ZenQ's Read/Write path. Enable with -tags procrt_runtimeglue.
type RuntimeGlue struct{}

// gpair holds the runtime g pointers for one proc's two sides of the
// handoff: the goroutine running the proc's body, and whichever goroutine
// most recently called CToProc for it (normally the single scheduler
// goroutine, but keyed per-proc so the zero value is always safe).
type gpair struct {
	proc  atomic.Pointer[unsafe.Pointer]
	sched atomic.Pointer[unsafe.Pointer]
}

var (
	gpairsMu sync.Mutex
	gpairs   = map[Switchable]*gpair{}
)

func pairFor(p Switchable) *gpair {
	gpairsMu.Lock()
	defer gpairsMu.Unlock()
	gp, ok := gpairs[p]
	if !ok {
		gp = &gpair{}
		gpairs[p] = gp
	}
	return gp
}

// readyWhenParked spins until target has actually reached _Gwaiting (a
// goroutine that calls GoPark does not transition atomically with the
// call returning to its caller) before waking it, exactly as the
// teacher's ThreadParker.Ready loop does.
func readyWhenParked(target unsafe.Pointer) {
	iter := 0
	for Readgstatus(target) != _Gwaiting {
		if runtime_canSpin(iter) {
			iter++
			runtime_doSpin()
		}
	}
	GoReady(target, 1)
}

// CToProc starts p's body on first entry (recording its g pointer once
// the goroutine is alive), or readies it directly if already started, then
// parks the calling (scheduler) goroutine until ProcToC readies it back.
func (RuntimeGlue) CToProc(p Switchable) {
	pair := pairFor(p)

	if !p.Started() {
		p.SetStarted(true)
		started := make(chan struct{})
		go func() {
			g := GetG()
			pair.proc.Store(&g)
			close(started)
			p.RunBody()
		}()
		<-started
	} else {
		readyWhenParked(*pair.proc.Load())
	}

	self := GetG()
	pair.sched.Store(&self)
	GoPark(alwaysUnlock, nil, waitReasonZero, 0, 0)
}

// ProcToC hands control back to the parked scheduler goroutine and parks
// the calling proc-body goroutine until the next CToProc readies it.
// Must be called from within the proc's own body goroutine.
func (RuntimeGlue) ProcToC(p Switchable) {
	pair := pairFor(p)
	readyWhenParked(*pair.sched.Load())

	self := GetG()
	pair.proc.Store(&self)
	GoPark(alwaysUnlock, nil, waitReasonZero, 0, 0)
}
