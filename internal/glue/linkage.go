//go:build procrt_runtimeglue

package glue

import "unsafe"

// This file is adapted nearly line-for-line from the teacher's
// lib_runtime_linkage.go: it reaches into the Go runtime's own goroutine
// scheduler via //go:linkname to park and ready a goroutine without going
// through channels or the select/netpoller machinery. The teacher uses
// this to schedule ZenQ readers/writers with minimal latency; here it
// backs RuntimeGlue, the optional high-performance alternative to
// ChanGlue (see changlue.go and spec.md §4.4/§9).
//
// As in the teacher's own comment: this is unsupported surface and can
// break across Go point releases. It is built only behind the
// procrt_runtimeglue tag for exactly that reason.

//go:linkname getg runtime.getg
func getg() unsafe.Pointer

// GetG returns the current goroutine's runtime-internal g pointer.
func GetG() unsafe.Pointer { return getg() }

//go:linkname goready runtime.goready
func goready(gp unsafe.Pointer, traceskip int)

// GoReady resumes a goroutine previously parked with GoPark.
func GoReady(gp unsafe.Pointer, traceskip int) { goready(gp, traceskip) }

//go:linkname gopark runtime.gopark
func gopark(unlockf func(unsafe.Pointer, unsafe.Pointer) bool, lock unsafe.Pointer, reason waitReason, traceEv byte, traceskip int)

// GoPark parks the calling goroutine until a matching GoReady.
func GoPark(unlockf func(unsafe.Pointer, unsafe.Pointer) bool, lock unsafe.Pointer, reason waitReason, traceEv byte, traceskip int) {
	gopark(unlockf, lock, reason, traceEv, traceskip)
}

//go:linkname readgstatus runtime.readgstatus
func readgstatus(gp unsafe.Pointer) uint32

// Readgstatus reads a goroutine's scheduler status word.
func Readgstatus(gp unsafe.Pointer) uint32 { return readgstatus(gp) }

//go:linkname runtime_canSpin sync.runtime_canSpin
func runtime_canSpin(i int) bool

//go:linkname runtime_doSpin sync.runtime_doSpin
func runtime_doSpin()

type waitReason uint8

// waitReasonZero mirrors the teacher's unexported wait-reason table; only
// the zero value is used here since this glue does not participate in Go's
// own trace/profiling story.
const waitReasonZero waitReason = 0

// _Gwaiting mirrors runtime's internal g status constant for "parked,
// waiting to be ready()'d" (see runtime/runtime2.go upstream; the teacher
// copies the same constant in thread_parker.go/lib_runtime_linkage.go).
const _Gwaiting = 4

// alwaysUnlock is passed to GoPark as the unlock callback: this glue has
// no secondary lock to release once parking is committed (the teacher's
// Chanparkcommit plays the identical role for ZenQ's chan-shaped API).
func alwaysUnlock(unsafe.Pointer, unsafe.Pointer) bool { return true }
