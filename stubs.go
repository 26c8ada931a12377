package procrt

import (
	"runtime"
	"unsafe"
)

// stubs.go implements the proc-side half of the generated-code ABI
// (spec.md §6): the small stub functions a real compiler's upcall codegen
// would emit before yielding. Hand-authored Program bodies (examples/*.go)
// call these directly instead of compiled equivalents, since code
// generation itself is out of scope (spec.md §1).

// callUpcall writes code and args into p's upcall area, zero-filling any
// unused trailing slots, sets state to CallingC, and yields via the
// runtime's Glue. It returns once the core has resumed p (after dispatch
// restored Running, or after a rendezvous completed while p was blocked).
func callUpcall(p *Proc, code uint32, args ...uintptr) {
	for i := 0; i < maxUpcallArgs; i++ {
		if i < len(args) {
			p.upcallArgs[i] = args[i]
		} else {
			p.upcallArgs[i] = 0
		}
	}
	p.upcallCode = code
	p.state = CallingC
	p.rt.glue.ProcToC(p)
}

// Yield cooperatively hands control back to the core without changing
// state, the "Running" branch of the main loop (spec.md §4.9:
// "Running: redispatch").
func Yield(p *Proc) {
	p.rt.glue.ProcToC(p)
}

// Exit sets the proc's state to Exiting and yields; the core frees it on
// its next turn through the main loop (spec.md §4.5: "Running → Exiting:
// proc writes Exiting and yields; the core frees it.").
func Exit(p *Proc) {
	p.clearUpcall()
	p.state = Exiting
	p.rt.glue.ProcToC(p)
}

// LogUint32 is upcall code 0 (spec.md §4.7).
func LogUint32(p *Proc, v uint32) {
	callUpcall(p, 0, uintptr(v))
}

// LogStr is upcall code 1. Go strings aren't C-strings, so this marshals
// s into a NUL-terminated byte buffer and passes its address — the one
// place a hand-authored stand-in for generated code has to do the
// marshaling a real string-literal codegen would have done already.
func LogStr(p *Proc, s string) {
	buf := append([]byte(s), 0)
	ptr := uintptr(unsafe.Pointer(&buf[0]))
	callUpcall(p, 1, ptr)
	runtime.KeepAlive(buf)
}

// Spawn is upcall code 2: create a new proc for program and return it.
// It does NOT enqueue the child into the runnable pool — see Sched.
func Spawn(p *Proc, program *Program) *Proc {
	var child uintptr
	outAddr := uintptr(unsafe.Pointer(&child))
	progAddr := uintptr(unsafe.Pointer(program))
	callUpcall(p, 2, outAddr, progAddr)
	return (*Proc)(unsafe.Pointer(child))
}

// CheckExpr is upcall code 3: if truthy is false, the proc's state is set
// to Exiting by the dispatcher (spec.md §7(e)).
func CheckExpr(p *Proc, truthy bool) {
	var v uintptr
	if truthy {
		v = 1
	}
	callUpcall(p, 3, v)
}

// Malloc is upcall code 4.
func Malloc(p *Proc, n uintptr) unsafe.Pointer {
	var out uintptr
	outAddr := uintptr(unsafe.Pointer(&out))
	callUpcall(p, 4, outAddr, n)
	return unsafe.Pointer(out)
}

// Free is upcall code 5.
func Free(p *Proc, ptr unsafe.Pointer) {
	callUpcall(p, 5, uintptr(ptr))
}

// NewPort is upcall code 6: allocate a port owned by p.
func NewPort(p *Proc) *Port {
	var out uintptr
	outAddr := uintptr(unsafe.Pointer(&out))
	callUpcall(p, 6, outAddr)
	return (*Port)(unsafe.Pointer(out))
}

// DelPort is upcall code 7.
func DelPort(p *Proc, port *Port) {
	callUpcall(p, 7, uintptr(unsafe.Pointer(port)))
}

// NewChan is upcall code 8: allocate a channel bound to port.
func NewChan(p *Proc, port *Port) *Channel {
	var out uintptr
	outAddr := uintptr(unsafe.Pointer(&out))
	callUpcall(p, 8, outAddr, uintptr(unsafe.Pointer(port)))
	return (*Channel)(unsafe.Pointer(out))
}

// DelChan is upcall code 9.
//
// NB: per the upcall ABI table (spec.md §4.7), del_chan's channel
// argument lives in arg1, not arg0 — an asymmetry spec.md §9 flags as
// possibly a source bug and this repo preserves unchanged (see
// DESIGN.md, "Open Question decisions" #1).
func DelChan(p *Proc, ch *Channel) {
	callUpcall(p, 9, 0, uintptr(unsafe.Pointer(ch)))
}

// Send is upcall code 10: block the caller writing and attempt rendezvous
// (spec.md §4.7/§4.8). The upcall table documents only arg0 (the channel);
// the value word rendezvous transfers is carried in arg1, matching
// rendezvous's own use of src.upcallArgs[1] (spec.md §4.8).
func Send(p *Proc, ch *Channel, value uintptr) {
	callUpcall(p, 10, uintptr(unsafe.Pointer(ch)), value)
}

// Recv is upcall code 11: block the caller reading and attempt rendezvous
// with a uniformly-chosen queued writer, returning the transferred word.
//
// NB: like DelChan, recv's port argument lives in arg1; arg0 is the
// destination word pointer the rendezvous engine writes through (spec.md
// §4.7/§4.8/§9).
func Recv(p *Proc, port *Port) uintptr {
	var dest uintptr
	destAddr := uintptr(unsafe.Pointer(&dest))
	callUpcall(p, 11, destAddr, uintptr(unsafe.Pointer(port)))
	return dest
}

// Sched is upcall code 12: enqueue a previously-constructed proc (from
// Spawn) into the runnable pool.
func Sched(p *Proc, child *Proc) {
	callUpcall(p, 12, uintptr(unsafe.Pointer(child)))
}
