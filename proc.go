package procrt

import (
	"unsafe"

	"github.com/pkg/errors"
)

// ProcState is one of the five states a proc can occupy (spec.md §4.5,
// §6). The numeric values match the ABI table in spec.md §6 exactly:
// running is deliberately 0 so generated code can signal any non-running
// transition with a bitwise OR against 0.
type ProcState uint32

const (
	Running ProcState = iota
	CallingC
	Exiting
	BlockedReading
	BlockedWriting
)

func (s ProcState) String() string {
	switch s {
	case Running:
		return "running"
	case CallingC:
		return "calling_c"
	case Exiting:
		return "exiting"
	case BlockedReading:
		return "blocked_reading"
	case BlockedWriting:
		return "blocked_writing"
	default:
		return "unknown"
	}
}

// isBlocked reports whether s belongs to the blocked pool (spec.md §3
// invariant (iii)).
func (s ProcState) isBlocked() bool {
	return s == BlockedReading || s == BlockedWriting
}

// maxUpcallArgs is the fixed width of a proc's upcall argument area
// (spec.md §3: "fixed-size array of up to 8 upcall argument words").
const maxUpcallArgs = 8

// Proc is a lightweight cooperative task: it owns a stack, an
// upcall-argument area, a saved stack pointer, and a state (spec.md §3).
//
// The first seven fields below mirror the generated-code ABI of spec.md
// §6 in both name and order (runtime pointer, stack segment pointer,
// program pointer, saved PC, saved SP, state, refcount); real generated
// prologues would address them by word offset rather than by field name.
type Proc struct {
	rt       *Runtime
	seg      *stackSegment
	program  *Program
	savedPC  uintptr
	savedSP  uintptr
	state    ProcState
	refcount int32

	idx int // position within the pool vector that currently owns this proc

	upcallCode uint32
	upcallArgs [maxUpcallArgs]uintptr

	// Accounting fields, carried but not enforced by the core (spec.md §3).
	memBudget, memUsed   int64
	tickBudget, tickUsed int64

	glueState procGlueState
}

// Idx and SetIdx implement Indexed so Proc can live in a PointerVector.
func (p *Proc) Idx() int      { return p.idx }
func (p *Proc) SetIdx(i int)  { p.idx = i }

// procGlueState is the context-switch bookkeeping a Glue implementation
// needs per proc; it is opaque to everything outside internal/glue's
// sibling accessors in glue_bridge.go.
type procGlueState struct {
	resume chan struct{}
	yield  chan struct{}
	body   func(*Proc)
	started bool
}

// newProc allocates a proc record, obtains a stack segment, and records the
// initial stack top via writeInitialFrame; no machine frame is laid into
// the segment. The first context switch into the proc runs body. The proc
// is initialized in Running state.
func newProc(rt *Runtime, program *Program, body func(*Proc)) (*Proc, error) {
	if program == nil {
		return nil, errors.New("procrt: newProc requires a non-nil program")
	}
	seg := rt.segPool.Get()
	p := &Proc{
		rt:      rt,
		seg:     seg,
		program: program,
		state:   Running,
		idx:     -1,
	}
	p.writeInitialFrame()
	p.glueState = procGlueState{
		resume: make(chan struct{}),
		yield:  make(chan struct{}),
		body:   body,
	}
	return p, nil
}

// writeInitialFrame computes the top-of-stack SP (the offset of the last
// word-sized cell of the segment body, masked down to 16-byte alignment)
// and stores it in savedSP, with savedPC left at zero. The real two-PC
// synthetic frame layout of spec.md §4.3 is a property of the
// generated-code ABI (out of scope here per spec.md §1), so no frame is
// written into the body. savedPC/savedSP are bookkeeping only: neither
// internal/glue implementation reads them, since the glue enters a proc
// by running its body function.
func (p *Proc) writeInitialFrame() {
	top := uintptr(len(p.seg.body))
	if word := unsafe.Sizeof(uintptr(0)); top >= word {
		top -= word
	}
	p.savedSP = top &^ 0xf
	p.savedPC = 0
}

// Retain increments the proc's reference count (producer/consumer
// counting; spec.md §3 invariant (v)).
func (p *Proc) Retain() { p.refcount++ }

// Release decrements the proc's reference count. It is a protocol
// violation to release a proc whose count is already zero.
func (p *Proc) Release() error {
	if p.refcount == 0 {
		return errProtocol("proc refcount underflow")
	}
	p.refcount--
	return nil
}

// State returns the proc's current state.
func (p *Proc) State() ProcState { return p.state }

// UpcallCode and UpcallArg are read by the dispatcher (upcall.go); they
// are also how the stub functions in stubs.go place arguments before
// yielding.
func (p *Proc) UpcallCode() uint32        { return p.upcallCode }
func (p *Proc) UpcallArg(i int) uintptr   { return p.upcallArgs[i] }
func (p *Proc) setUpcallArg(i int, v uintptr) { p.upcallArgs[i] = v }

// clearUpcall zeroes the upcall code field so generated code can signal a
// subsequent upcall by writing a nonzero value without first reading the
// old one (spec.md §4.7).
func (p *Proc) clearUpcall() { p.upcallCode = 0 }
