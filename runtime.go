package procrt

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"

	"github.com/alphadose/procrt/internal/glue"
	"github.com/alphadose/procrt/internal/pool"
)

// Runtime holds the saved host stack-pointer cell used by the context
// switch, two pointer-vectors of procs (runnable, blocked), and a PRNG
// (spec.md §3).
//
// The first two fields mirror spec.md §6's description of the runtime
// record's generated-code-visible header ("a C-register save area
// (offsets 0 and 1 for PC and SP)"); this Go port has no real register
// file to save, so they are bookkeeping only, kept for ABI-table fidelity.
type Runtime struct {
	hostPC uintptr
	hostSP uintptr

	current *Proc

	runnable *PointerVector[*Proc]
	blocked  *PointerVector[*Proc]

	prng *prng
	glue glue.Glue

	// stackSize is the usable body size newProc gives every stack
	// segment it allocates (spec.md §4.2 names 65536 as the default;
	// CLI callers may override it via NewRuntimeWithStackSize).
	stackSize int

	// segPool recycles freed stack segments of stackSize instead of
	// discarding them, the same sync.Pool-backed free-list discipline
	// the teacher applies to its queue nodes (list.go, select_list.go),
	// generalized here via internal/pool.
	segPool *pool.Pool[*stackSegment]

	// liveAllocs keeps malloc-upcall buffers reachable for Go's GC
	// between a malloc and its matching free upcall, since the pointer
	// handed back to generated code is a bare uintptr and so does not
	// itself count as a reference (spec.md §4.7 codes 4/5).
	liveAllocs map[uintptr][]byte

	exit exitRequest
}

// exitRequest captures the documented exit code once the main loop
// decides to stop (spec.md §7).
type exitRequest struct {
	requested bool
	code      int
}

// NewRuntime constructs a runtime with both pools empty, seeded with the
// given PRNG key, using g as the context-switch collaborator. Passing a
// nil Glue selects the default ChanGlue (spec.md §4.4). Stack segments
// default to stackSegSize; use NewRuntimeWithStackSize to override.
func NewRuntime(seed uint64, g glue.Glue) *Runtime {
	return NewRuntimeWithStackSize(seed, g, stackSegSize)
}

// NewRuntimeWithStackSize is NewRuntime with an explicit per-proc stack
// segment size, the knob cmd/procrtd's --stack-size flag exposes.
func NewRuntimeWithStackSize(seed uint64, g glue.Glue, stackSize int) *Runtime {
	if g == nil {
		g = glue.ChanGlue{}
	}
	return &Runtime{
		runnable:  NewPointerVector[*Proc](),
		blocked:   NewPointerVector[*Proc](),
		prng:      newPRNG(seed),
		glue:      g,
		stackSize: stackSize,
		segPool: pool.New(func() *stackSegment {
			return newStackSegment(stackSize)
		}),
		liveAllocs: make(map[uintptr][]byte),
	}
}

// prng is the runtime's keyed deterministic generator (spec.md §4.6).
// Rather than the teacher's process-wide, unseedable runtime.fastrand
// (lib_runtime_linkage.go's Fastrand), this is a counter-based generator:
// each draw increments a counter and hashes (seed, counter) with xxhash,
// so a given seed reproduces a given scheduling/selection sequence.
type prng struct {
	seed    uint64
	counter uint64
}

func newPRNG(seed uint64) *prng { return &prng{seed: seed} }

// Uint32 draws the next 32-bit word.
func (p *prng) Uint32() uint32 {
	p.counter++
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], p.seed)
	binary.LittleEndian.PutUint64(buf[8:16], p.counter)
	h := xxhash.Sum64(buf[:])
	return uint32(h >> 32)
}

// transition moves p between the runnable and blocked pools whenever the
// state change crosses a pool boundary, fixing up the moved elements'
// idx via PointerVector.SwapDelete/Push, and records the new state
// (spec.md §4.5: "Every transition between state classes must move the
// proc between the runnable and blocked pools via
// proc_state_transition(src, dst)").
func (rt *Runtime) transition(p *Proc, newState ProcState) {
	oldBlocked := p.state.isBlocked()
	newBlocked := newState.isBlocked()
	if oldBlocked == newBlocked {
		p.state = newState
		return
	}
	var from, to *PointerVector[*Proc]
	if oldBlocked {
		from, to = rt.blocked, rt.runnable
	} else {
		from, to = rt.runnable, rt.blocked
	}
	from.SwapDelete(p.idx)
	p.state = newState
	to.Push(p)
}

// spawnProc allocates a new proc for program, running init/main/fini in
// its own goroutine body (writeInitialFrame resumes at program.MainCode
// per spec.md §4.3), but does NOT enqueue it into the runnable pool —
// that is the sched upcall's job (spec.md §4.7 code 2/12).
func (rt *Runtime) spawnProc(program *Program) (*Proc, error) {
	body := func(p *Proc) { program.run(p) }
	p, err := newProc(rt, program, body)
	if err != nil {
		return nil, errAlloc("spawn proc")
	}
	return p, nil
}

// enqueueRunnable pushes p into the runnable pool, recording its idx.
func (rt *Runtime) enqueueRunnable(p *Proc) {
	rt.runnable.Push(p)
}

// freeProc releases a proc observed in Exiting by the main loop: returns
// its stack segment to the pool and drops it from bookkeeping (spec.md §3
// "Lifecycles"). A segment with sibling links (the structural hook for
// future segmented-stack growth, spec.md §4.2) is never recycled whole —
// only a bare, single segment is safe to hand back to segPool's free
// list, so a chained segment is freed outright instead.
func (rt *Runtime) freeProc(p *Proc) error {
	if p.refcount != 0 {
		return errProtocol("freeProc on a proc with nonzero refcount")
	}
	if p.seg.next == nil && p.seg.prev == nil {
		p.seg.live = 0
		rt.segPool.Put(p.seg)
	} else {
		freeStackSegment(p.seg)
	}
	p.seg = nil
	return nil
}

// Run is the embedder entry point of spec.md §6: construct the runtime
// (already done by NewRuntime), spawn the root proc from program, enqueue
// it, then loop. It returns the documented exit code.
func (rt *Runtime) Run(program *Program) (code int, err error) {
	// Allocator exhaustion (spec.md §5, §7(a)) surfaces as a Go runtime
	// panic out of a make() call somewhere beneath spawnProc/dispatch
	// (newStackSegment, the malloc upcall, ...); this recover is the one
	// place that panic is turned into the documented exit code 123
	// instead of crashing the process uncaught. Any other panic —
	// notably the protocol-violation ones in the main loop below and in
	// recv — is deliberately let through unrecovered, since spec.md
	// §7(c) calls that an assertion, not a recoverable condition.
	defer func() {
		if r := recover(); r != nil {
			if !isOOMPanic(r) {
				panic(r)
			}
			diag.Error(ErrAllocExhausted.Error())
			code = 123
			err = errors.Wrapf(ErrAllocExhausted, "panic: %v", r)
		}
	}()

	root, err := rt.spawnProc(program)
	if err != nil {
		return 123, err
	}
	rt.enqueueRunnable(root)

	for {
		if rt.runnable.Len() == 0 {
			if rt.blocked.Len() == 0 {
				return 0, nil
			}
			diag.Error(ErrDeadlock.Error())
			return 1, ErrDeadlock
		}

		p := rt.schedule()
		rt.current = p
		p.state = Running

		rt.glue.CToProc(p)

		// Generated code only ever writes Running, CallingC or Exiting;
		// a proc that yields directly in a blocked state was never moved
		// to the blocked pool and is a protocol violation (spec.md §4.5).
		if p.state.isBlocked() {
			panic(errProtocol("proc yielded in a blocked state"))
		}

		if p.state == CallingC {
			if err := rt.dispatch(p); err != nil {
				return 1, errors.Wrap(err, "upcall dispatch")
			}
			// dispatch may have left p Running-eligible (ordinary
			// upcall), Exiting (check_expr observed false), or
			// Blocked* (send/recv found no immediate rendezvous);
			// fall through to the branch below, so a
			// dispatch-induced Exiting or Blocked* is never
			// re-scheduled before being handled.
			if p.state == CallingC {
				p.state = Running
			}
		}

		switch p.state {
		case Running:
			// Redispatch: the proc yielded (or was dispatched back
			// to) Running. Nothing to do; the scheduler loop simply
			// runs again.
		case Exiting:
			rt.runnable.SwapDelete(p.idx)
			if err := rt.freeProc(p); err != nil {
				return 1, err
			}
		case BlockedReading, BlockedWriting:
			// Reached only after dispatch: send/recv found no
			// immediate partner and left p queued/blocked;
			// rt.transition already moved it into the blocked pool.
			// Nothing more to do.
		default:
			panic(errProtocol("unknown proc state in main loop"))
		}

		if rt.exit.requested {
			return rt.exit.code, nil
		}
	}
}

// Invariants walks both pools without mutating anything and checks that
// every proc's idx matches its position and that each pool holds only
// procs of its own state class (spec.md §8). Ports and their writer
// queues are not checked: the runtime keeps no list of ports. This is
// test/ops tooling the spec's embedder contract implicitly requires (an
// external harness needs *some* way to observe pool/queue consistency);
// it adds no new scheduling, dispatch, or rendezvous behavior.
func (rt *Runtime) Invariants() error {
	for i := 0; i < rt.runnable.Len(); i++ {
		p := rt.runnable.At(i)
		if p.idx != i {
			return errProtocol("runnable pool idx mismatch")
		}
		if p.state.isBlocked() {
			return errProtocol("blocked proc found in runnable pool")
		}
	}
	for i := 0; i < rt.blocked.Len(); i++ {
		p := rt.blocked.At(i)
		if p.idx != i {
			return errProtocol("blocked pool idx mismatch")
		}
		if !p.state.isBlocked() {
			return errProtocol("non-blocked proc found in blocked pool")
		}
	}
	return nil
}
