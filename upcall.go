package procrt

import "unsafe"

// Upcall codes (spec.md §4.7).
const (
	upcallLogUint32 = 0
	upcallLogStr    = 1
	upcallSpawn     = 2
	upcallCheckExpr = 3
	upcallMalloc    = 4
	upcallFree      = 5
	upcallNewPort   = 6
	upcallDelPort   = 7
	upcallNewChan   = 8
	upcallDelChan   = 9
	upcallSend      = 10
	upcallRecv      = 11
	upcallSched     = 12
)

// dispatch decodes p's upcall code and performs the named service
// (spec.md §4.7). It is called once per CallingC return from the glue;
// upcalls execute to completion and never recursively run other procs
// (spec.md §5). After dispatch the upcall code field is zeroed so
// generated code can signal a subsequent upcall by writing a nonzero
// value without first reading the old one.
func (rt *Runtime) dispatch(p *Proc) error {
	switch p.upcallCode {
	case upcallLogUint32:
		diag.Infof("%d", p.upcallArgs[0])

	case upcallLogStr:
		diag.Info(cStringAt(p.upcallArgs[0]))

	case upcallSpawn:
		program := (*Program)(unsafe.Pointer(p.upcallArgs[1]))
		child, err := rt.spawnProc(program)
		if err != nil {
			return err
		}
		writeWord(p.upcallArgs[0], uintptr(unsafe.Pointer(child)))

	case upcallCheckExpr:
		if p.upcallArgs[0] == 0 {
			p.state = Exiting
		}

	case upcallMalloc:
		n := p.upcallArgs[1]
		buf := make([]byte, n)
		ptr := uintptr(unsafe.Pointer(&buf[0]))
		rt.liveAllocs[ptr] = buf
		writeWord(p.upcallArgs[0], ptr)

	case upcallFree:
		delete(rt.liveAllocs, p.upcallArgs[0])

	case upcallNewPort:
		port := newPort(p)
		writeWord(p.upcallArgs[0], uintptr(unsafe.Pointer(port)))

	case upcallDelPort:
		port := (*Port)(unsafe.Pointer(p.upcallArgs[0]))
		if err := port.delPort(); err != nil {
			return err
		}

	case upcallNewChan:
		port := (*Port)(unsafe.Pointer(p.upcallArgs[1]))
		ch := newChannel(port)
		writeWord(p.upcallArgs[0], uintptr(unsafe.Pointer(ch)))

	case upcallDelChan:
		// arg1, not arg0 — see stubs.go's DelChan.
		ch := (*Channel)(unsafe.Pointer(p.upcallArgs[1]))
		if ch.queued {
			ch.port.dequeueAt(ch.idx)
		}

	case upcallSend:
		ch := (*Channel)(unsafe.Pointer(p.upcallArgs[0]))
		send(p, ch)

	case upcallRecv:
		// arg1, not arg0 — see stubs.go's Recv.
		port := (*Port)(unsafe.Pointer(p.upcallArgs[1]))
		recv(p, port)

	case upcallSched:
		child := (*Proc)(unsafe.Pointer(p.upcallArgs[0]))
		rt.enqueueRunnable(child)

	default:
		return errProtocol("unknown upcall code")
	}

	p.clearUpcall()
	return nil
}

// writeWord writes v through addr interpreted as a pointer to a word —
// the out-pointer convention every upcall in spec.md §4.7's table uses.
func writeWord(addr uintptr, v uintptr) {
	*(*uintptr)(unsafe.Pointer(addr)) = v
}

// cStringAt reads a NUL-terminated byte buffer starting at addr (the
// marshaling convention stubs.go's LogStr uses for Go strings).
func cStringAt(addr uintptr) string {
	base := (*byte)(unsafe.Pointer(addr))
	n := 0
	for *(*byte)(unsafe.Pointer(addr + uintptr(n))) != 0 {
		n++
	}
	return string(unsafe.Slice(base, n))
}
