package procrt

// DefaultStackSize is the usable body size of a freshly created stack
// segment (spec.md §4.2: "65536 bytes of usable body"). Exported so
// embedders (cmd/procrtd's --stack-size flag) can default to it without
// duplicating the constant.
const DefaultStackSize = 65536

const stackSegSize = DefaultStackSize

// stackSegment is a heap-allocated, contiguous stack region. Segments are
// linked doubly to siblings as a structural hook for future segmented-stack
// growth (spec.md §4.2); the current core never switches a live proc to a
// second segment.
type stackSegment struct {
	next, prev *stackSegment
	size       int
	live       int // live byte count, tracked for diagnostics only
	checker    memChecker
	body       []byte
}

// memChecker is the "opaque memory-checker handle" of spec.md §4.2: a
// structural hook, not a hard requirement. The default build uses noopChecker;
// builds tagged procrt_guardpages register the body range for a real guard
// page via golang.org/x/sys/unix (see guardchecker_linux.go).
type memChecker interface {
	register(body []byte)
	deregister(body []byte)
}

// noopChecker satisfies memChecker without doing anything; it is the
// default for builds that don't opt into guard-page registration.
type noopChecker struct{}

func (noopChecker) register([]byte)   {}
func (noopChecker) deregister([]byte) {}

// newStackSegment allocates one segment of size usable bytes, zeroes its
// header fields, and registers the body range with the current memory
// checker. Allocation failure in this runtime means the underlying make()
// call panics from OOM, which the runtime's top-level recover in Run
// turns into the documented exit code 123 (spec.md §5, §7).
func newStackSegment(size int) *stackSegment {
	seg := &stackSegment{
		size:    size,
		body:    make([]byte, size),
		checker: newMemChecker(),
	}
	seg.checker.register(seg.body)
	return seg
}

// freeStackSegment walks the next chain and frees each segment,
// deregistering from the memory checker as it goes (spec.md §4.2).
func freeStackSegment(seg *stackSegment) {
	for seg != nil {
		next := seg.next
		seg.checker.deregister(seg.body)
		seg.body = nil
		seg.next, seg.prev = nil, nil
		seg = next
	}
}
