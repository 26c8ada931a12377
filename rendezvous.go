package procrt

import "unsafe"

// rendezvous matches a blocked writer with a blocked reader and copies one
// word (spec.md §4.8). Precondition: src.state == BlockedWriting and
// dst.state == BlockedReading. On success it writes the value, transitions
// both participants to Running, and reports true. If the precondition
// does not hold it reports false with no side effects.
//
// The single value word transferred is src.upcallArgs[1]; the destination
// address is dst.upcallArgs[0] interpreted as a pointer to a word. The
// engine does not handle composite values (spec.md §4.8: "a future
// extension").
func rendezvous(src, dst *Proc) bool {
	if src.state != BlockedWriting || dst.state != BlockedReading {
		return false
	}
	value := src.upcallArgs[1]
	dest := (*uintptr)(unsafe.Pointer(dst.upcallArgs[0]))
	*dest = value

	src.rt.transition(src, Running)
	dst.rt.transition(dst, Running)
	return true
}

// send is the body of the send upcall (code 10, spec.md §4.7/§4.8). It
// sets C.proc to S, transitions S to BlockedWriting, and either completes
// a rendezvous with the port's owner or queues C on the port's writer
// list. A port with no owner is a dead send (spec.md §7(d)): logged and
// dropped, S remains BlockedWriting.
func send(s *Proc, ch *Channel) {
	ch.proc = s
	s.rt.transition(s, BlockedWriting)

	owner := ch.port.owner
	if owner == nil {
		diag.Warn("DEAD SEND")
		return
	}
	if rendezvous(s, owner) {
		return
	}
	ch.port.enqueue(ch)
}

// recv is the body of the recv upcall (code 11, spec.md §4.7/§4.8). port
// must be owned by d. It transitions d to BlockedReading, then, if the
// port's writer queue is non-empty, draws a uniformly-random index,
// attempts rendezvous with that writer, and on success swap-deletes it
// from the queue.
//
// Fairness: writer selection is uniform random; readers never queue since
// a port has a single reader by construction, its owner (spec.md §4.8).
func recv(d *Proc, port *Port) {
	if port.owner != d {
		panic(errProtocol("recv on a port not owned by the receiving proc"))
	}
	d.rt.transition(d, BlockedReading)

	n := port.writers.Len()
	if n == 0 {
		return
	}
	i := int(d.rt.prng.Uint32() % uint32(n))
	ch := port.writers.At(i)
	if rendezvous(ch.proc, d) {
		port.dequeueAt(i)
	}
}
