package procrt

// Port is a receive endpoint owned by exactly one proc (spec.md §3). It
// holds a live-refcount and weak-refcount, a back-reference to its owning
// proc, and a writer queue: a PointerVector of channels currently queued
// to send to it.
//
// The writer-queue shape — "remember who's waiting, and what they're
// waiting to hand off" — is the same problem select_list.go's node
// ({threadPtr, dataOut}) solves for the teacher's Selector; here each
// queued Channel plays the role of one of those nodes.
type Port struct {
	owner        *Proc
	liveRefcount int
	weakRefcount int
	writers      *PointerVector[*Channel]
}

// newPort allocates a port owned by proc.
func newPort(owner *Proc) *Port {
	return &Port{
		owner:   owner,
		writers: NewPointerVector[*Channel](),
	}
}

// delPort frees port. It returns a protocol-violation error, leaving the
// port untouched, if liveRefcount is nonzero (spec.md §4.7 code 7).
func (p *Port) delPort() error {
	if p.liveRefcount != 0 {
		return errProtocol("del_port on a port with nonzero live refcount")
	}
	p.writers.Finalize()
	return nil
}

// enqueue pushes ch onto the writer queue if it isn't already queued,
// recording ch's idx and setting ch.queued (spec.md §4.8: "On failure, if
// C is not already queued, push C onto P.writers").
func (p *Port) enqueue(ch *Channel) {
	if ch.queued {
		return
	}
	p.writers.Push(ch)
	ch.queued = true
}

// dequeueAt swap-deletes the channel at writer-queue position i, fixing
// the moved channel's idx, and clears queued on the removed channel.
func (p *Port) dequeueAt(i int) {
	ch := p.writers.At(i)
	p.writers.SwapDelete(i)
	ch.queued = false
}

// Abandon clears the port's owner field without freeing it, modeling a
// reader proc that exited without first issuing del_chan/del_port
// (spec.md §7(d): "dead send (channel whose port has no owner)"). This is
// the embedder-visible half of that scenario; the runtime itself never
// calls this on a proc's ordinary exit, since port/channel teardown is an
// explicit-upcall responsibility, not automatic (spec.md §9: "managed by
// explicit delete upcalls, not tracing collection").
func (p *Port) Abandon() { p.owner = nil }
