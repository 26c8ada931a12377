package procrt

// Channel is a writer-side rendezvous endpoint targeting one Port
// (spec.md §3). It holds a non-owning reference to its port, the proc
// that most recently used it to send, whether it is currently queued on
// that port's writer list, its position in that queue when queued, and an
// unused overflow buffer reserved for a future buffered-send extension.
type Channel struct {
	port   *Port
	proc   *Proc // single-latest-sender model; see DESIGN.md open question 2
	queued bool
	idx    int

	// overflow is reserved for a future buffered-send extension
	// (spec.md §3); the current design never populates it.
	overflow []uintptr
}

// Idx and SetIdx implement Indexed so Channel can live in a port's
// writer-queue PointerVector.
func (c *Channel) Idx() int     { return c.idx }
func (c *Channel) SetIdx(i int) { c.idx = i }

// newChannel allocates a channel bound to port.
func newChannel(port *Port) *Channel {
	return &Channel{port: port}
}
