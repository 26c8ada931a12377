package procrt

// schedule picks the next runnable proc uniformly at random: draw a
// 32-bit PRNG word, reduce modulo pool size, return that element
// (spec.md §4.6). Deadlock (an empty runnable pool while the blocked pool
// is non-empty) is detected by the caller, Run's main loop, before this
// is ever invoked with an empty pool.
func (rt *Runtime) schedule() *Proc {
	n := rt.runnable.Len()
	i := int(rt.prng.Uint32() % uint32(n))
	return rt.runnable.At(i)
}
