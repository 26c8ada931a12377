// Package pool adapts the teacher's package-level node free-lists
// (list.go's and select_list.go's `nodePool = sync.Pool{New: ...}`) into a
// generic, typed wrapper for allocations this runtime recycles rather than
// garbage-collects eagerly. The runtime uses it for stack segments only;
// procs, ports and channels are allocated fresh each time.
package pool

import "sync"

// Pool recycles values of type T through a sync.Pool, the same mechanism
// the teacher uses for its lock-free list nodes.
type Pool[T any] struct {
	inner sync.Pool
}

// New returns a Pool whose Get calls new(func) when the pool is empty.
func New[T any](new func() T) *Pool[T] {
	return &Pool[T]{inner: sync.Pool{New: func() any { return new() }}}
}

// Get returns a recycled value, or a freshly constructed one if the pool
// is empty.
func (p *Pool[T]) Get() T {
	return p.inner.Get().(T)
}

// Put returns v to the pool for later reuse. Callers must not touch v
// again after calling Put.
func (p *Pool[T]) Put(v T) {
	p.inner.Put(v)
}
