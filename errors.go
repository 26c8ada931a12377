package procrt

import (
	"strings"

	"github.com/pkg/errors"
)

// The three fatal error kinds of spec.md §7. Allocator exhaustion and
// protocol violations are assertions in the original design; this port
// represents them as Go errors wrapped with github.com/pkg/errors so a
// caller of Run can recover the kind with errors.Cause/errors.Is without
// losing the operation that triggered it. Run itself returns the matching
// exit code alongside the error.
var (
	// ErrAllocExhausted is fatal; the documented exit code is 123.
	ErrAllocExhausted = errors.New("procrt: allocator exhausted")

	// ErrDeadlock is fatal; the documented exit code is 1. It is raised
	// when the runnable pool is empty while the blocked pool is
	// non-empty (spec.md §4.6).
	ErrDeadlock = errors.New("procrt: no schedulable processes")

	// ErrProtocol indicates generated code violated the upcall/state
	// protocol (e.g. a blocked state reached the main loop). It is
	// fatal via assertion, not a recoverable condition (spec.md §7).
	ErrProtocol = errors.New("procrt: protocol violation")
)

// errAlloc wraps ErrAllocExhausted with the failing operation's context.
func errAlloc(op string) error {
	return errors.Wrapf(ErrAllocExhausted, "%s", op)
}

// errProtocol wraps ErrProtocol with the failing invariant's context.
func errProtocol(what string) error {
	return errors.Wrapf(ErrProtocol, "%s", what)
}

// isOOMPanic reports whether a recovered panic value is the Go runtime's
// own allocation-failure panic (make()/new() raise a runtime.Error whose
// message names the condition) rather than an assertion the core raised
// itself (errProtocol and friends are returned as errors, never panicked,
// except for the explicit protocol-violation panics in Run's main loop
// and in recv — see runtime.go and rendezvous.go). Run's top-level
// recover uses this to route genuine allocator exhaustion to exit 123
// (spec.md §5, §7(a)) while letting every other panic, including those
// protocol-violation ones, propagate as the assertion spec.md §7(c)
// describes.
func isOOMPanic(r interface{}) bool {
	err, ok := r.(error)
	if !ok {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "out of memory") || strings.Contains(msg, "cannot allocate memory")
}
