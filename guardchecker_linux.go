//go:build procrt_guardpages && linux

package procrt

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// newMemChecker returns a guard-page-backed memory checker. Builds tagged
// procrt_guardpages register each stack segment's body with a trailing
// PROT_NONE page via unix.Mprotect, turning a stack overrun into a SIGSEGV
// instead of silent heap corruption. This is an optional hook (spec.md
// §4.2 calls the checker "a structural hook for future growth"); the
// default build (guardchecker_default.go) is a no-op.
type guardChecker struct{}

func newMemChecker() memChecker { return guardChecker{} }

const pageSize = 4096

func (guardChecker) register(body []byte) {
	if len(body) < pageSize {
		return
	}
	guard := guardPage(body)
	// Ignore the error: guard pages are a diagnostic aid, not a
	// correctness requirement of the core (spec.md §4.2).
	_ = unix.Mprotect(guard, unix.PROT_NONE)
}

func (guardChecker) deregister(body []byte) {
	if len(body) < pageSize {
		return
	}
	guard := guardPage(body)
	_ = unix.Mprotect(guard, unix.PROT_READ|unix.PROT_WRITE)
}

// guardPage returns the trailing page of body as a byte slice suitable for
// unix.Mprotect, rounding down to the nearest page boundary.
func guardPage(body []byte) []byte {
	base := uintptr(unsafe.Pointer(&body[0]))
	end := base + uintptr(len(body))
	guardStart := (end - 1) &^ (pageSize - 1)
	if guardStart < base {
		guardStart = base
	}
	offset := guardStart - base
	return body[offset:]
}
