//go:build !procrt_guardpages

package procrt

// newMemChecker returns the no-op memory checker used by default builds.
// Enable real guard-page registration with -tags procrt_guardpages on
// Linux (see guardchecker_linux.go).
func newMemChecker() memChecker { return noopChecker{} }
