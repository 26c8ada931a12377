package procrt

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphadose/procrt/internal/pool"
)

func TestNewStackSegmentSizing(t *testing.T) {
	seg := newStackSegment(DefaultStackSize)
	require.NotNil(t, seg)
	assert.Equal(t, DefaultStackSize, seg.size)
	assert.Len(t, seg.body, DefaultStackSize)
	assert.Nil(t, seg.next)
	assert.Nil(t, seg.prev)
}

func TestFreeStackSegmentWalksChain(t *testing.T) {
	a := newStackSegment(DefaultStackSize)
	b := newStackSegment(DefaultStackSize)
	a.next = b
	b.prev = a

	freeStackSegment(a)
	assert.Nil(t, a.body)
	assert.Nil(t, b.body)
	assert.Nil(t, a.next)
	assert.Nil(t, b.prev)
}

func TestNoopCheckerIsInertByDefault(t *testing.T) {
	assert.IsType(t, noopChecker{}, newMemChecker())
}

func TestIsOOMPanicMatchesRuntimeAllocationErrors(t *testing.T) {
	assert.True(t, isOOMPanic(errors.New("runtime: out of memory")))
	assert.True(t, isOOMPanic(errors.New("fatal error: cannot allocate memory")))
	assert.False(t, isOOMPanic(errors.New("procrt: protocol violation: bogus")))
	assert.False(t, isOOMPanic("not an error at all"))
	assert.False(t, isOOMPanic(nil))
}

// TestRunRecoversAllocExhaustionAsExitCode123 drives Run's top-level
// recover directly: segPool's constructor panics the way a real
// make([]byte, size) does on genuine allocator exhaustion, and Run must
// turn that into (123, ErrAllocExhausted) rather than crash uncaught
// (spec.md §5, §7(a)).
func TestRunRecoversAllocExhaustionAsExitCode123(t *testing.T) {
	rt := NewRuntime(1, nil)
	rt.segPool = pool.New(func() *stackSegment {
		panic(errors.New("runtime: out of memory"))
	})

	code, err := rt.Run(testProgram(func(*Proc) {}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAllocExhausted))
	assert.Equal(t, 123, code)
}

// TestRunDoesNotRecoverNonAllocPanics confirms isOOMPanic's filter keeps
// other panics (e.g. a genuine protocol-violation assertion) propagating
// unrecovered, as spec.md §7(c) requires, instead of being silently
// folded into the allocator-exhaustion exit code.
func TestRunDoesNotRecoverNonAllocPanics(t *testing.T) {
	rt := NewRuntime(1, nil)
	rt.segPool = pool.New(func() *stackSegment {
		panic(errors.New("some other failure"))
	})

	assert.Panics(t, func() {
		_, _ = rt.Run(testProgram(func(*Proc) {}))
	})
}
