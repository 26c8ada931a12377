package procrt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphadose/procrt"
	"github.com/alphadose/procrt/examples"
)

// TestHello is spec.md §8 scenario 1.
func TestHello(t *testing.T) {
	rt := procrt.NewRuntime(1, nil)
	code, err := rt.Run(examples.Hello())
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	require.NoError(t, rt.Invariants())
}

// TestSpawnAndExit is spec.md §8 scenario 2.
func TestSpawnAndExit(t *testing.T) {
	rt := procrt.NewRuntime(1, nil)
	code, err := rt.Run(examples.SpawnAndExit())
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	require.NoError(t, rt.Invariants())
}

// TestSendRecvSuccess is spec.md §8 scenario 3.
func TestSendRecvSuccess(t *testing.T) {
	for seed := uint64(0); seed < 8; seed++ {
		rt := procrt.NewRuntime(seed, nil)
		code, err := rt.Run(examples.SendRecvSuccess())
		require.NoError(t, err)
		assert.Equal(t, 0, code)
		require.NoError(t, rt.Invariants())
	}
}

// TestQueuedSender is spec.md §8 scenario 4.
func TestQueuedSender(t *testing.T) {
	for seed := uint64(0); seed < 8; seed++ {
		rt := procrt.NewRuntime(seed, nil)
		code, err := rt.Run(examples.QueuedSender())
		require.NoError(t, err)
		assert.Equal(t, 0, code)
		require.NoError(t, rt.Invariants())
	}
}

// TestDeadSend is spec.md §8 scenario 5. The sender never completes
// rendezvous, so it remains blocked-writing forever and the runtime
// eventually observes deadlock — the documented fate of a dead send that
// nothing ever frees.
func TestDeadSend(t *testing.T) {
	rt := procrt.NewRuntime(1, nil)
	code, err := rt.Run(examples.DeadSend())
	require.Error(t, err)
	assert.Equal(t, 1, code)
	assert.ErrorIs(t, err, procrt.ErrDeadlock)
}

// TestDeadlock is spec.md §8 scenario 6.
func TestDeadlock(t *testing.T) {
	rt := procrt.NewRuntime(1, nil)
	code, err := rt.Run(examples.Deadlock())
	require.Error(t, err)
	assert.Equal(t, 1, code)
	assert.ErrorIs(t, err, procrt.ErrDeadlock)
}

func TestRunWithCustomStackSize(t *testing.T) {
	rt := procrt.NewRuntimeWithStackSize(1, nil, 4096)
	code, err := rt.Run(examples.Hello())
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}
