package procrt

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestProc builds a bare proc suitable for driving rendezvous/port
// logic directly, without going through a real scheduler turn.
func newTestProc(t *testing.T, rt *Runtime) *Proc {
	t.Helper()
	p, err := newProc(rt, testProgram(func(*Proc) {}), func(*Proc) {})
	require.NoError(t, err)
	return p
}

func TestRendezvousTransfersValueAndTransitionsBoth(t *testing.T) {
	rt := NewRuntime(1, nil)
	src := newTestProc(t, rt)
	dst := newTestProc(t, rt)

	src.state = BlockedWriting
	dst.state = BlockedReading
	src.upcallArgs[1] = 0x2A

	var dest uintptr
	dst.upcallArgs[0] = uintptr(unsafe.Pointer(&dest))

	ok := rendezvous(src, dst)
	require.True(t, ok)
	assert.Equal(t, uintptr(0x2A), dest)
	assert.Equal(t, Running, src.state)
	assert.Equal(t, Running, dst.state)
}

func TestRendezvousFailsOnWrongStates(t *testing.T) {
	rt := NewRuntime(1, nil)
	src := newTestProc(t, rt)
	dst := newTestProc(t, rt)

	src.state = Running
	dst.state = BlockedReading
	assert.False(t, rendezvous(src, dst))

	src.state = BlockedWriting
	dst.state = Running
	assert.False(t, rendezvous(src, dst))
}

func TestSendRecvImmediateRendezvous(t *testing.T) {
	rt := NewRuntime(1, nil)
	reader := newTestProc(t, rt)
	writer := newTestProc(t, rt)
	rt.enqueueRunnable(reader)
	rt.enqueueRunnable(writer)

	port := newPort(reader)
	ch := newChannel(port)

	var dest uintptr
	reader.upcallArgs[0] = uintptr(unsafe.Pointer(&dest))
	writer.upcallArgs[1] = 0x2A

	recv(reader, port)
	assert.Equal(t, BlockedReading, reader.state)
	assert.Zero(t, port.writers.Len())

	send(writer, ch)
	assert.Equal(t, Running, reader.state)
	assert.Equal(t, Running, writer.state)
	assert.Equal(t, uintptr(0x2A), dest)
}

func TestSendQueuesWhenNoReaderWaiting(t *testing.T) {
	rt := NewRuntime(1, nil)
	owner := newTestProc(t, rt)
	writer := newTestProc(t, rt)
	rt.enqueueRunnable(owner)
	rt.enqueueRunnable(writer)

	port := newPort(owner)
	ch := newChannel(port)
	writer.upcallArgs[1] = 7

	send(writer, ch)
	assert.Equal(t, BlockedWriting, writer.state)
	assert.True(t, ch.queued)
	assert.Equal(t, 1, port.writers.Len())
}

func TestDeadSendLeavesWriterBlockedWithNoOwner(t *testing.T) {
	rt := NewRuntime(1, nil)
	owner := newTestProc(t, rt)
	writer := newTestProc(t, rt)
	rt.enqueueRunnable(writer)

	port := newPort(owner)
	port.Abandon()
	ch := newChannel(port)

	send(writer, ch)
	assert.Equal(t, BlockedWriting, writer.state)
	assert.False(t, ch.queued)
}

func TestQueuedSenderSelectionRemovesChosenWriter(t *testing.T) {
	rt := NewRuntime(42, nil)
	reader := newTestProc(t, rt)
	w1 := newTestProc(t, rt)
	w2 := newTestProc(t, rt)
	rt.enqueueRunnable(reader)
	rt.enqueueRunnable(w1)
	rt.enqueueRunnable(w2)

	port := newPort(reader)
	ch1 := newChannel(port)
	ch2 := newChannel(port)
	w1.upcallArgs[1] = 0x11
	w2.upcallArgs[1] = 0x22

	send(w1, ch1)
	send(w2, ch2)
	require.Equal(t, 2, port.writers.Len())

	var dest uintptr
	reader.upcallArgs[0] = uintptr(unsafe.Pointer(&dest))
	recv(reader, port)

	assert.Equal(t, Running, reader.state)
	assert.Equal(t, 1, port.writers.Len())

	chosenValue := dest
	assert.Contains(t, []uintptr{0x11, 0x22}, chosenValue)

	// Exactly one of the two writers is now Running; the other remains
	// BlockedWriting and queued.
	running, blocked := 0, 0
	for _, w := range []*Proc{w1, w2} {
		if w.state == Running {
			running++
		} else {
			require.Equal(t, BlockedWriting, w.state)
			blocked++
		}
	}
	assert.Equal(t, 1, running)
	assert.Equal(t, 1, blocked)
}
