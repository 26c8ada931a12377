package glue_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphadose/procrt/internal/glue"
)

// fakeSwitchable is a minimal Switchable for exercising a Glue
// implementation without a real Proc.
type fakeSwitchable struct {
	resume  chan struct{}
	yield   chan struct{}
	started bool
	ran     chan struct{}
	body    func()
}

func newFakeSwitchable(body func()) *fakeSwitchable {
	return &fakeSwitchable{
		resume: make(chan struct{}),
		yield:  make(chan struct{}),
		ran:    make(chan struct{}),
		body:   body,
	}
}

func (f *fakeSwitchable) ResumeSignal() chan struct{} { return f.resume }
func (f *fakeSwitchable) YieldSignal() chan struct{}   { return f.yield }
func (f *fakeSwitchable) Started() bool                { return f.started }
func (f *fakeSwitchable) SetStarted(v bool)             { f.started = v }
func (f *fakeSwitchable) RunBody() {
	f.body()
	close(f.ran)
}

func TestChanGlueSingleTurn(t *testing.T) {
	var g glue.ChanGlue

	order := make([]string, 0, 2)
	f := newFakeSwitchable(func() {
		order = append(order, "body")
		g.ProcToC(f)
	})

	g.CToProc(f)
	order = append(order, "core")

	assert.Equal(t, []string{"body", "core"}, order)
}

func TestChanGlueMultipleResumes(t *testing.T) {
	var g glue.ChanGlue

	turns := 0
	f := newFakeSwitchable(func() {
		for turns < 3 {
			turns++
			g.ProcToC(f)
		}
	})

	for i := 0; i < 3; i++ {
		g.CToProc(f)
	}
	assert.Equal(t, 3, turns)

	// The body is parked in its third ProcToC; resume it once more so the
	// loop condition is re-checked and the body returns.
	f.resume <- struct{}{}

	select {
	case <-f.ran:
	case <-time.After(time.Second):
		t.Fatal("proc body never completed")
	}
}

func TestChanGlueStartedOnlyOnce(t *testing.T) {
	var g glue.ChanGlue
	starts := 0
	f := newFakeSwitchable(func() {
		starts++
		g.ProcToC(f)
		g.ProcToC(f)
	})

	g.CToProc(f)
	require.True(t, f.Started())
	g.CToProc(f)
	assert.Equal(t, 1, starts)
}
