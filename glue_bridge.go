package procrt

// This file implements internal/glue's Switchable interface on *Proc so
// that either Glue implementation can drive a proc's body goroutine
// without internal/glue importing this package (see internal/glue/glue.go
// for why that would be a cycle).

func (p *Proc) ResumeSignal() chan struct{} { return p.glueState.resume }
func (p *Proc) YieldSignal() chan struct{}  { return p.glueState.yield }
func (p *Proc) Started() bool               { return p.glueState.started }
func (p *Proc) SetStarted(v bool)           { p.glueState.started = v }

// RunBody runs the proc's entry-point body, which must end by setting
// state to Exiting and calling ProcToC (spec.md §4.5: "Running → Exiting:
// proc writes Exiting and yields"). If the body returns without ever
// yielding again this goroutine simply exits; the scheduler side of
// ChanGlue/RuntimeGlue is left parked forever, which is the documented
// protocol violation spec.md §7(c) describes generated code as
// responsible for avoiding.
func (p *Proc) RunBody() { p.glueState.body(p) }
