package glue

// ChanGlue is the default Glue: a channel handoff between the scheduler
// goroutine and a per-proc goroutine. It is the Go-level realization of
// the "mock" spec.md §9 explicitly sanctions for testing the scheduler and
// dispatcher independently of a real machine-level stack switch ("a direct
// function call that flips state to CallingC"), generalized from a
// same-stack function call to a cooperative cross-goroutine handoff: Go
// gives no portable way to swap a stack pointer by hand, so a blocking
// channel exchange is the idiomatic substitute that still preserves the
// "exactly one proc executes at a time" invariant of spec.md §5.
type ChanGlue struct{}

// CToProc starts p's body goroutine on first entry, or signals it to
// resume on every later entry, then blocks until that goroutine yields
// back via ProcToC.
func (ChanGlue) CToProc(p Switchable) {
	if !p.Started() {
		p.SetStarted(true)
		go p.RunBody()
	} else {
		p.ResumeSignal() <- struct{}{}
	}
	<-p.YieldSignal()
}

// ProcToC hands control back to the waiting CToProc call and blocks until
// the core resumes this proc again. It must be called from within the
// proc's own body goroutine.
func (ChanGlue) ProcToC(p Switchable) {
	p.YieldSignal() <- struct{}{}
	<-p.ResumeSignal()
}
