// Package glue implements the C↔proc context-switch boundary of spec.md
// §4.4: the external collaborator that swaps a proc's stack pointer in and
// restores the activation PC. A real machine-level glue swaps a register
// save area and a stack pointer; this package provides two Go-level
// stand-ins that preserve the contract spec.md §4.4 actually cares about
// ("entering a proc is a single call taking the proc pointer; control
// returns to the core only when the proc transitions its state away from
// Running and issues proc_to_c") without requiring hand-written assembly.
package glue

// Switchable is the slice of a Proc that a Glue implementation needs:
// the two handoff channels and the proc's entry-point body. Keeping this
// as a narrow interface (rather than importing the procrt package's Proc
// type directly) avoids a dependency cycle, since procrt.Proc both
// implements Switchable and holds a Glue.
type Switchable interface {
	ResumeSignal() chan struct{}
	YieldSignal() chan struct{}
	Started() bool
	SetStarted(bool)
	RunBody()
}

// Glue is the two-primitive contract of spec.md §4.4.
type Glue interface {
	// CToProc performs the host-to-proc half of a context switch: on
	// first entry it starts the proc's body running; on every
	// subsequent entry it resumes a proc suspended at an upcall
	// boundary. It returns only once the proc has issued ProcToC.
	CToProc(p Switchable)

	// ProcToC performs the proc-to-host half: called from within a
	// proc's body (never from the scheduler), it hands control back to
	// whichever CToProc call is waiting and blocks until the core
	// resumes this proc again via a later CToProc.
	ProcToC(p Switchable)
}
