package procrt

import "unsafe"

// EntryFunc is the generated-code-ABI shape of spec.md §6: "a structure of
// three function pointers (init_code, main_code, fini_code), each of which
// takes an opaque pointer and a proc pointer." Since code generation is
// explicitly out of scope (spec.md §1), these are hand-authored Go
// closures standing in for what a real compiler's codegen would emit —
// the same role the teacher's examples/*/main.go play relative to the
// zenq package itself (see examples/ in this repo).
type EntryFunc func(ctx unsafe.Pointer, p *Proc)

// Program is the program descriptor of spec.md §6.
type Program struct {
	Name string

	InitCode EntryFunc
	MainCode EntryFunc
	FiniCode EntryFunc
}

// run executes init/main/fini in order on p, the proc constructed to run
// this program (spec.md §4.3: the initial synthetic frame resumes at
// program.MainCode; init and fini bracket it within the same activation).
func (pr *Program) run(p *Proc) {
	if pr.InitCode != nil {
		pr.InitCode(nil, p)
	}
	if pr.MainCode != nil {
		pr.MainCode(nil, p)
	}
	if pr.FiniCode != nil {
		pr.FiniCode(nil, p)
	}
}
