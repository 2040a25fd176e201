package compile

import (
	"sync"

	"jackc/internal/ast"
	"jackc/internal/emit"
	"jackc/internal/flatten"
	"jackc/internal/ir"
	"jackc/internal/liveness"
	"jackc/internal/regalloc"
	"jackc/internal/spill"
	"jackc/internal/symtab"
	"jackc/internal/util"

	"github.com/sirupsen/logrus"
)

// SubroutineUnit pairs one parsed subroutine with the symbol table that resolves its identifiers.
// A Table is scoped to a single subroutine (its argument/local indices restart there), so Class
// can't carry one Table for every Subroutine the way ir.Class does once compiled.
type SubroutineUnit struct {
	Info  *ast.SubroutineInfo
	Table symtab.Table
}

// ClassUnit is one parsed Jack class, ready for the pipeline: a name and its subroutines, each
// with its own resolved symbol table.
type ClassUnit struct {
	Name        string
	Subroutines []SubroutineUnit
}

// Run drives every class's every subroutine through Flatten, the spill/colour register-assignment
// loop, and the Emitter, then concatenates the result into one program. Compilation is
// per-subroutine independent, so Options.Threads bounds how many run concurrently; nothing inside
// a single subroutine's own pipeline is itself concurrent.
func Run(classes []ClassUnit, opts Options) string {
	k := opts.Registers
	if k == 0 {
		k = regalloc.K
	}
	threads := opts.Threads
	if threads < 1 {
		threads = 1
	}

	compiled := make([]*ir.Class, len(classes))
	for i, cu := range classes {
		compiled[i] = compileClass(cu, k, threads)
		logrus.WithFields(logrus.Fields{
			"class":       cu.Name,
			"subroutines": len(cu.Subroutines),
		}).Info("compile: class done")
	}

	e := emit.New()
	return e.EmitProgram(compiled)
}

func compileClass(cu ClassUnit, k, threads int) *ir.Class {
	class := ir.NewClass(cu.Name)
	class.Subroutines = make([]*ir.Subroutine, len(cu.Subroutines))

	sem := make(chan struct{}, threads)
	var wg sync.WaitGroup
	for i, su := range cu.Subroutines {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, su SubroutineUnit) {
			defer wg.Done()
			defer func() { <-sem }()
			class.Subroutines[i] = CompileSubroutine(su, k)
		}(i, su)
	}
	wg.Wait()
	return class
}

// CompileSubroutine runs one subroutine's full pipeline: flatten, then select and promote the
// Locals live across a call up front, then attempt colouring, retrying through AssignK's own
// spill loop until it converges within k registers. Exported so internal/difftest can drive
// single subroutines through the pipeline without duplicating it.
func CompileSubroutine(su SubroutineUnit, k int) *ir.Subroutine {
	// A distinct prefix from the Flattener's own "$" generator: this one only needs to avoid
	// colliding with names already in sub.Body, not continue the Flattener's own count.
	names := util.NewNameGen("#")
	sub := flatten.Flatten(su.Info, su.Table)

	live := liveness.Analyze(sub)
	toSpill := spill.Select(sub, live)
	spill.Promote(sub, toSpill, names)

	regalloc.AssignK(sub, names, k)

	logrus.WithFields(logrus.Fields{
		"subroutine": sub.QualifiedName(),
		"registers":  k,
	}).Debug("compile: subroutine done")
	return sub
}
